package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Phone           string `json:"phone" validate:"required,phone"`
	Role            string `json:"role" validate:"omitempty,oneof=client advocate"`
}

func TestValidate_MapsJSONNames(t *testing.T) {
	errs, err := Validate(signup{
		Email:           "nope",
		Password:        "short",
		PasswordConfirm: "different",
		Phone:           "12",
		Role:            "admin",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Invalid email format"}, errs["email"])
	assert.Equal(t, []string{"Must be at least 8 characters"}, errs["password"])
	assert.Equal(t, []string{"Passwords are not the same"}, errs["passwordConfirm"])
	assert.Equal(t, []string{"Invalid phone number"}, errs["phone"])
	assert.Equal(t, []string{"Value is not allowed"}, errs["role"])
}

func TestValidate_OK(t *testing.T) {
	errs, err := Validate(signup{
		Email:           "a@b.co",
		Password:        "password1",
		PasswordConfirm: "password1",
		Phone:           "+91 98765-43210",
	})
	require.NoError(t, err)
	assert.Nil(t, errs)
}

type bounds struct {
	Below  int `json:"below" validate:"lt=5"`
	AtMost int `json:"atMost" validate:"lte=5"`
}

func TestValidate_UpperBounds(t *testing.T) {
	errs, err := Validate(bounds{Below: 5, AtMost: 6})
	require.NoError(t, err)

	assert.Equal(t, []string{"Must be less than 5"}, errs["below"])
	assert.Equal(t, []string{"Must be at most 5"}, errs["atMost"])
}
