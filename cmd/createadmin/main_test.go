package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aldoetobex/legal-practice-backend/pkg/database/dbtest"
	"github.com/aldoetobex/legal-practice-backend/pkg/models"
)

func TestCreateAdmin(t *testing.T) {
	db := dbtest.Open(t)
	in := input{Name: "Office Admin", Email: " Admin@Firm.in ", Password: "s3cret-pass"}

	u, err := createAdmin(context.Background(), db, in, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "admin@firm.in", u.Email)
	assert.Equal(t, models.VerificationNotRequired, u.VerificationStatus)
	assert.True(t, u.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))

	_, err = createAdmin(context.Background(), db, in, bcrypt.MinCost)
	assert.ErrorIs(t, err, errExists)
}

func TestCreateAdmin_Invalid(t *testing.T) {
	db := dbtest.Open(t)

	_, err := createAdmin(context.Background(), db, input{Email: "a@b.c", Password: "short"}, bcrypt.MinCost)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-name")
	assert.Contains(t, err.Error(), "-password")

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}
