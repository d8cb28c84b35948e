package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"DATABASE_URL":        "postgres://localhost/legal",
		"JWT_SECRET":          "s3cret",
		"RAZORPAY_KEY_ID":     "rzp_test_key",
		"RAZORPAY_KEY_SECRET": "rzp_secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "http://localhost:5173", cfg.ClientOrigin)
	assert.True(t, cfg.Razorpay.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_ReportsAllMissing(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{}))
	require.Error(t, err)
	for _, key := range []string{"DATABASE_URL", "JWT_SECRET", "RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestFromEnv_GatewayDisabledSkipsKeys(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"DATABASE_URL":    "postgres://localhost/legal",
		"JWT_SECRET":      "s3cret",
		"PAYMENT_GATEWAY": "disabled",
	}))
	require.NoError(t, err)
	assert.False(t, cfg.Razorpay.Enabled)
}

func TestFromEnv_SupabaseNeedsKey(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{
		"DATABASE_URL":    "postgres://localhost/legal",
		"JWT_SECRET":      "s3cret",
		"PAYMENT_GATEWAY": "disabled",
		"SUPABASE_URL":    "https://proj.supabase.co",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_SERVICE_KEY")
}
