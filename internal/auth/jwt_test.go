package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	ts := NewTokenService("s3cret", "mangashelf", time.Hour)

	raw, exp, err := ts.Sign("reader")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ts.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "reader", claims.Subject)
	assert.Equal(t, "mangashelf", claims.Issuer)
}

func TestParseRejects(t *testing.T) {
	ts := NewTokenService("s3cret", "mangashelf", time.Hour)

	other := NewTokenService("different", "mangashelf", time.Hour)
	forged, _, err := other.Sign("reader")
	require.NoError(t, err)

	wrongIssuer, _, err := NewTokenService("s3cret", "elsewhere", time.Hour).Sign("reader")
	require.NoError(t, err)

	expired, _, err := NewTokenService("s3cret", "mangashelf", -time.Minute).Sign("reader")
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"wrong secret": forged,
		"wrong issuer": wrongIssuer,
		"expired":      expired,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ts.Parse(raw)
			assert.Error(t, err)
		})
	}
}

func TestSignRequiresSecretAndSubject(t *testing.T) {
	_, _, err := NewTokenService("", "mangashelf", time.Hour).Sign("reader")
	assert.Error(t, err)

	_, _, err = NewTokenService("s3cret", "mangashelf", time.Hour).Sign("  ")
	assert.Error(t, err)
}
