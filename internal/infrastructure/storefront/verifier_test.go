package storefront

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/config"
)

func newTestVerifier(t *testing.T, secret string, allowUnverified bool) *Verifier {
	t.Helper()
	return NewVerifier(&config.WebhookConfig{
		Secret:          secret,
		AllowUnverified: allowUnverified,
	}, zaptest.NewLogger(t))
}

func TestNewVerifier(t *testing.T) {
	t.Run("nil config fails closed", func(t *testing.T) {
		v := NewVerifier(nil, zap.NewNop())
		require.NotNil(t, v)
		assert.False(t, v.Enforced())

		err := v.Verify([]byte("body"), "sig")
		assert.ErrorIs(t, err, merchandising.ErrInvalidSignature)
	})

	t.Run("nil logger is tolerated", func(t *testing.T) {
		v := NewVerifier(&config.WebhookConfig{Secret: "s"}, nil)
		require.NotNil(t, v)
		assert.True(t, v.Enforced())
	})
}

func TestVerifier_Verify(t *testing.T) {
	body := []byte(`{"id": 9912345, "title": "Rose Quartz Beads"}`)

	t.Run("valid signature passes", func(t *testing.T) {
		v := newTestVerifier(t, "shhh", false)
		assert.NoError(t, v.Verify(body, v.Sign(body)))
	})

	t.Run("missing signature returns ErrMissingSignature", func(t *testing.T) {
		v := newTestVerifier(t, "shhh", false)
		err := v.Verify(body, "")
		assert.ErrorIs(t, err, merchandising.ErrMissingSignature)
	})

	t.Run("signature from another secret is rejected", func(t *testing.T) {
		v := newTestVerifier(t, "shhh", false)
		other := newTestVerifier(t, "different", false)
		err := v.Verify(body, other.Sign(body))
		assert.ErrorIs(t, err, merchandising.ErrInvalidSignature)
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		v := newTestVerifier(t, "shhh", false)
		sig := v.Sign(body)
		tampered := append([]byte{}, body...)
		tampered[0] = '['
		err := v.Verify(tampered, sig)
		assert.ErrorIs(t, err, merchandising.ErrInvalidSignature)
	})

	t.Run("non-base64 signature is rejected", func(t *testing.T) {
		v := newTestVerifier(t, "shhh", false)
		err := v.Verify(body, "%%% not base64 %%%")
		assert.ErrorIs(t, err, merchandising.ErrInvalidSignature)
	})

	t.Run("no secret with unverified allowed skips check", func(t *testing.T) {
		v := newTestVerifier(t, "", true)
		assert.NoError(t, v.Verify(body, ""))
		assert.False(t, v.Enforced())
	})

	t.Run("no secret without unverified allowed fails closed", func(t *testing.T) {
		v := newTestVerifier(t, "", false)
		err := v.Verify(body, "anything")
		assert.ErrorIs(t, err, merchandising.ErrInvalidSignature)
	})

	t.Run("secret set means unverified flag is ignored", func(t *testing.T) {
		v := newTestVerifier(t, "shhh", true)
		err := v.Verify(body, "")
		assert.ErrorIs(t, err, merchandising.ErrMissingSignature)
		assert.True(t, v.Enforced())
	})
}

func TestVerifier_Sign(t *testing.T) {
	body := []byte("payload")

	t.Run("matches manual HMAC", func(t *testing.T) {
		v := newTestVerifier(t, "shhh", false)
		mac := hmac.New(sha256.New, []byte("shhh"))
		mac.Write(body)
		want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
		assert.Equal(t, want, v.Sign(body))
	})

	t.Run("deterministic", func(t *testing.T) {
		v := newTestVerifier(t, "shhh", false)
		assert.Equal(t, v.Sign(body), v.Sign(body))
	})
}
