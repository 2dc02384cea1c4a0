package auth_test

import (
	"testing"
	"time"

	"github.com/curator/backend/internal/infrastructure/auth"
	"github.com/curator/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough!"

func newTestAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:          testSecret,
		TokenExpiration: time.Hour,
		Issuer:          "curator-backend",
		Audience:        "curator-backend",
	}
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(newTestAuthConfig())
}

// signClaims signs arbitrary claims with the test secret so validation
// paths the generator never produces can be exercised.
func signClaims(t *testing.T, claims *auth.Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// ============================================================================
// Token generation
// ============================================================================

func TestJWTService_GenerateServiceToken(t *testing.T) {
	service := newTestJWTService()

	t.Run("mints token with default scopes", func(t *testing.T) {
		token, err := service.GenerateServiceToken("ops-alice")
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.NotEmpty(t, token.Token)
		assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

		claims, err := service.ValidateToken(token.Token)
		require.NoError(t, err)
		assert.Equal(t, "ops-alice", claims.Subject)
		assert.Equal(t, "curator-backend", claims.Issuer)
		assert.Contains(t, claims.Audience, "curator-backend")
		assert.NotEmpty(t, claims.ID)
		assert.Equal(t, auth.DefaultScopes(), claims.Scopes)
	})

	t.Run("mints token with explicit scopes", func(t *testing.T) {
		token, err := service.GenerateServiceToken("ops-bob", auth.ScopeSystemRead)
		require.NoError(t, err)

		claims, err := service.ValidateToken(token.Token)
		require.NoError(t, err)
		assert.Equal(t, []string{auth.ScopeSystemRead}, claims.Scopes)
		assert.True(t, claims.HasScope(auth.ScopeSystemRead))
		assert.False(t, claims.HasScope(auth.ScopeSyncTrigger))
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		token, err := service.GenerateServiceToken("")
		assert.ErrorIs(t, err, auth.ErrMissingSubject)
		assert.Nil(t, token)
	})

	t.Run("distinct tokens carry distinct JTIs", func(t *testing.T) {
		first, err := service.GenerateServiceToken("ops-alice")
		require.NoError(t, err)
		second, err := service.GenerateServiceToken("ops-alice")
		require.NoError(t, err)

		firstClaims, err := service.ValidateToken(first.Token)
		require.NoError(t, err)
		secondClaims, err := service.ValidateToken(second.Token)
		require.NoError(t, err)

		assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
	})
}

// ============================================================================
// Token validation
// ============================================================================

func TestJWTService_ValidateToken(t *testing.T) {
	service := newTestJWTService()

	t.Run("rejects garbage", func(t *testing.T) {
		claims, err := service.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("rejects tampered token", func(t *testing.T) {
		token, err := service.GenerateServiceToken("ops-alice")
		require.NoError(t, err)

		tampered := token.Token[:len(token.Token)-2] + "xx"
		claims, err := service.ValidateToken(tampered)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		otherCfg := newTestAuthConfig()
		otherCfg.Secret = "a-completely-different-signing-secret"
		other := auth.NewJWTService(otherCfg)

		token, err := other.GenerateServiceToken("ops-alice")
		require.NoError(t, err)

		claims, err := service.ValidateToken(token.Token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expiredCfg := newTestAuthConfig()
		expiredCfg.TokenExpiration = -time.Hour
		expired := auth.NewJWTService(expiredCfg)

		token, err := expired.GenerateServiceToken("ops-alice")
		require.NoError(t, err)

		claims, err := service.ValidateToken(token.Token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
		assert.Nil(t, claims)
	})

	t.Run("rejects token used before its not-before", func(t *testing.T) {
		now := time.Now()
		signed := signClaims(t, &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti-nbf",
				Issuer:    "curator-backend",
				Subject:   "ops-alice",
				Audience:  jwt.ClaimStrings{"curator-backend"},
				ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
				NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
		})

		claims, err := service.ValidateToken(signed)
		assert.ErrorIs(t, err, auth.ErrTokenNotYetValid)
		assert.Nil(t, claims)
	})

	t.Run("rejects wrong issuer", func(t *testing.T) {
		otherCfg := newTestAuthConfig()
		otherCfg.Issuer = "someone-else"
		other := auth.NewJWTService(otherCfg)

		token, err := other.GenerateServiceToken("ops-alice")
		require.NoError(t, err)

		claims, err := service.ValidateToken(token.Token)
		assert.ErrorIs(t, err, auth.ErrInvalidIssuer)
		assert.Nil(t, claims)
	})

	t.Run("rejects wrong audience", func(t *testing.T) {
		otherCfg := newTestAuthConfig()
		otherCfg.Audience = "another-service"
		other := auth.NewJWTService(otherCfg)

		token, err := other.GenerateServiceToken("ops-alice")
		require.NoError(t, err)

		claims, err := service.ValidateToken(token.Token)
		assert.ErrorIs(t, err, auth.ErrInvalidAudience)
		assert.Nil(t, claims)
	})

	t.Run("rejects missing subject", func(t *testing.T) {
		now := time.Now()
		signed := signClaims(t, &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti-nosub",
				Issuer:    "curator-backend",
				Audience:  jwt.ClaimStrings{"curator-backend"},
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
		})

		claims, err := service.ValidateToken(signed)
		assert.ErrorIs(t, err, auth.ErrMissingSubject)
		assert.Nil(t, claims)
	})

	t.Run("rejects unsigned token", func(t *testing.T) {
		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "ops-alice",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		})
		unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		claims, err := service.ValidateToken(unsigned)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		assert.Nil(t, claims)
	})
}

// ============================================================================
// Claims helpers
// ============================================================================

func TestClaims_HasScope(t *testing.T) {
	claims := &auth.Claims{Scopes: []string{auth.ScopeSyncTrigger}}

	assert.True(t, claims.HasScope(auth.ScopeSyncTrigger))
	assert.False(t, claims.HasScope(auth.ScopeSystemRead))
	assert.False(t, claims.HasScope(""))
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	t.Run("live token", func(t *testing.T) {
		claims := &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		ttl := claims.GetRemainingTTL()
		assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		assert.Equal(t, time.Duration(0), claims.GetRemainingTTL())
	})

	t.Run("no expiry", func(t *testing.T) {
		claims := &auth.Claims{}
		assert.Equal(t, time.Duration(0), claims.GetRemainingTTL())
	})
}

func TestClaims_GetIssuedAtTime(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issued),
		},
	}

	assert.Equal(t, issued.Unix(), claims.GetIssuedAtTime().Unix())
	assert.True(t, (&auth.Claims{}).GetIssuedAtTime().IsZero())
}

func TestJWTService_TokenExpiration(t *testing.T) {
	assert.Equal(t, time.Hour, newTestJWTService().TokenExpiration())
}
