package storefront

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Webhook headers set by the storefront on every delivery
const (
	// SignatureHeader carries the base64 HMAC-SHA256 digest of the raw body
	SignatureHeader = "X-Storefront-Hmac-Sha256"

	// EventIDHeader carries the storefront's delivery identifier, used for
	// duplicate suppression. Deliveries without it get a generated ID.
	EventIDHeader = "X-Storefront-Event-ID"

	// TopicHeader names the webhook topic, e.g. "products/update"
	TopicHeader = "X-Storefront-Topic"
)

// Verifier authenticates inbound webhook payloads against the shared HMAC
// secret. With no secret configured it fails closed unless the unverified
// mode is explicitly allowed; config validation refuses that in production.
type Verifier struct {
	secret          []byte
	allowUnverified bool
	logger          *zap.Logger
}

// NewVerifier creates a webhook verifier from configuration
func NewVerifier(cfg *config.WebhookConfig, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Verifier{
		allowUnverified: cfg != nil && cfg.AllowUnverified,
		logger:          logger,
	}
	if cfg != nil && cfg.Secret != "" {
		v.secret = []byte(cfg.Secret)
	}
	return v
}

// Verify checks the signature against the raw request body. It returns
// ErrMissingSignature when the header was absent and ErrInvalidSignature
// when the digest does not match; both map to a 401 upstream.
func (v *Verifier) Verify(body []byte, signature string) error {
	if len(v.secret) == 0 {
		if v.allowUnverified {
			v.logger.Warn("Webhook signature verification skipped, no secret configured")
			return nil
		}
		return fmt.Errorf("%w: no webhook secret configured", merchandising.ErrInvalidSignature)
	}

	if signature == "" {
		return merchandising.ErrMissingSignature
	}

	provided, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not valid base64", merchandising.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return merchandising.ErrInvalidSignature
	}
	return nil
}

// Sign computes the signature the storefront would send for a body. HMAC is
// symmetric, so the verifier can also produce signatures; handler tests and
// local fakes rely on this.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Enforced reports whether deliveries are actually being verified
func (v *Verifier) Enforced() bool {
	return len(v.secret) > 0
}
