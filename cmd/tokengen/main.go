package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/curator/backend/internal/infrastructure/auth"
	"github.com/curator/backend/internal/infrastructure/config"
)

func main() {
	var (
		subject string
		ttl     time.Duration
		scopes  string
		secret  string
	)

	flag.StringVar(&subject, "subject", "", "Operator name recorded as the token subject (required)")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime, e.g. 2h, 30m (default: auth.token_expiration)")
	flag.StringVar(&scopes, "scopes", "", "Comma-separated scopes (default: all scopes)")
	flag.StringVar(&secret, "secret", "", "Signing secret (default: CURATOR_AUTH_SECRET or config.toml)")
	flag.Usage = printUsage
	flag.Parse()

	if subject == "" {
		fmt.Fprintln(os.Stderr, "Error: -subject is required")
		printUsage()
		os.Exit(1)
	}

	authCfg := resolveAuthConfig(secret)
	if authCfg.Secret == "" {
		fmt.Fprintln(os.Stderr, "Error: no signing secret found. Set -secret, CURATOR_AUTH_SECRET, or auth.secret in config.toml")
		os.Exit(1)
	}
	if ttl > 0 {
		authCfg.TokenExpiration = ttl
	}

	scopeList := splitScopes(scopes)

	jwtService := auth.NewJWTService(authCfg)
	token, err := jwtService.GenerateServiceToken(subject, scopeList...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to generate token: %v\n", err)
		os.Exit(1)
	}

	if len(scopeList) == 0 {
		scopeList = auth.DefaultScopes()
	}

	// Metadata goes to stderr so the token itself can be piped from stdout
	fmt.Fprintf(os.Stderr, "Subject: %s\n", subject)
	fmt.Fprintf(os.Stderr, "Scopes:  %s\n", strings.Join(scopeList, ", "))
	fmt.Fprintf(os.Stderr, "Expires: %s\n", token.ExpiresAt.Format(time.RFC3339))
	fmt.Println(token.Token)
}

// resolveAuthConfig builds the signing config from the flag, the environment,
// or the config file, in that order.
func resolveAuthConfig(secretFlag string) config.AuthConfig {
	authCfg := config.AuthConfig{
		Secret:          secretFlag,
		TokenExpiration: 24 * time.Hour,
		Issuer:          "curator-backend",
		Audience:        "curator-backend",
	}

	if authCfg.Secret == "" {
		authCfg.Secret = os.Getenv(config.EnvVar("auth.secret"))
	}

	// The full config is optional here: tokengen must work on an operator
	// machine that only has the secret exported.
	if cfg, err := config.Load(); err == nil {
		if authCfg.Secret == "" {
			authCfg.Secret = cfg.Auth.Secret
		}
		authCfg.TokenExpiration = cfg.Auth.TokenExpiration
		authCfg.Issuer = cfg.Auth.Issuer
		authCfg.Audience = cfg.Auth.Audience
	}

	return authCfg
}

func splitScopes(scopes string) []string {
	if scopes == "" {
		return nil
	}
	var list []string
	for _, s := range strings.Split(scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			list = append(list, s)
		}
	}
	return list
}

func printUsage() {
	fmt.Println(`Curator Admin Token Generator

Mints Bearer tokens for the admin API (sync triggers, job history, system
endpoints). Tokens are signed HS256 with auth.secret; the service validates
issuer and audience, so the secret here must match the running server.

Usage:
  tokengen -subject <operator> [flags]

Flags:
  -subject string   Operator name recorded as the token subject (required)
  -ttl duration     Token lifetime, e.g. 2h, 30m (default: auth.token_expiration)
  -scopes string    Comma-separated scopes (default: sync:trigger,system:read)
  -secret string    Signing secret (default: CURATOR_AUTH_SECRET or config.toml)

Environment Variables:
  CURATOR_AUTH_SECRET   Signing secret used when -secret is not given

Examples:
  # Mint a full-access token for an operator
  tokengen -subject alice

  # Mint a read-only token valid for one hour
  tokengen -subject dashboards -ttl 1h -scopes system:read

  # Use the token directly
  curl -H "Authorization: Bearer $(tokengen -subject alice)" \
    http://localhost:8080/api/v1/sync/jobs`)
}
