package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/curator/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerConfig controls exposure of the API documentation endpoints.
// Protections stack: a deployment may require both a whitelisted source
// address and a valid token.
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string // single addresses or CIDR prefixes; empty allows all
}

// SwaggerProtection guards the swagger routes. Disabled docs answer 404 so
// the endpoint's existence is not advertised.
func SwaggerProtection(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) gin.HandlerFunc {
	allowed := parseAllowlist(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound,
				dto.NewErrorResponse(dto.ErrCodeNotFound, "API documentation is not available"))
			return
		}

		if len(cfg.AllowedIPs) > 0 && !allowed.contains(clientAddr(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Access to API documentation is restricted"))
			return
		}

		if cfg.RequireAuth && jwtMiddleware != nil {
			jwtMiddleware(c)
			if c.IsAborted() {
				return
			}
		}

		c.Next()
	}
}

type allowlist struct {
	prefixes []netip.Prefix
}

// parseAllowlist accepts both bare addresses and CIDR notation; invalid
// entries are dropped (a typo must not accidentally open the docs).
func parseAllowlist(entries []string) allowlist {
	var al allowlist
	for _, e := range entries {
		if strings.Contains(e, "/") {
			if p, err := netip.ParsePrefix(e); err == nil {
				al.prefixes = append(al.prefixes, p)
			}
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			al.prefixes = append(al.prefixes, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return al
}

func (al allowlist) contains(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, p := range al.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientAddr resolves the caller address, preferring gin's trusted-proxy
// aware ClientIP over the raw socket address.
func clientAddr(c *gin.Context) netip.Addr {
	if ip := c.ClientIP(); ip != "" {
		if a, err := netip.ParseAddr(ip); err == nil {
			return a
		}
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	a, _ := netip.ParseAddr(host)
	return a
}
