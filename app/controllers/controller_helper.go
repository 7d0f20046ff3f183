package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shopfox/shopfox/internal/pkg/lifepay"
)

// GetClientIP determines the actual client IP address considering proxies.
// The reconciler checks this against the gateway's server allow-list, so a
// proxy header is only trusted when present.
func GetClientIP(c *fiber.Ctx) string {
	// 1. Check for Cloudflare header
	if cfIP := strings.TrimSpace(c.Get("CF-Connecting-IP")); cfIP != "" {
		return cfIP
	}

	// 2. First entry of X-Forwarded-For is the originating client
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	// 3. Fall back to the connection remote address
	return c.IP()
}

// parseNotification copies the posted form fields (and, for browser
// redirects, the query parameters) into an explicit payload map. Handlers
// never read request state beyond this point.
func parseNotification(c *fiber.Ctx) lifepay.Notification {
	n := lifepay.Notification{}

	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		n[string(key)] = string(value)
	})
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		if _, ok := n[string(key)]; !ok {
			n[string(key)] = string(value)
		}
	})

	return n
}
