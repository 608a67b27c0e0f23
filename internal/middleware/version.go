package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// apiVersion is the current API contract version, echoed on every response.
const apiVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header, stores the requested
// version in the request context and stamps the served version on the response
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requested := c.Get("X-Api-Version", apiVersion)

		// Support version aliases
		if requested == "1.0" {
			requested = apiVersion
		}

		c.Locals("apiVersion", requested)
		c.Set("X-Api-Version", apiVersion)

		return c.Next()
	}
}
