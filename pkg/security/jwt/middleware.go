package jwt

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/accounts/pkg/account"
)

// LocalsUserKey is the fiber.Ctx locals key under which the middleware
// stores the authenticated account.User.
const LocalsUserKey = "currentUser"

// UserLookup resolves a token subject to a stored user.
type UserLookup func(ctx context.Context, username string) (account.User, error)

// NewAuthMiddleware returns a Fiber middleware enforcing "Bearer <JWT>"
// authentication. Every failure mode — missing or malformed header, bad
// token, empty subject, unknown user — produces the identical 401 response
// so callers cannot probe which check failed. On success the resolved user
// is stored in c.Locals under LocalsUserKey and evaluation proceeds; state
// is per-request, nothing is cached across requests.
func NewAuthMiddleware(issuer *Issuer, lookup UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return challenge(c)
		}
		scheme, token, found := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return challenge(c)
		}
		claims, err := issuer.Validate(token)
		if err != nil {
			return challenge(c)
		}
		if claims.Subject == "" {
			return challenge(c)
		}
		user, err := lookup(c.Context(), claims.Subject)
		if err != nil {
			return challenge(c)
		}
		c.Locals(LocalsUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by NewAuthMiddleware, if any.
func CurrentUser(c *fiber.Ctx) (account.User, bool) {
	user, ok := c.Locals(LocalsUserKey).(account.User)
	return user, ok
}

func challenge(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"detail": "Could not validate credentials"})
}
