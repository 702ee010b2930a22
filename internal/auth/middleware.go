package auth

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
)

// actorLocalsKey is the fiber.Locals key holding the resolved actor.
const actorLocalsKey = "actor"

// Middleware authenticates every request with HTTP Basic credentials against
// the local user table and stores the resolved audit actor in fiber.Locals.
// Paths in skip are passed through unauthenticated.
func Middleware(svc *Service, skip ...string) fiber.Handler {
	skipped := make(map[string]bool, len(skip))
	for _, path := range skip {
		skipped[path] = true
	}

	return func(c *fiber.Ctx) error {
		if skipped[c.Path()] {
			return c.Next()
		}

		username, password, ok := basicCredentials(c)
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="restricted"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}

		user, err := svc.Authenticate(username, password)
		if err != nil {
			log.Warn().Err(err).Str("username", username).Msg("authentication failed")

			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="restricted"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication failed"})
		}

		c.Locals(actorLocalsKey, settings.Actor{
			UserID:        strconv.FormatUint(user.ID, 10),
			DisplayName:   user.DisplayName,
			IPAddress:     c.IP(),
			UserAgent:     c.Get(fiber.HeaderUserAgent),
			CanEditSystem: user.CanEditSystem,
		})

		return c.Next()
	}
}

// RequireSystemEdit rejects requests whose actor lacks the system-edit
// privilege. Must run after Middleware.
func RequireSystemEdit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromCtx(c)
		if !actor.CanEditSystem {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "system-edit privilege required"})
		}

		return c.Next()
	}
}

// ActorFromCtx returns the audit actor resolved by Middleware. A request that
// bypassed the middleware yields a zero actor with no privileges.
func ActorFromCtx(c *fiber.Ctx) settings.Actor {
	actor, _ := c.Locals(actorLocalsKey).(settings.Actor)
	return actor
}

// basicCredentials extracts HTTP Basic credentials from the request.
func basicCredentials(c *fiber.Ctx) (username, password string, ok bool) {
	encoded, found := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Basic ")
	if !found {
		return "", "", false
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}

	return strings.Cut(string(raw), ":")
}
