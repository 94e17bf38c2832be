package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "sessionId"
	sessionLocalsKey  = "session_id"

	sessionCookieMaxAge = 60 * 60 * 24 * 365
)

// ResolveSession returns the effective session id for a request. The cookie
// value is an opaque correlation key, reused verbatim when present. The
// second return value reports whether a fresh id was issued and a cookie
// must be attached to the response.
func ResolveSession(cookieValue string) (string, bool) {
	if cookieValue != "" {
		return cookieValue, false
	}
	return uuid.NewString(), true
}

// SessionMiddleware resolves the session cookie on every request and issues
// one on first contact. The cookie rides on whichever response the route
// chain ultimately produces.
func SessionMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sessionId, issued := ResolveSession(ctx.Cookies(SessionCookieName))
		ctx.Locals(sessionLocalsKey, sessionId)

		if issued {
			ctx.Cookie(&fiber.Cookie{
				Name:     SessionCookieName,
				Value:    sessionId,
				Path:     "/",
				MaxAge:   sessionCookieMaxAge,
				HTTPOnly: true,
				Secure:   true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		return ctx.Next()
	}
}

// SessionID returns the session id resolved for this request.
func SessionID(ctx *fiber.Ctx) string {
	if v, ok := ctx.Locals(sessionLocalsKey).(string); ok {
		return v
	}
	return ""
}
