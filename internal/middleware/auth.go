package middleware

import (
	"net/http"

	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"chatterd/internal/session"
)

// IdentityContextKey is where the auth middleware stores the resolved
// session.Identity on the echo context.
const IdentityContextKey = "identity"

// SessionName is the cookie session holding the opaque session id. The
// cookie is authenticated by the store's secret; the client can neither
// read nor forge the id it carries.
const SessionName = "chat-session"

// SessionIDKey is the key of the session id inside the cookie session.
const SessionIDKey = "session_id"

// Auth creates a middleware that protects routes requiring authentication.
// The identity is resolved strictly from the server-side session registry;
// nothing client-supplied is trusted beyond the opaque session id.
func Auth(sessions *session.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := echosession.Get(SessionName, c)
			if err != nil {
				return c.Redirect(http.StatusSeeOther, "/login.html")
			}

			sessionID, ok := sess.Values[SessionIDKey].(string)
			if !ok || sessionID == "" {
				return c.Redirect(http.StatusSeeOther, "/login.html")
			}

			ident, ok := sessions.Validate(sessionID)
			if !ok {
				// Stale cookie for a destroyed session; clear it.
				delete(sess.Values, SessionIDKey)
				_ = sess.Save(c.Request(), c.Response())
				return c.Redirect(http.StatusSeeOther, "/login.html")
			}

			c.Set(IdentityContextKey, ident)
			c.Set(SessionIDKey, sessionID)

			return next(c)
		}
	}
}
