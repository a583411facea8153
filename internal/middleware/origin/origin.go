package origin

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	CookieName = "origin"
	ContextKey = "origin"
)

func CreateCookie(name, value, path string, expTime time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware resolves the caller's origin from its signed cookie, minting a
// fresh origin when the cookie is missing or invalid. secure marks the
// cookie HTTPS-only; leave it off when serving plain HTTP or browsers never
// send the cookie back.
func Middleware(secret []byte, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(CookieName); err == nil {
				if id, err := tokens.OriginFromToken(ck.Value, secret); err == nil {
					return serve(c, next, id)
				}
			}

			id := tokens.NewOrigin()
			exp := time.Now().Add(tokens.OriginTTL)
			tok, err := tokens.SignOrigin(id, secret, exp)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
			}
			c.SetCookie(CreateCookie(CookieName, tok, "/", exp, secure))
			return serve(c, next, id)
		}
	}
}

func serve(c echo.Context, next echo.HandlerFunc, id string) error {
	c.Set(ContextKey, id)
	req := c.Request()
	l := logging.FromContext(req.Context()).With("origin", id)
	c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
	return next(c)
}

func FromContext(c echo.Context) string {
	id, _ := c.Get(ContextKey).(string)
	return id
}
