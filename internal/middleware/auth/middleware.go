package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/essencia/shop-api/internal/service"
)

type TokenMiddleware struct {
	Auth *service.AuthService
}

// CreateCookie builds the HttpOnly cookie both tokens travel in.
func CreateCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// resolveActor reads the access-token cookie; on expiry it falls back
// to rotating the refresh token, re-setting both cookies.
func (m *TokenMiddleware) resolveActor(c echo.Context) (service.Actor, error) {
	if ck, err := c.Cookie("accessToken"); err == nil {
		actor, err := service.ParseAccessToken(ck.Value, m.Auth.JWTSecret)
		if err == nil {
			return actor, nil
		}
	}

	rfCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return service.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}

	newAccess, newRefresh, claims, err := m.Auth.Rotate(c.Request().Context(), rfCookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return service.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		return service.Actor{}, err
	}

	c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(service.AccessTokenTTL)))
	c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(service.RefreshTokenTTL)))

	sub, ok := claims["sub"].(float64)
	if !ok {
		return service.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	role, _ := claims["role"].(string)
	return service.Actor{ID: uint(sub), Admin: role == "admin"}, nil
}

func setActor(c echo.Context, actor service.Actor) {
	c.Set("actor", actor)
}

// ActorFromContext returns the authenticated actor placed by
// RequireLogin/RequireAdmin.
func ActorFromContext(c echo.Context) (service.Actor, bool) {
	actor, ok := c.Get("actor").(service.Actor)
	return actor, ok
}

func (m *TokenMiddleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := m.resolveActor(c)
		if err != nil {
			return err
		}
		setActor(c, actor)
		return next(c)
	}
}

func (m *TokenMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := m.resolveActor(c)
		if err != nil {
			return err
		}
		if !actor.Admin {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		setActor(c, actor)
		return next(c)
	}
}
