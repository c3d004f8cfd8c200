package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/essencia/shop-api/internal/repo"
	"github.com/essencia/shop-api/internal/transport"
)

type NewsletterHTTP struct {
	Repo *repo.GormRepo
}

func (h *NewsletterHTTP) Subscribe(c echo.Context) error {
	var req transport.SubscribeNewsletterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	sub, err := h.Repo.SubscribeNewsletter(c.Request().Context(), email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, sub)
}
