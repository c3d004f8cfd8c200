package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/repo"
)

type WishlistHTTP struct {
	Repo *repo.GormRepo
}

func (h *WishlistHTTP) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	entries, err := h.Repo.ListWishlist(c.Request().Context(), actor.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *WishlistHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	productID, err := paramID(c)
	if err != nil {
		return err
	}

	if _, err := h.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return httpError(err)
	}

	entry, err := h.Repo.AddToWishlist(ctx, actor.ID, productID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *WishlistHTTP) Remove(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	productID, err := paramID(c)
	if err != nil {
		return err
	}

	err = h.Repo.RemoveFromWishlist(c.Request().Context(), actor.ID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "not in wishlist")
	}
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
