package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teleclinic/teleclinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/settings/:key", h.Get, auth.RequireRole("admin", "doctor"))
	api.PUT("/settings/:key", h.Put, auth.RequireRole("admin"))
}

func (h *Handler) Get(c echo.Context) error {
	key := c.Param("key")
	value, err := h.svc.Get(c.Request().Context(), key)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "setting not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"key": key, "value": value})
}

func (h *Handler) Put(c echo.Context) error {
	key := c.Param("key")
	var body struct {
		Value string `json:"value"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Value == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "value must not be empty")
	}
	if err := h.svc.Set(c.Request().Context(), key, body.Value); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"key": key, "value": body.Value})
}
