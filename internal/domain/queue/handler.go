package queue

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/teleclinic/teleclinic/internal/platform/auth"
	"github.com/teleclinic/teleclinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/queue")

	g.POST("", h.RequestConsultation, auth.RequireRole("patient"))
	g.GET("", h.ListForDoctor, auth.RequireRole("doctor"))
	g.GET("/mine", h.MyTicket, auth.RequireRole("patient"))
	g.GET("/:id", h.GetEntry, auth.RequireRole("doctor", "patient"))

	g.POST("/:id/accept", h.Accept, auth.RequireRole("doctor"))
	g.POST("/:id/call", h.Call, auth.RequireRole("doctor"))
	g.POST("/:id/start", h.Start, auth.RequireRole("doctor"))
	g.POST("/:id/end", h.End, auth.RequireRole("doctor"))
	g.POST("/:id/cancel", h.Cancel, auth.RequireRole("patient"))
}

// httpError maps domain errors onto HTTP status codes. An orphaned
// consultation is a conflict whose body names the dangling consultation so
// operators can reconcile it.
func httpError(err error) error {
	var orphan *OrphanedConsultationError
	switch {
	case errors.As(err, &orphan):
		return echo.NewHTTPError(http.StatusConflict, map[string]string{
			"error":           orphan.Error(),
			"consultation_id": orphan.ConsultationID.String(),
		})
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPermission):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrPrecondition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) RequestConsultation(c echo.Context) error {
	var body struct {
		DoctorID *uuid.UUID `json:"doctor_id"`
		IsFree   bool       `json:"is_free"`
		Price    *float64   `json:"price"`
		Currency *string    `json:"currency"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in := RequestInput{
		PatientID: auth.ActorFromContext(c.Request().Context()),
		DoctorID:  body.DoctorID,
		IsFree:    body.IsFree,
		Price:     body.Price,
		Currency:  body.Currency,
	}
	e, err := h.svc.Request(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	doctorID := auth.ActorFromContext(ctx)
	if v := c.QueryParam("doctor_id"); v != "" && auth.HasRole(ctx, "admin") {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		doctorID = id
	}

	entries, total, err := h.svc.ListForDoctor(ctx, doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, pg.Limit, pg.Offset))
}

func (h *Handler) MyTicket(c echo.Context) error {
	ctx := c.Request().Context()
	ticket, err := h.svc.ActiveTicket(ctx, auth.ActorFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ticket)
}

func (h *Handler) GetEntry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	e, err := h.svc.Get(ctx, id)
	if err != nil {
		return httpError(err)
	}
	// Patients may only read their own entries; doctors see their console.
	if !auth.HasRole(ctx, "doctor") && e.PatientID != auth.ActorFromContext(ctx) {
		return echo.NewHTTPError(http.StatusForbidden, "not your queue entry")
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) Accept(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	e, err := h.svc.Accept(ctx, id, auth.ActorFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) Call(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd CallUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	e, err := h.svc.Call(ctx, id, auth.ActorFromContext(ctx), upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) Start(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	e, err := h.svc.Start(ctx, id, auth.ActorFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) End(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	e, err := h.svc.End(ctx, id, auth.ActorFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	e, err := h.svc.Cancel(ctx, id, auth.ActorFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}
