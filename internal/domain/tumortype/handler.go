package tumortype

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/oncology/clinic/internal/platform/apperror"
	"github.com/oncology/clinic/internal/platform/middleware"
	"github.com/oncology/clinic/pkg/pagination"
	"github.com/oncology/clinic/pkg/response"
)

const (
	msgCreated = "Tipo de tumor creado exitosamente"
	msgListed  = "Tipos de tumor obtenidos exitosamente"
	msgFetched = "Tipo de tumor obtenido exitosamente"
	msgUpdated = "Tipo de tumor actualizado exitosamente"
	msgDeleted = "Tipo de tumor eliminado exitosamente"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, cached middleware.Cacher) {
	api.POST("/tumor-types", h.CreateTumorType)
	api.GET("/tumor-types", h.ListTumorTypes, cached(middleware.ListKey(CacheKeys)))
	api.GET("/tumor-types/:id", h.GetTumorType, cached(detailKey))
	api.PUT("/tumor-types/:id", h.UpdateTumorType)
	api.DELETE("/tumor-types/:id", h.DeleteTumorType)
}

func detailKey(c echo.Context) string {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return ""
	}
	return CacheKeys.Detail(id)
}

// ParseID validates a positive integer tumor type id.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperror.Validation("Invalid tumor type id", []middleware.FieldViolation{{
			Field:   "id",
			Rule:    "gt",
			Message: "id must be a positive integer",
		}})
	}
	return id, nil
}

func (h *Handler) CreateTumorType(c echo.Context) error {
	var req CreateRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}
	t, err := h.svc.CreateTumorType(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, response.Success(msgCreated, t))
}

func (h *Handler) ListTumorTypes(c echo.Context) error {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return err
	}
	q := ListQuery{
		Search:         pagination.OptionalParam(c, "search"),
		SystemAffected: pagination.OptionalParam(c, "systemAffected"),
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	page, err := h.svc.ListTumorTypes(c.Request().Context(), q.Filters(pg))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(msgListed, page))
}

func (h *Handler) GetTumorType(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	t, err := h.svc.GetTumorTypeByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success(msgFetched, t))
}

func (h *Handler) UpdateTumorType(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}
	t, err := h.svc.UpdateTumorType(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success(msgUpdated, t))
}

func (h *Handler) DeleteTumorType(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTumorType(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Message(msgDeleted))
}
