package patient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/oncology/clinic/internal/platform/apperror"
	"github.com/oncology/clinic/internal/platform/middleware"
	"github.com/oncology/clinic/pkg/pagination"
	"github.com/oncology/clinic/pkg/response"
)

const (
	msgCreated  = "Paciente creado exitosamente"
	msgListed   = "Pacientes obtenidos exitosamente"
	msgFetched  = "Paciente obtenido exitosamente"
	msgUpdated  = "Paciente actualizado exitosamente"
	msgDisabled = "Paciente deshabilitado exitosamente"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, cached middleware.Cacher) {
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients", h.ListPatients, cached(middleware.ListKey(CacheKeys)))
	api.GET("/patients/:id", h.GetPatient, cached(detailKey))
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DisablePatient)
}

func detailKey(c echo.Context) string {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ""
	}
	return CacheKeys.Detail(id)
}

// ParseID validates a patient id path parameter.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid patient id", []middleware.FieldViolation{{
			Field:   "id",
			Rule:    "uuid",
			Message: "id must be a valid UUID",
		}})
	}
	return id, nil
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req CreateRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, response.Success(msgCreated, p))
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return err
	}
	q := ListQuery{
		Search: pagination.OptionalParam(c, "search"),
		Status: pagination.OptionalParam(c, "status"),
		Gender: pagination.OptionalParam(c, "gender"),
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	page, err := h.svc.ListPatients(c.Request().Context(), q.Filters(pg))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(msgListed, page))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatientByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success(msgFetched, p))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success(msgUpdated, p))
}

func (h *Handler) DisablePatient(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.svc.DisablePatient(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Message(msgDisabled))
}
