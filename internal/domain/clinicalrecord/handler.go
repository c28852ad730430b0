package clinicalrecord

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/oncology/clinic/internal/domain/patient"
	"github.com/oncology/clinic/internal/platform/apperror"
	"github.com/oncology/clinic/internal/platform/middleware"
	"github.com/oncology/clinic/pkg/pagination"
	"github.com/oncology/clinic/pkg/response"
)

const (
	msgCreated = "Registro clínico creado exitosamente"
	msgListed  = "Registros clínicos obtenidos exitosamente"
	msgFetched = "Registro clínico obtenido exitosamente"
	msgUpdated = "Registro clínico actualizado exitosamente"
	msgDeleted = "Registro clínico eliminado exitosamente"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, cached middleware.Cacher) {
	api.POST("/clinical-records", h.CreateClinicalRecord)
	api.GET("/clinical-records", h.ListClinicalRecords, cached(middleware.ListKey(CacheKeys)))
	api.GET("/clinical-records/:id", h.GetClinicalRecord, cached(detailKey))
	api.PUT("/clinical-records/:id", h.UpdateClinicalRecord)
	api.DELETE("/clinical-records/:id", h.DeleteClinicalRecord)
	api.GET("/patients/:id/clinical-records", h.ListClinicalRecordsByPatient, cached(patientListKey))
}

func detailKey(c echo.Context) string {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ""
	}
	return CacheKeys.Detail(id)
}

func patientListKey(c echo.Context) string {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ""
	}
	return CacheKeys.Scoped(PatientScope, id, c.QueryParams())
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid clinical record id", []middleware.FieldViolation{{
			Field:   "id",
			Rule:    "uuid",
			Message: "id must be a valid UUID",
		}})
	}
	return id, nil
}

func (h *Handler) CreateClinicalRecord(c echo.Context) error {
	var req CreateRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}
	rec, err := h.svc.CreateClinicalRecord(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, response.Success(msgCreated, rec))
}

// listFilters parses pagination and the record filters. The patientId
// query parameter is only honoured when allowPatient is set.
func listFilters(c echo.Context, allowPatient bool) (ListFilters, error) {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return ListFilters{}, err
	}
	q := ListQuery{
		TumorTypeID:   pagination.OptionalParam(c, "tumorTypeId"),
		Stage:         pagination.OptionalParam(c, "stage"),
		DiagnosisFrom: pagination.OptionalParam(c, "diagnosisFrom"),
		DiagnosisTo:   pagination.OptionalParam(c, "diagnosisTo"),
	}
	if allowPatient {
		q.PatientID = pagination.OptionalParam(c, "patientId")
	}
	if err := c.Validate(&q); err != nil {
		return ListFilters{}, err
	}
	return q.Filters(pg)
}

func (h *Handler) ListClinicalRecords(c echo.Context) error {
	f, err := listFilters(c, true)
	if err != nil {
		return err
	}
	page, err := h.svc.ListClinicalRecords(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(msgListed, page))
}

func (h *Handler) ListClinicalRecordsByPatient(c echo.Context) error {
	patientID, err := patient.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	f, err := listFilters(c, false)
	if err != nil {
		return err
	}
	page, err := h.svc.ListClinicalRecordsByPatient(c.Request().Context(), patientID, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(msgListed, page))
}

func (h *Handler) GetClinicalRecord(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}
	rec, err := h.svc.GetClinicalRecordByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success(msgFetched, rec))
}

func (h *Handler) UpdateClinicalRecord(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}
	rec, err := h.svc.UpdateClinicalRecord(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success(msgUpdated, rec))
}

func (h *Handler) DeleteClinicalRecord(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.svc.DeleteClinicalRecord(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Message(msgDeleted))
}
