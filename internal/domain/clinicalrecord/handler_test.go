package clinicalrecord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncology/clinic/internal/domain/patient"
	"github.com/oncology/clinic/internal/platform/apperror"
	"github.com/oncology/clinic/internal/platform/cache"
	"github.com/oncology/clinic/internal/platform/middleware"
	"github.com/oncology/clinic/pkg/date"
)

func newTestHandler() (*Handler, testDeps, *echo.Echo) {
	d := newTestService()
	e := echo.New()
	e.Validator = middleware.NewValidator()
	return NewHandler(d.svc), d, e
}

func TestHandler_CreateClinicalRecord(t *testing.T) {
	h, d, e := newTestHandler()
	p, tt := d.seedPatient(t), d.seedTumorType(t)

	body := `{"patientId":"` + p.ID.String() + `","tumorTypeId":` + strconv.Itoa(tt.ID) +
		`,"diagnosisDate":"2024-03-01","stage":"II","treatmentProtocol":"Quimioterapia"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.CreateClinicalRecord(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data ClinicalRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, p.ID, resp.Data.PatientID)
	assert.Equal(t, "II", resp.Data.Stage)
}

func TestHandler_CreateClinicalRecord_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing patient", `{"tumorTypeId":1,"diagnosisDate":"2024-03-01","stage":"II","treatmentProtocol":"Q"}`},
		{"bad patient uuid", `{"patientId":"nope","tumorTypeId":1,"diagnosisDate":"2024-03-01","stage":"II","treatmentProtocol":"Q"}`},
		{"zero tumor type", `{"patientId":"` + uuid.NewString() + `","tumorTypeId":0,"diagnosisDate":"2024-03-01","stage":"II","treatmentProtocol":"Q"}`},
		{"missing stage", `{"patientId":"` + uuid.NewString() + `","tumorTypeId":1,"diagnosisDate":"2024-03-01","treatmentProtocol":"Q"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, e := newTestHandler()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			err := h.CreateClinicalRecord(e.NewContext(req, httptest.NewRecorder()))
			appErr, ok := apperror.As(err)
			require.True(t, ok, "expected app error, got %v", err)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestHandler_ListClinicalRecords_InvalidFilters(t *testing.T) {
	for _, query := range []string{
		"/?patientId=abc",
		"/?tumorTypeId=x",
		"/?tumorTypeId=0",
		"/?diagnosisFrom=2024-13-01",
		"/?stage=",
	} {
		h, _, e := newTestHandler()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, query, nil), httptest.NewRecorder())
		assert.Error(t, h.ListClinicalRecords(c), query)
	}
}

func TestHandler_ListClinicalRecords(t *testing.T) {
	h, d, e := newTestHandler()
	p, tt := d.seedPatient(t), d.seedTumorType(t)
	d.seedRecord(t, p, tt, 1, "I")
	d.seedRecord(t, p, tt, 9, "II")

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?diagnosisFrom=2024-03-05&tumorTypeId="+strconv.Itoa(tt.ID), nil), rec)
	require.NoError(t, h.ListClinicalRecords(c))
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestHandler_ListByPatient_UnknownPatient(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.ListClinicalRecordsByPatient(c)
	assert.ErrorIs(t, err, patient.ErrNotFound)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestHandler_UpdateClinicalRecord(t *testing.T) {
	h, d, e := newTestHandler()
	p, tt := d.seedPatient(t), d.seedTumorType(t)
	created := d.seedRecord(t, p, tt, 1, "I")

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"stage":"III"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())

	require.NoError(t, h.UpdateClinicalRecord(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stage":"III"`)
	assert.Contains(t, rec.Body.String(), `"treatmentProtocol":"Quimioterapia"`)
}

func TestHandler_DeleteClinicalRecord_InvalidID(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("123")

	err := h.DeleteClinicalRecord(c)
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected app error, got %v", err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRoutes_PatientListCacheEvictedOnCreate(t *testing.T) {
	log := zerolog.Nop()
	store := cache.NewMemoryStore()
	d := newTestService()
	svc := NewService(d.repo, d.patients, d.tumorTypes, store, d.publisher, log)

	e := echo.New()
	e.Validator = middleware.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	api := e.Group("/api")
	cached := middleware.NewCacher(store, time.Minute, log)
	patient.NewHandler(d.patients).RegisterRoutes(api, cached)
	NewHandler(svc).RegisterRoutes(api, cached)

	p, tt := d.seedPatient(t), d.seedTumorType(t)
	path := "/api/patients/" + p.ID.String() + "/clinical-records"

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get()
	require.Equal(t, "MISS", rec.Header().Get(middleware.CacheHeader))
	require.Contains(t, rec.Body.String(), `"total":0`)
	require.Equal(t, "HIT", get().Header().Get(middleware.CacheHeader))

	diagnosed := date.New(2024, time.March, 1)
	_, err := svc.CreateClinicalRecord(context.Background(), CreateRequest{
		PatientID: p.ID, TumorTypeID: tt.ID, DiagnosisDate: &diagnosed, Stage: "II", TreatmentProtocol: "Radioterapia",
	})
	require.NoError(t, err)

	rec = get()
	assert.Equal(t, "MISS", rec.Header().Get(middleware.CacheHeader), "create evicts the patient's list")
	assert.Contains(t, rec.Body.String(), `"total":1`)
}
