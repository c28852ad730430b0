package main

import (
	"github.com/oncology/clinic/internal/platform/openapi"
)

const apiVersion = "1.0.0"

var (
	patientStatuses = []string{"Activo", "Seguimiento", "Inactivo"}
	genders         = []string{"MASCULINO", "FEMENINO", "OTRO", "NO_ESPECIFICADO"}
)

func prop(typ string, extra ...string) map[string]interface{} {
	p := map[string]interface{}{"type": typ}
	if len(extra) > 0 {
		p["format"] = extra[0]
	}
	return p
}

func enum(values []string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values}
}

func object(required []string, props map[string]interface{}) map[string]interface{} {
	o := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		o["required"] = required
	}
	return o
}

// apiDocs describes the REST surface for /openapi.json.
func apiDocs(baseURL string) *openapi.Generator {
	uuidID := prop("string", "uuid")
	intID := map[string]interface{}{"type": "integer", "minimum": 1}

	patientProps := func(withID bool) map[string]interface{} {
		props := map[string]interface{}{
			"firstName": prop("string"),
			"lastName":  prop("string"),
			"birthDate": prop("string", "date"),
			"gender":    enum(genders),
			"status":    enum(patientStatuses),
		}
		if withID {
			props["id"] = uuidID
		}
		return props
	}
	// Inactivo is reached only through DELETE /patients/{id}.
	patientUpdate := patientProps(false)
	patientUpdate["status"] = enum([]string{"Activo", "Seguimiento"})

	tumorTypeProps := func(withID bool) map[string]interface{} {
		props := map[string]interface{}{
			"name":           prop("string"),
			"systemAffected": prop("string"),
		}
		if withID {
			props["id"] = prop("integer")
		}
		return props
	}
	recordProps := func(withID bool) map[string]interface{} {
		props := map[string]interface{}{
			"patientId":         uuidID,
			"tumorTypeId":       prop("integer"),
			"diagnosisDate":     prop("string", "date"),
			"stage":             prop("string"),
			"treatmentProtocol": prop("string"),
		}
		if withID {
			props["id"] = uuidID
		}
		return props
	}
	recordFilters := []openapi.Param{
		{Name: "tumorTypeId", Type: "integer"},
		{Name: "stage", Type: "string", Description: "SQL LIKE pattern, e.g. III%"},
		{Name: "diagnosisFrom", Type: "string", Format: "date", Description: "Inclusive lower bound"},
		{Name: "diagnosisTo", Type: "string", Format: "date", Description: "Inclusive upper bound"},
	}

	return openapi.NewGenerator("Clinic Microservice API", apiVersion, baseURL).
		AddResource(openapi.Resource{
			Name:     "Patient",
			Path:     "/patients",
			Tag:      "patients",
			IDSchema: uuidID,
			Schema:   object(nil, patientProps(true)),
			Create:   object([]string{"firstName", "lastName", "birthDate", "gender"}, patientProps(false)),
			Update:   object(nil, patientUpdate),
			Query: []openapi.Param{
				{Name: "search", Type: "string", Description: "Case-insensitive match on first or last name"},
				{Name: "status", Type: "string", Enum: patientStatuses, Description: "Defaults to Activo and Seguimiento"},
				{Name: "gender", Type: "string", Enum: genders},
			},
			DeleteSummary: "Disable Patient",
		}).
		AddResource(openapi.Resource{
			Name:     "TumorType",
			Path:     "/tumor-types",
			Tag:      "tumor-types",
			IDSchema: intID,
			Schema:   object(nil, tumorTypeProps(true)),
			Create:   object([]string{"name", "systemAffected"}, tumorTypeProps(false)),
			Update:   object(nil, tumorTypeProps(false)),
			Query: []openapi.Param{
				{Name: "search", Type: "string", Description: "Case-insensitive match on name"},
				{Name: "systemAffected", Type: "string", Description: "Case-insensitive prefix"},
			},
		}).
		AddResource(openapi.Resource{
			Name:     "ClinicalRecord",
			Path:     "/clinical-records",
			Tag:      "clinical-records",
			IDSchema: uuidID,
			Schema:   object(nil, recordProps(true)),
			Create:   object([]string{"patientId", "tumorTypeId", "diagnosisDate", "stage", "treatmentProtocol"}, recordProps(false)),
			Update:   object(nil, recordProps(false)),
			Query:    append([]openapi.Param{{Name: "patientId", Type: "string", Format: "uuid"}}, recordFilters...),
		}).
		AddSubList(openapi.SubList{
			Path:     "/patients/{id}/clinical-records",
			Tag:      "clinical-records",
			Summary:  "List a patient's clinical records",
			Item:     "ClinicalRecord",
			IDSchema: uuidID,
			Query:    recordFilters,
		})
}
