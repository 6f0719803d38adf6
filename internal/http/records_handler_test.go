package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository/repotest"
	"fitosanitario/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRecordsServer(t *testing.T) (*httptest.Server, service.Set) {
	t.Helper()
	store, _ := repotest.NewStore(t)
	set := service.NewSet(store, nil, zap.NewNop())

	router := NewRouter(zap.NewNop())
	router.RegisterRecordRoutes(NewRecordsHandler(set, zap.NewNop()))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, set
}

// call sends body as JSON and decodes the envelope; result stays raw
func call(t *testing.T, srv *httptest.Server, method, path string, body any) (int, Result[json.RawMessage]) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			payload.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&payload).Encode(body))
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out Result[json.RawMessage]
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func createdID(t *testing.T, out Result[json.RawMessage]) int64 {
	t.Helper()
	var c Created
	require.NoError(t, json.Unmarshal(out.Result, &c))
	require.Positive(t, c.ID)
	return c.ID
}

func TestRecords_DepartmentLifecycle(t *testing.T) {
	srv, _ := newRecordsServer(t)

	status, out := call(t, srv, http.MethodPost, "/api/v1/departments", domain.Department{DaneCode: "05", Name: "Antioquia"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, ResultSuccess, out.Code)
	id := createdID(t, out)
	path := fmt.Sprintf("/api/v1/departments/%d", id)

	status, _ = call(t, srv, http.MethodPut, path, domain.Department{DaneCode: "05", Name: "ANTIOQUIA"})
	require.Equal(t, http.StatusOK, status)

	status, out = call(t, srv, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	var got domain.Department
	require.NoError(t, json.Unmarshal(out.Result, &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "ANTIOQUIA", got.Name)

	status, out = call(t, srv, http.MethodGet, "/api/v1/departments", nil)
	require.Equal(t, http.StatusOK, status)
	var all []domain.Department
	require.NoError(t, json.Unmarshal(out.Result, &all))
	assert.Len(t, all, 1)

	status, _ = call(t, srv, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, status)

	status, out = call(t, srv, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, ResultError, out.Code)
}

func TestRecords_ErrorStatus(t *testing.T) {
	srv, _ := newRecordsServer(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		status  int
		message string
	}{
		{
			name:    "validation",
			method:  http.MethodPost,
			path:    "/api/v1/departments",
			body:    domain.Department{DaneCode: "05A", Name: "Antioquia"},
			status:  http.StatusBadRequest,
			message: "[VALIDATION_ERROR] Campo 'codigoDane': Must be numeric",
		},
		{
			name:   "unknown field",
			method: http.MethodPost,
			path:   "/api/v1/departments",
			body:   `{"codigo_dane":"05","nombre":"Antioquia","capital":"Medellín"}`,
			status: http.StatusBadRequest,
		},
		{
			name:    "missing parent filter",
			method:  http.MethodGet,
			path:    "/api/v1/municipalities",
			status:  http.StatusBadRequest,
			message: "Campo 'departamento': Cannot be null",
		},
		{
			name:   "absent record",
			method: http.MethodGet,
			path:   "/api/v1/pests/404",
			status: http.StatusNotFound,
		},
		{
			name:   "update of absent record",
			method: http.MethodPut,
			path:   "/api/v1/departments/404",
			body:   domain.Department{DaneCode: "08", Name: "Atlántico"},
			status: http.StatusNotFound,
		},
		{
			name:   "non numeric id",
			method: http.MethodGet,
			path:   "/api/v1/plots/abc",
			status: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := call(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, ResultError, out.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, out.Message)
			}
		})
	}
}

func TestRecords_MethodNotAllowed(t *testing.T) {
	srv, _ := newRecordsServer(t)

	status, _ := call(t, srv, http.MethodPatch, "/api/v1/pests", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	status, _ = call(t, srv, http.MethodPut, "/api/v1/pests/1/status", map[string]string{"estado": "EN_PROCESO"})
	assert.Equal(t, http.StatusNotFound, status)
}

// seedRecordSite a 10 ha estate with one production site
func seedRecordSite(t *testing.T, set service.Set) int64 {
	t.Helper()
	ctx := context.Background()

	deptID, err := set.Territory.CreateDepartment(ctx, &domain.Department{DaneCode: "73", Name: "Tolima"})
	require.NoError(t, err)
	munID, err := set.Territory.CreateMunicipality(ctx, &domain.Municipality{DepartmentID: deptID, DaneCode: "73001", Name: "Ibagué"})
	require.NoError(t, err)
	vilID, err := set.Territory.CreateVillage(ctx, &domain.Village{MunicipalityID: munID, DaneCode: "7300101", Name: "Juntas"})
	require.NoError(t, err)
	ownerID, err := set.Owners.Create(ctx, &domain.Owner{User: domain.User{IdentificationNumber: "93123456", Name: "Julián"}})
	require.NoError(t, err)
	estateID, err := set.Sites.CreateEstate(ctx, &domain.Estate{
		OwnerID: ownerID, VillageID: vilID, CadastralNumber: "73001-0001", Area: 10,
	})
	require.NoError(t, err)
	siteID, err := set.Sites.CreateSite(ctx, &domain.ProductionSite{EstateID: estateID, ICACode: "ICA-7301", Name: "La Cabaña"})
	require.NoError(t, err)
	return siteID
}

func TestRecords_PlotAreaRuleIsUnprocessable(t *testing.T) {
	srv, set := newRecordsServer(t)
	siteID := seedRecordSite(t, set)

	status, out := call(t, srv, http.MethodPost, "/api/v1/plots",
		domain.Plot{ProductionSiteID: siteID, Number: "L1", Area: 50})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, out.Message, "[BUSINESS_RULE_VIOLATION]")

	status, out = call(t, srv, http.MethodPost, "/api/v1/plots",
		domain.Plot{ProductionSiteID: siteID, Number: "L1", Area: 4})
	require.Equal(t, http.StatusCreated, status)
	plotID := createdID(t, out)

	status, out = call(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/plots?lugar=%d", siteID), nil)
	require.Equal(t, http.StatusOK, status)
	var plots []domain.Plot
	require.NoError(t, json.Unmarshal(out.Result, &plots))
	require.Len(t, plots, 1)
	assert.Equal(t, plotID, plots[0].ID)
}

func TestRecords_InspectionStatus(t *testing.T) {
	srv, set := newRecordsServer(t)
	siteID := seedRecordSite(t, set)
	plotID, err := set.Plots.Create(context.Background(), &domain.Plot{ProductionSiteID: siteID, Number: "L1", Area: 4})
	require.NoError(t, err)

	status, out := call(t, srv, http.MethodPost, "/api/v1/inspections", map[string]any{
		"id_lote":             plotID,
		"fecha_inspeccion":    "2026-03-10T00:00:00Z",
		"tipo_inspeccion":     "RUTINARIA",
		"plantas_afectadas":   2,
		"plantas_muestreadas": 20,
	})
	require.Equal(t, http.StatusCreated, status, out.Message)
	id := createdID(t, out)
	statusPath := fmt.Sprintf("/api/v1/inspections/%d/status", id)

	status, _ = call(t, srv, http.MethodPut, statusPath, map[string]string{"estado": "EN_PROCESO"})
	require.Equal(t, http.StatusOK, status)

	status, out = call(t, srv, http.MethodPut, statusPath, map[string]string{"estado": "PENDIENTE"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, out.Message, "EN_PROCESO a PENDIENTE")

	status, out = call(t, srv, http.MethodGet, "/api/v1/inspections?estado=EN_PROCESO", nil)
	require.Equal(t, http.StatusOK, status)
	var found []domain.Inspection
	require.NoError(t, json.Unmarshal(out.Result, &found))
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)
	assert.InDelta(t, 10.0, found[0].Index, 0.001)

	status, out = call(t, srv, http.MethodGet, "/api/v1/inspections?estado=COMPLETADA", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(out.Result))
}
