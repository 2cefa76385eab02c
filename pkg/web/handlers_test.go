package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/persistence/file"
	"github.com/dukex/sdsprotocol/pkg/protocols"
	"github.com/dukex/sdsprotocol/pkg/registry"
	"github.com/dukex/sdsprotocol/pkg/services"
	"github.com/dukex/sdsprotocol/pkg/web"
	"github.com/dukex/sdsprotocol/pkg/workflow"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scaffoldLocations = []any{
	"/workflow/scaffold.json",
	"/workflow/viewer.json",
	"/workflow/webgl.json",
	"/workflow/thumbnail.json",
	"/workflow/webgl",
	map[string]any{"version": "0.1.0"},
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	fs := memfs.New()
	for _, name := range []string{"scaffold.json", "viewer.json", "webgl.json", "thumbnail.json"} {
		require.NoError(t, util.WriteFile(fs, "/workflow/"+name, []byte("{}"), 0o644))
	}

	require.NoError(t, fs.MkdirAll("/workflow/webgl", 0o755))

	logger := slog.Default()
	catalog := protocols.Default(fs, logger)

	nodes := registry.NewRegistry(logger)
	nodes.RegisterDefaultNodes(catalog)

	persistence := file.NewPersistence(t.TempDir())
	stepService := services.NewStep(persistence, catalog, nil, logger)
	executor := workflow.NewExecutor(nodes, persistence.StepRepository(), nil, logger)

	handlers := web.NewAPIHandlers(catalog, stepService, executor, validator.New(validator.WithRequiredStructEnabled()), nodes)

	app := fiber.New()
	web.RegisterRoutes(app, handlers)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func TestAPIHandlers_GetProtocols(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/protocols", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Protocols  []web.ProtocolSummary `json:"protocols"`
		TotalCount int                   `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(body, &result))

	require.Equal(t, 1, result.TotalCount)
	assert.Equal(t, protocols.SimpleScaffoldName, result.Protocols[0].Name)
	assert.Equal(t, models.ProtocolFamily, result.Protocols[0].ID)
	assert.Equal(t, 6, result.Protocols[0].Inputs)
	assert.True(t, result.Protocols[0].Supported)
}

func TestAPIHandlers_GetProtocol(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/protocols/SimpleScaffold", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p models.Protocol
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "0.1.0", p.Version)
	require.Len(t, p.Inputs, 6)
	assert.Equal(t, models.SlotTypeDirectory, p.Inputs[4].Type)

	resp, body = doRequest(t, app, http.MethodGet, "/protocols/ComplexScaffold", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "not_found")
}

func TestAPIHandlers_DescribeProtocol(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/protocols/SimpleScaffold/describe", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")
	assert.Contains(t, string(body), "# SimpleScaffold\n")
	assert.Contains(t, string(body), "## Inputs")
}

func TestAPIHandlers_MatchProtocol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		protocol       string
		body           any
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "exact match",
			protocol:       "SimpleScaffold",
			body:           web.LocationsRequest{Locations: scaffoldLocations},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "too few locations",
			protocol:       "SimpleScaffold",
			body:           web.LocationsRequest{Locations: scaffoldLocations[:4]},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedType:   "match_rejected",
		},
		{
			name:     "wrong order",
			protocol: "SimpleScaffold",
			body: web.LocationsRequest{Locations: []any{
				"/workflow/webgl", "/workflow/viewer.json", "/workflow/webgl.json",
				"/workflow/thumbnail.json", "/workflow/scaffold.json", map[string]any{},
			}},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedType:   "match_rejected",
		},
		{
			name:           "missing locations",
			protocol:       "SimpleScaffold",
			body:           map[string]any{},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
		{
			name:           "unknown protocol",
			protocol:       "ComplexScaffold",
			body:           web.LocationsRequest{Locations: scaffoldLocations},
			expectedStatus: http.StatusNotFound,
			expectedType:   "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := setupTestApp(t)

			resp, body := doRequest(t, app, http.MethodPost, "/protocols/"+tt.protocol+"/match", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedType != "" {
				assert.Contains(t, string(body), tt.expectedType)

				return
			}

			var result web.MatchResponse
			require.NoError(t, json.Unmarshal(body, &result))
			assert.Equal(t, 6, result.Assignment.Len())
			assert.Equal(t, "/workflow/scaffold.json", result.Protocol.Inputs[0].Value)
			assert.Equal(t, map[string]any{"version": "0.1.0"}, result.Protocol.Inputs[5].Value)
		})
	}
}

func TestAPIHandlers_StepLifecycle(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doRequest(t, app, http.MethodGet, "/steps/scaffold-sds", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodPut, "/steps/scaffold-sds", web.SaveStepRequest{ProtocolName: "SimpleScaffold"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// Saving the same step again is an update.
	resp, body = doRequest(t, app, http.MethodPut, "/steps/scaffold-sds", web.SaveStepRequest{ProtocolName: "SimpleScaffold"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = doRequest(t, app, http.MethodGet, "/steps/scaffold-sds", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var step models.StepConfig
	require.NoError(t, json.Unmarshal(body, &step))
	assert.Equal(t, models.StepConfig{Identifier: "scaffold-sds", ProtocolName: "SimpleScaffold"}, step)

	resp, body = doRequest(t, app, http.MethodPost, "/steps/scaffold-sds/execute", web.LocationsRequest{Locations: scaffoldLocations})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var result workflow.Result
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "scaffold-sds", result.Identifier)
	assert.NotEmpty(t, result.ExecutionID)
	assert.Equal(t, 6, result.Assignment.Len())

	resp, body = doRequest(t, app, http.MethodPost, "/steps/scaffold-sds/execute", web.LocationsRequest{Locations: []any{"/workflow/scaffold.json"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "match_rejected")

	resp, body = doRequest(t, app, http.MethodGet, "/steps", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"total_count":1`)

	resp, _ = doRequest(t, app, http.MethodDelete, "/steps/scaffold-sds", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, "/steps/scaffold-sds", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_SaveStepErrors(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, _ := doRequest(t, app, http.MethodPut, "/steps/first", web.SaveStepRequest{ProtocolName: "SimpleScaffold"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tests := []struct {
		name           string
		target         string
		body           any
		expectedStatus int
	}{
		{"unconfigured protocol", "/steps/second", web.SaveStepRequest{ProtocolName: models.UnconfiguredProtocol}, http.StatusBadRequest},
		{"unknown protocol", "/steps/second", web.SaveStepRequest{ProtocolName: "ComplexScaffold"}, http.StatusBadRequest},
		{"missing protocol", "/steps/second", map[string]any{}, http.StatusBadRequest},
		{"rename onto existing step", "/steps/first", web.SaveStepRequest{ProtocolName: "SimpleScaffold", PreviousIdentifier: "second"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, http.MethodPut, tt.target, tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode, string(body))
		})
	}
}

func TestAPIHandlers_ExecuteUnknownStep(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodPost, "/steps/missing/execute", web.LocationsRequest{Locations: scaffoldLocations})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "step_not_found")
}

func TestAPIHandlers_GetNodeTypes(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/nodes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var nodes []web.NodeTypeResponse
	require.NoError(t, json.Unmarshal(body, &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "sds-protocol", nodes[0].ID)
	assert.NotEmpty(t, nodes[0].Schema)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
}
