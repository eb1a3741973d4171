package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/securohelp/case-service/internal/api/http/handlers"
	"github.com/securohelp/case-service/internal/auth"
	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/events"
	"github.com/securohelp/case-service/internal/observability"
	"github.com/securohelp/case-service/internal/repository/memory"
	"github.com/securohelp/case-service/internal/service"
)

type testEnv struct {
	app      *fiber.App
	store    *memory.Store
	token    string
	clientID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	actor := &domain.User{
		ID:        uuid.NewString(),
		Email:     "agent@securohelp.pl",
		FirstName: "Agent",
		LastName:  "Testowy",
		Role:      domain.UserRoleAgent,
		IsActive:  true,
	}
	require.NoError(t, store.Users().Create(ctx, actor))

	client := &domain.Client{
		ID:              uuid.NewString(),
		FirstName:       "Jan",
		LastName:        "Kowalski",
		Pesel:           "85010112345",
		GDPRConsent:     true,
		CreatedByUserID: actor.ID,
	}
	require.NoError(t, store.Clients().Create(ctx, client))

	tokens := auth.NewTokenManager("test-secret", 60)
	token, _, err := tokens.GenerateToken(actor)
	require.NoError(t, err)

	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()
	caseService := service.NewCaseService(store, dispatcher)
	dashboardService := service.NewDashboardService(store, nil, time.Minute, logger)

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("case-service", "test", nil, nil, metrics),
		Cases:          handlers.NewCasesHandler(caseService, dashboardService),
		CaseStatuses:   handlers.NewCaseStatusesHandler(service.NewStatusService(store)),
		Clients:        handlers.NewClientsHandler(service.NewClientService(store)),
		Reference:      handlers.NewReferenceHandler(service.NewReferenceService(store)),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users()),
	})

	return &testEnv{app: app, store: store, token: token, clientID: client.ID}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, authed bool) *nethttp.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := nethttp.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, nethttp.MethodGet, "/api/cases", nil, false)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", errObj["code"])
}

func TestAuthTokenCookieAccepted(t *testing.T) {
	env := newTestEnv(t)

	req, err := nethttp.NewRequest(nethttp.MethodGet, "/api/case-statuses", nil)
	require.NoError(t, err)
	req.AddCookie(&nethttp.Cookie{Name: auth.TokenCookieName, Value: env.token})

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestHealthLiveIsPublic(t *testing.T) {
	env := newTestEnv(t)
	resp := env.request(t, nethttp.MethodGet, "/health/live", nil, false)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestListCaseStatuses(t *testing.T) {
	env := newTestEnv(t)
	resp := env.request(t, nethttp.MethodGet, "/api/case-statuses", nil, true)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 8)
}

func TestGetCaseStatusByCode(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, nethttp.MethodGet, "/api/case-statuses/new", nil, true)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NEW", data["code"])
	assert.Equal(t, "Nowa", data["name"])

	resp = env.request(t, nethttp.MethodGet, "/api/case-statuses/UNKNOWN", nil, true)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}

func TestCreateCaseEndpoint(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()

	resp := env.request(t, nethttp.MethodPost, "/api/cases", map[string]any{
		"clientId":     env.clientID,
		"incidentDate": now.Format(time.RFC3339),
	}, true)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	prefix := fmt.Sprintf("SH/%d/%02d/", now.Year(), int(now.Month()))
	assert.Equal(t, prefix+"00001", data["caseNumber"])

	history, ok := data["statusHistory"].([]any)
	require.True(t, ok)
	assert.Len(t, history, 1)
}

func TestCreateCaseValidationError(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, nethttp.MethodPost, "/api/cases", map[string]any{
		"clientId": env.clientID,
	}, true)
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_FAILED", errObj["code"])
}

func TestUpdateCaseAcceptsStringStatusID(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()

	created := decodeBody(t, env.request(t, nethttp.MethodPost, "/api/cases", map[string]any{
		"clientId":     env.clientID,
		"incidentDate": now.Format(time.RFC3339),
	}, true))
	caseID := created["data"].(map[string]any)["id"].(string)

	// Status id arrives as a string, as browser form payloads send it.
	resp := env.request(t, nethttp.MethodPut, "/api/cases/"+caseID, map[string]any{
		"statusId":      "2",
		"statusComment": "dokumenty w komplecie",
	}, true)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	status := data["status"].(map[string]any)
	assert.Equal(t, "DOCUMENTS", status["code"])

	history := data["statusHistory"].([]any)
	require.Len(t, history, 2)
	newest := history[0].(map[string]any)
	assert.Equal(t, "dokumenty w komplecie", newest["comment"])
}

func TestCaseListPaginationEnvelope(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	for i := 0; i < 3; i++ {
		resp := env.request(t, nethttp.MethodPost, "/api/cases", map[string]any{
			"clientId":     env.clientID,
			"incidentDate": now.Format(time.RFC3339),
		}, true)
		require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	}

	resp := env.request(t, nethttp.MethodGet, "/api/cases?page=1&limit=2", nil, true)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].([]any)
	assert.Len(t, data, 2)

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 3, pagination["total"])
	assert.EqualValues(t, 2, pagination["totalPages"])
}

func TestDeleteCaseReturnsNotFoundAfterwards(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()

	created := decodeBody(t, env.request(t, nethttp.MethodPost, "/api/cases", map[string]any{
		"clientId":     env.clientID,
		"incidentDate": now.Format(time.RFC3339),
	}, true))
	caseID := created["data"].(map[string]any)["id"].(string)

	resp := env.request(t, nethttp.MethodDelete, "/api/cases/"+caseID, nil, true)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp = env.request(t, nethttp.MethodGet, "/api/cases/"+caseID, nil, true)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}

func TestClientCRUD(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, nethttp.MethodPost, "/api/clients", map[string]any{
		"firstName":   "Anna",
		"lastName":    "Nowak",
		"pesel":       "92020223456",
		"gdprConsent": true,
	}, true)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	clientID := created["data"].(map[string]any)["id"].(string)

	email := "anna.nowak@example.com"
	resp = env.request(t, nethttp.MethodPut, "/api/clients/"+clientID, map[string]any{
		"email": email,
	}, true)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	updated := decodeBody(t, resp)
	assert.Equal(t, email, updated["data"].(map[string]any)["email"])

	resp = env.request(t, nethttp.MethodDelete, "/api/clients/"+clientID, nil, true)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp = env.request(t, nethttp.MethodGet, "/api/clients/"+clientID, nil, true)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}

func TestClientCreateRequiresGDPRConsent(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, nethttp.MethodPost, "/api/clients", map[string]any{
		"firstName": "Anna",
		"lastName":  "Nowak",
		"pesel":     "92020223456",
	}, true)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestInsuranceCompanyCreationRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	// The seeded principal is an AGENT.
	resp := env.request(t, nethttp.MethodPost, "/api/insurance-companies", map[string]any{
		"name": "PZU",
	}, true)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
}

func TestDashboardStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	resp := env.request(t, nethttp.MethodPost, "/api/cases", map[string]any{
		"clientId":     env.clientID,
		"incidentDate": now.Format(time.RFC3339),
	}, true)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	resp = env.request(t, nethttp.MethodGet, "/api/dashboard/stats", nil, true)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 1, data["totalCases"])
}
