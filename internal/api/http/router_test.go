package http

import (
	"bytes"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sojus/helpdesk/internal/api/dto"
	"github.com/sojus/helpdesk/internal/api/http/handlers"
	"github.com/sojus/helpdesk/internal/auth"
	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/events"
	"github.com/sojus/helpdesk/internal/observability"
	"github.com/sojus/helpdesk/internal/service"
	"github.com/sojus/helpdesk/internal/testkit"
)

type testServer struct {
	app    *fiber.App
	tokens *auth.TokenManager
	dir    testkit.Directory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := testkit.NewSQLiteStore(t)
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	dispatcher := events.NewInMemoryDispatcher()
	metrics.RegisterLifecycleHandlers(dispatcher)
	projector := service.NewProjector(time.UTC)

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Projector:  projector,
		Dispatcher: dispatcher,
		Rejections: metrics,
	})
	auditService := service.NewAuditService(store.Repositories().Audit, projector)
	tokens := auth.NewTokenManager("test-secret", 30)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:          handlers.NewHealthHandler("helpdesk", "test", map[string]handlers.Pinger{"store": store}),
		Tickets:         handlers.NewTicketsHandler(ticketService),
		Audit:           handlers.NewAuditHandler(auditService),
		AuthMiddleware:  auth.NewAuthMiddleware(tokens, store.Repositories().Directory),
		MetricsGatherer: registry,
	})
	return &testServer{app: app, tokens: tokens, dir: dir}
}

type response struct {
	status int
	body   []byte
}

func (r response) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, dst), string(r.body))
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, user *domain.User, method, path string, body any) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, _, err := s.tokens.GenerateToken(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, body: raw}
}

func (s *testServer) createTicket(t *testing.T, user *domain.User, body map[string]any) dto.TicketView {
	t.Helper()
	resp := s.do(t, user, nethttp.MethodPost, "/api/tickets", body)
	require.Equal(t, nethttp.StatusCreated, resp.status, string(resp.body))
	var envelope struct {
		Data dto.TicketView `json:"data"`
	}
	resp.decode(t, &envelope)
	return envelope.Data
}

func errorCode(t *testing.T, resp response) string {
	t.Helper()
	var body errorBody
	resp.decode(t, &body)
	return body.Error.Code
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	created := s.createTicket(t, &s.dir.Operator, map[string]any{
		"subject":     "PC del Juez no enciende",
		"description": "No arranca",
		"priority":    "BAJA",
		"court_id":    "1",
		"asset_id":    s.dir.Asset.ID,
	})
	assert.Equal(t, "HIGH", created.Priority)
	assert.Equal(t, "REQUESTED", created.Status)
	require.NotNil(t, created.AssetInventoryTag)
	assert.Equal(t, s.dir.Asset.InventoryTag, *created.AssetInventoryTag)

	busy := s.do(t, &s.dir.Operator, nethttp.MethodPost, "/api/tickets", map[string]any{
		"subject": "Otra", "description": "d", "asset_id": s.dir.Asset.ID,
	})
	assert.Equal(t, nethttp.StatusConflict, busy.status)
	assert.Equal(t, "ASSET_BUSY", errorCode(t, busy))

	statusPath := "/api/tickets/" + created.ID + "/status"
	resp := s.do(t, &s.dir.Technician, nethttp.MethodPatch, statusPath, map[string]any{
		"status": "ASSIGNED", "technician_id": s.dir.Operator.ID,
	})
	assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.status)
	assert.Equal(t, "INVALID_ASSIGNMENT", errorCode(t, resp))

	resp = s.do(t, &s.dir.Technician, nethttp.MethodPatch, statusPath, map[string]any{
		"status": "ASSIGNED", "technician_id": s.dir.Technician.ID,
	})
	require.Equal(t, nethttp.StatusOK, resp.status, string(resp.body))

	resp = s.do(t, &s.dir.Technician, nethttp.MethodPatch, statusPath, map[string]any{"status": "CLOSED"})
	assert.Equal(t, nethttp.StatusConflict, resp.status)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, resp))

	s.do(t, &s.dir.Technician, nethttp.MethodPatch, statusPath, map[string]any{"status": "EN_CURSO"})
	resp = s.do(t, &s.dir.Technician, nethttp.MethodPatch, statusPath, map[string]any{"status": "CLOSED", "comment": "Resolved"})
	require.Equal(t, nethttp.StatusOK, resp.status, string(resp.body))
	var closed struct {
		Data dto.TicketView `json:"data"`
	}
	resp.decode(t, &closed)
	assert.Equal(t, "CLOSED", closed.Data.Status)
	require.NotNil(t, closed.Data.ClosedAt)
	require.NotNil(t, closed.Data.Log)
	assert.Contains(t, *closed.Data.Log, "tecnico: Resolved")

	resp = s.do(t, &s.dir.Operator, nethttp.MethodGet, "/api/tickets/"+created.ID, nil)
	assert.Equal(t, nethttp.StatusOK, resp.status)

	resp = s.do(t, &s.dir.Admin, nethttp.MethodGet, "/api/audit/Ticket/"+created.ID, nil)
	require.Equal(t, nethttp.StatusOK, resp.status)
	var trail struct {
		Data dto.AuditListResponse `json:"data"`
	}
	resp.decode(t, &trail)
	assert.Equal(t, 4, trail.Data.Count)
	assert.Equal(t, "STATUS_CHANGE", trail.Data.Items[0].Action)

	resp = s.do(t, &s.dir.Admin, nethttp.MethodDelete, "/api/tickets/"+created.ID, nil)
	assert.Equal(t, nethttp.StatusNoContent, resp.status)
	resp = s.do(t, &s.dir.Admin, nethttp.MethodDelete, "/api/tickets/"+created.ID, nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestRouteGuards(t *testing.T) {
	s := newTestServer(t)
	ticket := s.createTicket(t, &s.dir.Admin, map[string]any{"subject": "Teclado", "description": "d"})

	cases := []struct {
		name   string
		user   *domain.User
		method string
		path   string
		body   any
		status int
	}{
		{"anonymous listing", nil, nethttp.MethodGet, "/api/tickets", nil, nethttp.StatusUnauthorized},
		{"technician cannot create", &s.dir.Technician, nethttp.MethodPost, "/api/tickets",
			map[string]any{"subject": "s", "description": "d"}, nethttp.StatusForbidden},
		{"operator cannot change status", &s.dir.Operator, nethttp.MethodPatch, "/api/tickets/" + ticket.ID + "/status",
			map[string]any{"status": "ASSIGNED"}, nethttp.StatusForbidden},
		{"technician cannot delete", &s.dir.Technician, nethttp.MethodDelete, "/api/tickets/" + ticket.ID, nil, nethttp.StatusForbidden},
		{"operator cannot read audit", &s.dir.Operator, nethttp.MethodGet, "/api/audit", nil, nethttp.StatusForbidden},
		{"disabled user", &s.dir.DisabledTech, nethttp.MethodGet, "/api/tickets", nil, nethttp.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := s.do(t, tc.user, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.status, string(resp.body))
			assert.NotEmpty(t, errorCode(t, resp))
		})
	}
}

func TestCreateValidationOverHTTP(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, &s.dir.Operator, nethttp.MethodPost, "/api/tickets", map[string]any{"description": "d"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)
	var body errorBody
	resp.decode(t, &body)
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	assert.Equal(t, "is required", body.Error.Details["subject"])

	resp = s.do(t, &s.dir.Operator, nethttp.MethodPost, "/api/tickets", map[string]any{
		"subject": "s", "description": "d", "court_id": s.dir.InactiveCourt.ID,
	})
	assert.Equal(t, nethttp.StatusNotFound, resp.status)
}

func TestListingsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.createTicket(t, &s.dir.Operator, map[string]any{"subject": "Uno", "description": "d", "priority": "ALTA"})
	s.createTicket(t, &s.dir.Operator, map[string]any{"subject": "Dos", "description": "d"})
	s.createTicket(t, &s.dir.Admin, map[string]any{"subject": "Tres", "description": "d"})

	list := func(user *domain.User, path string) dto.TicketListResponse {
		resp := s.do(t, user, nethttp.MethodGet, path, nil)
		require.Equal(t, nethttp.StatusOK, resp.status, string(resp.body))
		var envelope struct {
			Data dto.TicketListResponse `json:"data"`
		}
		resp.decode(t, &envelope)
		return envelope.Data
	}

	assert.Equal(t, 3, list(&s.dir.Admin, "/api/tickets").Count)
	assert.Equal(t, 2, list(&s.dir.Operator, "/api/tickets/my").Count)
	assert.Equal(t, 0, list(&s.dir.Technician, "/api/tickets/my").Count)
	assert.Equal(t, 1, list(&s.dir.Admin, "/api/tickets?priority=HIGH").Count)
	assert.Equal(t, 3, list(&s.dir.Admin, "/api/tickets?status=SOLICITADO,ASSIGNED").Count)
	assert.Equal(t, 1, list(&s.dir.Admin, "/api/tickets?page=2&page_size=2").Count)
	assert.Equal(t, 3, list(&s.dir.Admin, "/api/tickets?page_size=1000000000").Count)

	resp := s.do(t, &s.dir.Admin, nethttp.MethodGet, "/api/tickets?status=ARCHIVED", nil)
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)

	resp = s.do(t, &s.dir.Admin, nethttp.MethodGet, "/api/tickets?page=9223372036854775807&page_size=1000000000", nil)
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, resp))

	recent := s.do(t, &s.dir.Admin, nethttp.MethodGet, "/api/audit?limit=2", nil)
	require.Equal(t, nethttp.StatusOK, recent.status)
	var audit struct {
		Data dto.AuditListResponse `json:"data"`
	}
	recent.decode(t, &audit)
	assert.Equal(t, 2, audit.Data.Count)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, nil, nethttp.MethodGet, "/health/live", nil)
	assert.Equal(t, nethttp.StatusOK, resp.status)
	resp = s.do(t, nil, nethttp.MethodGet, "/health/ready", nil)
	assert.Equal(t, nethttp.StatusOK, resp.status)
	assert.Contains(t, string(resp.body), `"store":"ok"`)

	s.createTicket(t, &s.dir.Operator, map[string]any{"subject": "s", "description": "d"})
	s.do(t, &s.dir.Operator, nethttp.MethodGet, "/api/tickets/missing", nil)

	resp = s.do(t, nil, nethttp.MethodGet, "/metrics", nil)
	require.Equal(t, nethttp.StatusOK, resp.status)
	metrics := string(resp.body)
	assert.True(t, strings.Contains(metrics, `helpdesk_ticket_events_total{event="ticket_created",status="REQUESTED"} 1`), metrics)
	assert.Contains(t, metrics, `http_errors_total{code="NOT_FOUND",method="GET",route="/api/tickets/:id"} 1`)

	resp = s.do(t, nil, nethttp.MethodGet, "/nowhere", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}
