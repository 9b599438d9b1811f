package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/catalog"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/auth"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/repository"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/service"
)

type memSubmissions struct {
	mu    sync.Mutex
	items []domain.Submission
}

func (m *memSubmissions) Create(_ context.Context, sub *domain.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub.PublicID = "rwa-12345-6789"
	sub.CreatedAt = time.Now()
	m.items = append(m.items, *sub)
	return nil
}

func (m *memSubmissions) ListByUser(_ context.Context, userID string) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Submission{}
	for _, s := range m.items {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSubmissions) Get(_ context.Context, userID, publicID string) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.items {
		if s.UserID == userID && s.PublicID == publicID {
			return &s, nil
		}
	}
	return nil, domain.ErrSubmissionNotFound
}

type countingCloser struct {
	mu     sync.Mutex
	closed []string
}

func (c *countingCloser) CloseSession(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = append(c.closed, id)
	return 0
}

type fixture struct {
	router *gin.Engine
	svc    *service.Orchestrator
	panels *countingCloser
}

func setup(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cat, err := catalog.Default()
	require.NoError(t, err)

	sessions := repository.NewSessionRepository(client)
	svc := service.NewOrchestrator(sessions, &memSubmissions{})
	panels := &countingCloser{}
	h := New(svc, cat, sessions, panels)
	h.keepAlive = 50 * time.Millisecond

	r := gin.New()
	r.Use(auth.OptionalUser())
	h.Register(r.Group("/api/v1/wizard"))
	return &fixture{router: r, svc: svc, panels: panels}
}

func (f *fixture) do(method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", user)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type sessionResp struct {
	Session domain.Session `json:"session"`
	Summary domain.Summary `json:"summary"`
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) sessionResp {
	t.Helper()
	var resp sessionResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func (f *fixture) start(t *testing.T) string {
	t.Helper()
	w := f.do(http.MethodPost, "/api/v1/wizard/sessions", "u1", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeSession(t, w).Session.SessionID
}

func (f *fixture) fill(t *testing.T, id string) {
	t.Helper()
	base := "/api/v1/wizard/sessions/" + id + "/sections/"
	for section, body := range map[string]any{
		"projectInfo":  gin.H{"projectName": "Harbour Tower", "projectGoal": "Capital Raise", "description": "Mixed-use tower next to the harbour", "targetRaiseAmount": 2_500_000},
		"property":     gin.H{"title": "Harbour Tower", "total_value": 4_000_000, "location": "Lisbon", "token_price": 50, "total_tokens": 50_000, "annual_yield": 6},
		"compliance":   gin.H{"kycProvider": "Sumsub", "regFramework": "Reg D"},
		"distribution": gin.H{"minInvestment": 500},
	} {
		w := f.do(http.MethodPatch, base+section, "u1", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
}

func TestSessionLifecycle(t *testing.T) {
	f := setup(t)
	id := f.start(t)

	w := f.do(http.MethodGet, "/api/v1/wizard/sessions/"+id, "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeSession(t, w)
	assert.Equal(t, domain.StepProjectInitiation, resp.Summary.CurrentStep)
	assert.Equal(t, 20.0, resp.Session.Record.TokenAllocation.Founders)

	w = f.do(http.MethodGet, "/api/v1/wizard/sessions/"+id, "someone-else", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/v1/wizard/sessions", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = f.do(http.MethodDelete, "/api/v1/wizard/sessions/"+id, "u1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{id}, f.panels.closed)

	w = f.do(http.MethodGet, "/api/v1/wizard/sessions/"+id, "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateSection_Errors(t *testing.T) {
	f := setup(t)
	id := f.start(t)
	base := "/api/v1/wizard/sessions/" + id + "/sections/"

	tests := []struct {
		name    string
		section string
		body    any
		status  int
	}{
		{"unknown section", "marketing", gin.H{"x": 1}, http.StatusBadRequest},
		{"unknown field", "compliance", gin.H{"kyc": "x"}, http.StatusBadRequest},
		{"type mismatch", "property", gin.H{"total_value": "lots"}, http.StatusBadRequest},
		{"not an object", "property", []int{1}, http.StatusBadRequest},
		{"valid", "jurisdiction", gin.H{"country": "PT"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPatch, base+tt.section, "u1", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestToggles(t *testing.T) {
	f := setup(t)
	id := f.start(t)

	w := f.do(http.MethodPost, "/api/v1/wizard/sessions/"+id+"/compliance/blocked-countries/ir/toggle", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"IR"}, decodeSession(t, w).Session.Record.Compliance.BlockedCountries)

	w = f.do(http.MethodPost, "/api/v1/wizard/sessions/"+id+"/distribution/channels/Email/toggle", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodPost, "/api/v1/wizard/sessions/"+id+"/distribution/channels/Email/toggle", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeSession(t, w).Session.Record.Distribution.MarketingChannels)
}

func TestNavigationGating(t *testing.T) {
	f := setup(t)
	id := f.start(t)
	base := "/api/v1/wizard/sessions/" + id

	w := f.do(http.MethodPost, base+"/back", "u1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = f.do(http.MethodPost, base+"/next", "u1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = f.do(http.MethodPost, base+"/goto/tokenomics", "u1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = f.do(http.MethodPost, base+"/goto/moon", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.fill(t, id)
	w = f.do(http.MethodPost, base+"/goto/distribution", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StepDistribution, decodeSession(t, w).Summary.CurrentStep)

	w = f.do(http.MethodPost, base+"/next", "u1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = f.do(http.MethodPost, base+"/goto/education", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeSession(t, w).Session.CurrentStep)
}

func TestSummaryAndApplyYield(t *testing.T) {
	f := setup(t)
	id := f.start(t)
	base := "/api/v1/wizard/sessions/" + id

	w := f.do(http.MethodPatch, base+"/sections/property", "u1", gin.H{"lockup_months": 8, "token_price": 50, "total_tokens": 50_000, "total_value": 4_000_000})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, base+"/summary", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Summary domain.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 6.5, resp.Summary.SuggestedYield)
	assert.Equal(t, 2_500_000.0, resp.Summary.TotalRaise)
	assert.Equal(t, 160.0, resp.Summary.CoverageRatio)
	assert.False(t, resp.Summary.Validity[domain.StepTokenomics])

	w = f.do(http.MethodPost, base+"/tokenomics/apply-yield", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	s := decodeSession(t, w)
	require.NotNil(t, s.Session.Record.Property.AnnualYield)
	assert.Equal(t, 6.5, *s.Session.Record.Property.AnnualYield)
	assert.True(t, s.Summary.Validity[domain.StepTokenomics])
}

func TestEducation(t *testing.T) {
	f := setup(t)
	id := f.start(t)
	base := "/api/v1/wizard/sessions/" + id

	w := f.do(http.MethodGet, base+"/education", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tokenizing Real Estate")

	f.do(http.MethodPatch, base+"/sections/projectInfo", "u1", gin.H{"assetClass": "Debt"})
	w = f.do(http.MethodGet, base+"/education", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Private Credit")
}

func TestSubmit(t *testing.T) {
	f := setup(t)
	id := f.start(t)
	base := "/api/v1/wizard/sessions/" + id

	w := f.do(http.MethodPost, base+"/submit", "u1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	f.fill(t, id)
	w = f.do(http.MethodPatch, base+"/sections/tokenAllocation", "u1", gin.H{"founders": 30})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, -10.0, decodeSession(t, w).Summary.AllocationRemaining)

	w = f.do(http.MethodPost, base+"/submit", "u1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	f.do(http.MethodPatch, base+"/sections/tokenAllocation", "u1", gin.H{"founders": 20})
	w = f.do(http.MethodPost, base+"/submit", "u1", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "rwa-12345-6789")

	w = f.do(http.MethodPatch, base+"/sections/jurisdiction", "u1", gin.H{"country": "PT"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodGet, "/api/v1/wizard/submissions/rwa-12345-6789", "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodGet, "/api/v1/wizard/submissions/rwa-12345-6789", "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(http.MethodGet, "/api/v1/wizard/submissions", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"complexity":"Medium"`)
}

func TestStreamEvents(t *testing.T) {
	f := setup(t)
	id := f.start(t)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/wizard/sessions/"+id+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("X-User-Id", "u1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	nextEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	assert.Equal(t, "initial", nextEvent())

	_, err = f.svc.ToggleBlockedCountry(ctx, "u1", id, "CU")
	require.NoError(t, err)
	assert.Equal(t, "update", nextEvent())

	require.NoError(t, f.svc.Discard(ctx, "u1", id))
	assert.Equal(t, "deleted", nextEvent())
}
