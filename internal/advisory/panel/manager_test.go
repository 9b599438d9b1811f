package panel

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/advisory"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gatedService holds every call until the gate is closed and can fail a
// number of calls before succeeding.
type gatedService struct {
	*advisory.MockService
	gate  chan struct{}
	fails atomic.Int32
}

func newGatedService() *gatedService {
	return &gatedService{MockService: advisory.NewMockService(0), gate: make(chan struct{})}
}

func (g *gatedService) open() { close(g.gate) }

func (g *gatedService) pass(ctx context.Context) error {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	if g.fails.Add(-1) >= 0 {
		return advisory.ErrUpstream
	}
	return nil
}

func (g *gatedService) SuggestAssetDetails(ctx context.Context, in advisory.AssetPrompt) (*advisory.AssetSuggestion, error) {
	if err := g.pass(ctx); err != nil {
		return nil, err
	}
	return g.MockService.SuggestAssetDetails(ctx, in)
}

func (g *gatedService) GenerateQuiz(ctx context.Context, topic string) (*advisory.QuizSet, error) {
	if err := g.pass(ctx); err != nil {
		return nil, err
	}
	return g.MockService.GenerateQuiz(ctx, topic)
}

type fakeWizard struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeWizard() *fakeWizard {
	rec := domain.NewProjectRecord()
	rec.Property.Title = "Harbor Lofts"
	rec.Property.TotalValue = 2_000_000
	return &fakeWizard{sessions: map[string]*domain.Session{
		"s1": {SessionID: "s1", UserID: "u1", Record: rec, Status: domain.StatusDraft},
		"s2": {SessionID: "s2", UserID: "u1", Record: domain.NewProjectRecord(), Status: domain.StatusDraft},
	}}
}

func (f *fakeWizard) Get(_ context.Context, userID, sessionID string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeWizard) UpdateFields(_ context.Context, userID, sessionID string, section domain.Section, fields map[string]any) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	if err := s.Record.MergeFields(section, fields); err != nil {
		return nil, err
	}
	s.Revalidate()
	cp := *s
	return &cp, nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func await(t *testing.T, m *Manager, sessionID string, kind Kind) View {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := m.Await(ctx, "u1", sessionID, kind)
	require.NoError(t, err)
	return v
}

func TestTrigger_InputGuards(t *testing.T) {
	m := NewManager(advisory.NewMockService(0), newFakeWizard(), time.Minute)
	defer m.Shutdown()
	ctx := context.Background()

	_, err := m.Trigger(ctx, "u1", "s1", KindAssetAutofill, Input{Text: "  tiny  "})
	assert.ErrorIs(t, err, ErrInputTooShort)

	_, err = m.Trigger(ctx, "u1", "s1", KindQuiz, Input{Text: "SPV"})
	assert.ErrorIs(t, err, ErrInputTooShort)

	_, err = m.Trigger(ctx, "u1", "s2", KindBusinessPlan, Input{})
	assert.ErrorIs(t, err, ErrInputMissing)

	_, err = m.Trigger(ctx, "u1", "s2", KindTokenomics, Input{})
	assert.ErrorIs(t, err, ErrInputMissing)

	_, err = m.Trigger(ctx, "u1", "s1", Kind("horoscope"), Input{Text: "whatever"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = m.Trigger(ctx, "u2", "s1", KindQuiz, Input{Text: "SPV basics"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.Equal(t, StateIdle, m.Get("u1", "s1", KindAssetAutofill).State)
}

func TestTrigger_OneInFlightPerPanel(t *testing.T) {
	svc := newGatedService()
	m := NewManager(svc, newFakeWizard(), time.Minute)
	defer m.Shutdown()
	ctx := context.Background()

	v, err := m.Trigger(ctx, "u1", "s1", KindAssetAutofill, Input{Text: "Ten flats near the harbour"})
	require.NoError(t, err)
	assert.Equal(t, StateLoading, v.State)

	_, err = m.Trigger(ctx, "u1", "s1", KindAssetAutofill, Input{Text: "Ten flats near the harbour"})
	assert.ErrorIs(t, err, ErrPanelBusy)
	_, err = m.Reset("u1", "s1", KindAssetAutofill)
	assert.ErrorIs(t, err, ErrPanelBusy)

	// other kinds and other sessions are independent
	_, err = m.Trigger(ctx, "u1", "s1", KindQuiz, Input{Text: "SPV basics"})
	require.NoError(t, err)
	_, err = m.Trigger(ctx, "u1", "s2", KindAssetAutofill, Input{Text: "Ten flats near the harbour"})
	require.NoError(t, err)

	svc.open()
	assert.Equal(t, StateResult, await(t, m, "s1", KindAssetAutofill).State)
	assert.Equal(t, StateResult, await(t, m, "s1", KindQuiz).State)
	assert.Equal(t, StateResult, await(t, m, "s2", KindAssetAutofill).State)
}

func TestApply_MergesIntoRecord(t *testing.T) {
	w := newFakeWizard()
	m := NewManager(advisory.NewMockService(0), w, time.Minute)
	defer m.Shutdown()
	ctx := context.Background()

	_, err := m.Apply(ctx, "u1", "s1", KindAssetAutofill)
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = m.Trigger(ctx, "u1", "s1", KindAssetAutofill, Input{Text: "Ten flats near the harbour, fully let."})
	require.NoError(t, err)
	v := await(t, m, "s1", KindAssetAutofill)
	require.Equal(t, StateResult, v.State)
	suggestion := v.Result.(*advisory.AssetSuggestion)

	s, err := m.Apply(ctx, "u1", "s1", KindAssetAutofill)
	require.NoError(t, err)
	assert.Equal(t, suggestion.Title, s.Record.Property.Title)
	assert.Equal(t, suggestion.TotalValue, s.Record.Property.TotalValue)
	assert.True(t, m.Get("u1", "s1", KindAssetAutofill).Applied)

	_, err = m.Apply(ctx, "u1", "s1", KindAssetAutofill)
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	// reset hides the result but leaves merged fields alone
	v, err = m.Reset("u1", "s1", KindAssetAutofill)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, v.State)
	assert.Nil(t, v.Result)
	after, err := w.Get(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, suggestion.Title, after.Record.Property.Title)
}

func TestApply_TokenomicsSetsYield(t *testing.T) {
	w := newFakeWizard()
	m := NewManager(advisory.NewMockService(0), w, time.Minute)
	defer m.Shutdown()
	ctx := context.Background()

	_, err := m.Trigger(ctx, "u1", "s1", KindTokenomics, Input{})
	require.NoError(t, err)
	await(t, m, "s1", KindTokenomics)

	s, err := m.Apply(ctx, "u1", "s1", KindTokenomics)
	require.NoError(t, err)
	require.NotNil(t, s.Record.Property.AnnualYield)
	assert.Equal(t, domain.DynamicYield(12), *s.Record.Property.AnnualYield)
	assert.Equal(t, 50.0, s.Record.Property.TokenPrice)
	assert.True(t, s.Validity[domain.StepTokenomics])
}

func TestApply_DisplayOnlyKinds(t *testing.T) {
	m := NewManager(advisory.NewMockService(0), newFakeWizard(), time.Minute)
	defer m.Shutdown()
	ctx := context.Background()

	_, err := m.Trigger(ctx, "u1", "s1", KindQuiz, Input{Text: "Regulation basics"})
	require.NoError(t, err)
	v := await(t, m, "s1", KindQuiz)

	_, err = m.Apply(ctx, "u1", "s1", KindQuiz)
	assert.ErrorIs(t, err, ErrNotApplicable)

	q, err := m.QuizResult("u1", "s1")
	require.NoError(t, err)
	assert.Len(t, q.Questions, 3)

	public, ok := v.Result.(advisory.PublicQuiz)
	require.True(t, ok)
	assert.Len(t, public.Questions, 3)
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "answer_index")

	_, err = m.QuizResult("u2", "s1")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestRetry_FromErrorState(t *testing.T) {
	svc := newGatedService()
	svc.fails.Store(1)
	svc.open()
	m := NewManager(svc, newFakeWizard(), time.Minute)
	defer m.Shutdown()
	ctx := context.Background()

	_, err := m.Retry(ctx, "u1", "s1", KindQuiz)
	assert.ErrorIs(t, err, ErrNotRetryable)

	_, err = m.Trigger(ctx, "u1", "s1", KindQuiz, Input{Text: "Token custody"})
	require.NoError(t, err)
	v := await(t, m, "s1", KindQuiz)
	assert.Equal(t, StateError, v.State)
	assert.NotEmpty(t, v.Error)
	assert.Equal(t, "Token custody", v.Input.Text)

	_, err = m.Retry(ctx, "u1", "s1", KindQuiz)
	require.NoError(t, err)
	v = await(t, m, "s1", KindQuiz)
	assert.Equal(t, StateResult, v.State)
	assert.Empty(t, v.Error)
}

func TestClose_DropsLateResult(t *testing.T) {
	observability.ResetMetrics()
	svc := newGatedService()
	m := NewManager(svc, newFakeWizard(), time.Minute)
	defer m.Shutdown()
	ctx := context.Background()

	_, err := m.Trigger(ctx, "u1", "s1", KindAssetAutofill, Input{Text: "Ten flats near the harbour"})
	require.NoError(t, err)
	_, err = m.Trigger(ctx, "u1", "s1", KindQuiz, Input{Text: "SPV basics"})
	require.NoError(t, err)

	m.Close("u1", "s1", KindAssetAutofill)
	assert.Equal(t, StateIdle, m.Get("u1", "s1", KindAssetAutofill).State)
	assert.Equal(t, StateLoading, m.Get("u1", "s1", KindQuiz).State)

	assert.Equal(t, 1, m.CloseSession("s1"))
	svc.open()
	m.Shutdown()

	for _, v := range m.List("u1", "s1") {
		assert.Equal(t, StateIdle, v.State, v.Kind)
	}
	assert.Equal(t, int64(2), observability.GetMetrics().Snapshot().PanelCancels)
}

func TestSweep_ForgetsStalePanels(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(advisory.NewMockService(0), newFakeWizard(), 30*time.Minute)
	m.now = c.Now
	defer m.Shutdown()
	ctx := context.Background()

	_, err := m.Trigger(ctx, "u1", "s1", KindCaseStudy, Input{Text: "Vineyard in Porto"})
	require.NoError(t, err)
	await(t, m, "s1", KindCaseStudy)

	c.Advance(10 * time.Minute)
	_, err = m.Trigger(ctx, "u1", "s2", KindCaseStudy, Input{Text: "Solar farm in Spain"})
	require.NoError(t, err)
	await(t, m, "s2", KindCaseStudy)

	c.Advance(25 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, StateIdle, m.Get("u1", "s1", KindCaseStudy).State)
	assert.Equal(t, StateResult, m.Get("u1", "s2", KindCaseStudy).State)
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, userMessage(context.DeadlineExceeded), "too long")
	assert.Contains(t, userMessage(advisory.ErrEmptyResponse), "no result")
	assert.Contains(t, userMessage(errors.New("dial tcp")), "unavailable")
}
