package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/advisory"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
)

// Wizard is the part of the orchestrator the panels read from and merge into.
type Wizard interface {
	Get(ctx context.Context, userID, sessionID string) (*domain.Session, error)
	UpdateFields(ctx context.Context, userID, sessionID string, section domain.Section, fields map[string]any) (*domain.Session, error)
}

type key struct {
	sessionID string
	kind      Kind
}

type panel struct {
	userID    string
	state     State
	input     Input
	result    any
	errMsg    string
	applied   bool
	gen       uint64
	cancel    context.CancelFunc
	done      chan struct{}
	updatedAt time.Time
}

// Manager runs the advisory panels of all sessions. A (session, kind) pair has
// at most one request in flight and results of closed panels are dropped.
type Manager struct {
	svc    advisory.Service
	wizard Wizard
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	panels map[key]*panel
	wg     sync.WaitGroup
}

func NewManager(svc advisory.Service, wizard Wizard, ttl time.Duration) *Manager {
	return &Manager{
		svc:    svc,
		wizard: wizard,
		ttl:    ttl,
		now:    time.Now,
		panels: make(map[key]*panel),
	}
}

// Trigger moves a panel from idle, result or error into loading and starts the
// advisory call in the background.
func (m *Manager) Trigger(ctx context.Context, userID, sessionID string, kind Kind, in Input) (View, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return View{}, err
	}
	s, err := m.wizard.Get(ctx, userID, sessionID)
	if err != nil {
		return View{}, err
	}
	if err := checkInput(kind, in, s.Record); err != nil {
		return View{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{sessionID, kind}
	p, ok := m.panels[k]
	if ok && p.state == StateLoading {
		return View{}, ErrPanelBusy
	}
	if !ok {
		p = &panel{userID: userID}
		m.panels[k] = p
	}
	m.start(ctx, k, p, in, s.Record)
	observability.RecordPanelTrigger()
	observability.NewLogger(ctx).LogInfof("panel_trigger", "session_id=%s kind=%s", sessionID, kind)
	return m.view(k, p), nil
}

// Retry re-runs the last input of a panel in error state against the current record.
func (m *Manager) Retry(ctx context.Context, userID, sessionID string, kind Kind) (View, error) {
	s, err := m.wizard.Get(ctx, userID, sessionID)
	if err != nil {
		return View{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{sessionID, kind}
	p, ok := m.panels[k]
	if !ok || p.userID != userID || p.state != StateError {
		return View{}, ErrNotRetryable
	}
	m.start(ctx, k, p, p.input, s.Record)
	observability.RecordPanelTrigger()
	return m.view(k, p), nil
}

// start must be called with m.mu held.
func (m *Manager) start(ctx context.Context, k key, p *panel, in Input, rec domain.ProjectRecord) {
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.gen++
	p.state = StateLoading
	p.input = in
	p.result = nil
	p.errMsg = ""
	p.applied = false
	p.cancel = cancel
	p.done = make(chan struct{})
	p.updatedAt = m.now()

	gen, done := p.gen, p.done
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(done)
		defer cancel()

		res, err := m.call(callCtx, k.kind, in, rec)
		m.finish(callCtx, k, gen, res, err)
	}()
}

func (m *Manager) finish(ctx context.Context, k key, gen uint64, res any, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.panels[k]
	if !ok || p.gen != gen {
		return
	}
	p.cancel = nil
	p.updatedAt = m.now()
	if err != nil {
		p.state = StateError
		p.errMsg = userMessage(err)
		observability.NewLogger(ctx).LogWarnf("panel_"+string(k.kind), "session_id=%s failed: %v", k.sessionID, err)
		return
	}
	p.state = StateResult
	p.result = res
}

func (m *Manager) call(ctx context.Context, kind Kind, in Input, rec domain.ProjectRecord) (any, error) {
	text := strings.TrimSpace(in.Text)
	switch kind {
	case KindAssetAutofill:
		return m.svc.SuggestAssetDetails(ctx, advisory.AssetPrompt{Description: text, AssetClass: rec.ProjectInfo.AssetClass})
	case KindTokenomics:
		return m.svc.SuggestTokenConfig(ctx, rec.Property)
	case KindYieldEstimate:
		return m.svc.EstimateYield(ctx, rec.Property)
	case KindBusinessPlan:
		return m.svc.GenerateBusinessPlan(ctx, advisory.BusinessPlanRequest{ProjectInfo: rec.ProjectInfo, Property: rec.Property})
	case KindDeepStrategy:
		return m.svc.GenerateDeepStrategy(ctx, advisory.StrategyRequest{Question: text, AssetClass: rec.ProjectInfo.AssetClass})
	case KindQuiz:
		return m.svc.GenerateQuiz(ctx, text)
	case KindTokenizability:
		return m.svc.CheckTokenizability(ctx, text)
	case KindCaseStudy:
		return m.svc.GenerateCaseStudy(ctx, text)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The advisor took too long to answer. Please try again."
	case errors.Is(err, advisory.ErrEmptyResponse):
		return "The advisor returned no result. Please try again."
	}
	return "The advisor is unavailable right now. Please try again."
}

// Get returns the panel view; panels that were never triggered are idle.
func (m *Manager) Get(userID, sessionID string, kind Kind) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{sessionID, kind}
	p, ok := m.panels[k]
	if !ok || p.userID != userID {
		return View{SessionID: sessionID, Kind: kind, State: StateIdle}
	}
	return m.view(k, p)
}

// List returns the views of every known panel of a session, in Kinds order.
func (m *Manager) List(userID, sessionID string) []View {
	out := make([]View, 0, len(Kinds))
	for _, k := range Kinds {
		out = append(out, m.Get(userID, sessionID, k))
	}
	return out
}

// Await blocks until the panel leaves the loading state or ctx is done.
func (m *Manager) Await(ctx context.Context, userID, sessionID string, kind Kind) (View, error) {
	m.mu.Lock()
	p, ok := m.panels[key{sessionID, kind}]
	var done chan struct{}
	if ok && p.userID == userID && p.state == StateLoading {
		done = p.done
	}
	m.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return View{}, ctx.Err()
		}
	}
	return m.Get(userID, sessionID, kind), nil
}

// Reset clears a shown result or error. Fields already applied stay in the record.
func (m *Manager) Reset(userID, sessionID string, kind Kind) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{sessionID, kind}
	p, ok := m.panels[k]
	if !ok || p.userID != userID {
		return View{SessionID: sessionID, Kind: kind, State: StateIdle}, nil
	}
	if p.state == StateLoading {
		return View{}, ErrPanelBusy
	}
	p.state = StateIdle
	p.result = nil
	p.errMsg = ""
	p.applied = false
	p.updatedAt = m.now()
	return m.view(k, p), nil
}

// Apply merges the current result into the session record through the wizard.
func (m *Manager) Apply(ctx context.Context, userID, sessionID string, kind Kind) (*domain.Session, error) {
	if !kind.Applicable() {
		return nil, fmt.Errorf("%w: %s", ErrNotApplicable, kind)
	}

	m.mu.Lock()
	p, ok := m.panels[key{sessionID, kind}]
	if !ok || p.userID != userID || p.state != StateResult {
		m.mu.Unlock()
		return nil, ErrNoResult
	}
	if p.applied {
		m.mu.Unlock()
		return nil, ErrAlreadyApplied
	}
	fields := applyFields(p.result)
	gen := p.gen
	m.mu.Unlock()

	if fields == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotApplicable, kind)
	}
	s, err := m.wizard.UpdateFields(ctx, userID, sessionID, domain.SectionProperty, fields)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if p, ok := m.panels[key{sessionID, kind}]; ok && p.gen == gen {
		p.applied = true
		p.updatedAt = m.now()
	}
	m.mu.Unlock()
	return s, nil
}

// QuizResult returns the generated quiz of a session's quiz panel.
func (m *Manager) QuizResult(userID, sessionID string) (*advisory.QuizSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.panels[key{sessionID, KindQuiz}]
	if !ok || p.userID != userID || p.state != StateResult {
		return nil, ErrNoResult
	}
	q, ok := p.result.(*advisory.QuizSet)
	if !ok {
		return nil, ErrNoResult
	}
	return q, nil
}

func applyFields(result any) map[string]any {
	switch r := result.(type) {
	case *advisory.AssetSuggestion:
		return map[string]any{
			"title":          r.Title,
			"asset_type":     r.AssetType,
			"category":       r.Category,
			"location":       r.Location,
			"total_value":    r.TotalValue,
			"total_area_sqm": r.TotalAreaSqm,
			"occupancy_rate": r.Occupancy,
		}
	case *advisory.TokenConfigSuggestion:
		return map[string]any{
			"token_price":   r.TokenPrice,
			"total_tokens":  r.TotalTokens,
			"annual_yield":  r.AnnualYield,
			"lockup_months": r.LockupMonths,
		}
	case *advisory.YieldEstimate:
		return map[string]any{
			"annual_yield":   r.AnnualYield,
			"platform_fee":   r.PlatformFee,
			"management_fee": r.ManagementFee,
		}
	case *advisory.BusinessPlan:
		return map[string]any{"business_plan": r.FullText}
	}
	return nil
}

// Close cancels a panel's in-flight call and forgets it.
func (m *Manager) Close(userID, sessionID string, kind Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{sessionID, kind}
	if p, ok := m.panels[k]; ok && p.userID == userID {
		m.drop(k, p)
	}
}

// CloseSession closes every panel of a session.
func (m *Manager) CloseSession(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, p := range m.panels {
		if k.sessionID == sessionID {
			m.drop(k, p)
			n++
		}
	}
	return n
}

// Sweep closes panels untouched for longer than the manager's TTL.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, p := range m.panels {
		if p.updatedAt.Before(cutoff) {
			m.drop(k, p)
			n++
		}
	}
	return n
}

// Shutdown cancels everything in flight and waits for the calls to return.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for k, p := range m.panels {
		m.drop(k, p)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// drop must be called with m.mu held.
func (m *Manager) drop(k key, p *panel) {
	if p.cancel != nil {
		p.cancel()
		observability.RecordPanelCancel()
	}
	delete(m.panels, k)
}

func (m *Manager) view(k key, p *panel) View {
	result := p.result
	if quiz, ok := result.(*advisory.QuizSet); ok {
		result = quiz.Public()
	}
	return View{
		SessionID: k.sessionID,
		Kind:      k.kind,
		State:     p.state,
		Input:     p.input,
		Result:    result,
		Error:     p.errMsg,
		Applied:   p.applied,
		UpdatedAt: p.updatedAt,
	}
}
