package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 30 * time.Second
	LongTimeout    = 90 * time.Second // business plans and strategies
	maxErrorBody   = 4 << 10
)

// RemoteService calls a real advisory backend over HTTP. Each kind maps to
// POST {baseURL}/advisory/{kind} with a JSON body and a JSON result.
type RemoteService struct {
	baseURL       string
	apiKey        string
	defaultClient *http.Client
	longClient    *http.Client
	limiter       *rate.Limiter
}

// NewRemoteService creates a remote advisory client. rps <= 0 disables limiting.
func NewRemoteService(baseURL, apiKey string, rps float64, burst int) *RemoteService {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst <= 0 {
		burst = 1
	}
	return &RemoteService{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		defaultClient: &http.Client{Timeout: DefaultTimeout},
		longClient:    &http.Client{Timeout: LongTimeout},
		limiter:       rate.NewLimiter(limit, burst),
	}
}

func (c *RemoteService) SuggestAssetDetails(ctx context.Context, in AssetPrompt) (*AssetSuggestion, error) {
	return post[AssetSuggestion](ctx, c, c.defaultClient, "asset-autofill", in)
}

func (c *RemoteService) SuggestTokenConfig(ctx context.Context, p domain.Property) (*TokenConfigSuggestion, error) {
	return post[TokenConfigSuggestion](ctx, c, c.defaultClient, "token-config", p)
}

func (c *RemoteService) EstimateYield(ctx context.Context, p domain.Property) (*YieldEstimate, error) {
	return post[YieldEstimate](ctx, c, c.defaultClient, "yield-estimate", p)
}

func (c *RemoteService) GenerateBusinessPlan(ctx context.Context, in BusinessPlanRequest) (*BusinessPlan, error) {
	return post[BusinessPlan](ctx, c, c.longClient, "business-plan", in)
}

func (c *RemoteService) GenerateDeepStrategy(ctx context.Context, in StrategyRequest) (*DeepStrategy, error) {
	return post[DeepStrategy](ctx, c, c.longClient, "deep-strategy", in)
}

func (c *RemoteService) GenerateQuiz(ctx context.Context, topic string) (*QuizSet, error) {
	var out QuizSet
	if err := c.call(ctx, c.defaultClient, "quiz", map[string]string{"topic": topic}, &out); err != nil {
		return nil, err
	}
	if len(out.Questions) == 0 {
		return nil, ErrEmptyResponse
	}
	return &out, nil
}

func (c *RemoteService) CheckTokenizability(ctx context.Context, description string) (*TokenizabilityReport, error) {
	return post[TokenizabilityReport](ctx, c, c.defaultClient, "tokenizability", map[string]string{"description": description})
}

func (c *RemoteService) GenerateCaseStudy(ctx context.Context, topic string) (*CaseStudy, error) {
	return post[CaseStudy](ctx, c, c.defaultClient, "case-study", map[string]string{"topic": topic})
}

func post[T any](ctx context.Context, c *RemoteService, client *http.Client, kind string, in any) (*T, error) {
	var out T
	if err := c.call(ctx, client, kind, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RemoteService) call(ctx context.Context, client *http.Client, kind string, in, out any) (err error) {
	logger := observability.NewLogger(ctx)
	start := time.Now()
	defer func() { observability.RecordAdvisoryCall(time.Since(start), err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/advisory/"+kind, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if rid := observability.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.LogError("advisory_"+kind, err)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.LogWarnf("advisory_"+kind, "upstream returned status %d", resp.StatusCode)
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode JSON: %v", ErrUpstream, err)
	}
	return nil
}
