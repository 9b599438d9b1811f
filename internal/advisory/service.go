package advisory

import (
	"context"
	"errors"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
)

var (
	ErrUpstream      = errors.New("advisory upstream failed")
	ErrEmptyResponse = errors.New("advisory upstream returned no result")
)

// Service produces suggestions for the advisory panels. The wizard core never
// depends on how suggestions are made; MockService and RemoteService are the
// two production variants and tests substitute their own fakes.
type Service interface {
	SuggestAssetDetails(ctx context.Context, in AssetPrompt) (*AssetSuggestion, error)
	SuggestTokenConfig(ctx context.Context, p domain.Property) (*TokenConfigSuggestion, error)
	EstimateYield(ctx context.Context, p domain.Property) (*YieldEstimate, error)
	GenerateBusinessPlan(ctx context.Context, in BusinessPlanRequest) (*BusinessPlan, error)
	GenerateDeepStrategy(ctx context.Context, in StrategyRequest) (*DeepStrategy, error)
	GenerateQuiz(ctx context.Context, topic string) (*QuizSet, error)
	CheckTokenizability(ctx context.Context, description string) (*TokenizabilityReport, error)
	GenerateCaseStudy(ctx context.Context, topic string) (*CaseStudy, error)
}
