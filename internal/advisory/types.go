package advisory

import "github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"

// AssetPrompt is the free-text description the asset auto-fill panel works from.
type AssetPrompt struct {
	Description string `json:"description"`
	AssetClass  string `json:"asset_class"`
}

// AssetSuggestion pre-fills the asset step.
type AssetSuggestion struct {
	Title        string  `json:"title"`
	AssetType    string  `json:"asset_type"`
	Category     string  `json:"category"`
	Location     string  `json:"location"`
	TotalValue   float64 `json:"total_value"`
	TotalAreaSqm float64 `json:"total_area_sqm"`
	Occupancy    float64 `json:"occupancy_rate"`
	Summary      string  `json:"summary"`
}

// TokenConfigSuggestion proposes supply, price and yield for the tokenomics step.
type TokenConfigSuggestion struct {
	TokenPrice   float64 `json:"token_price"`
	TotalTokens  float64 `json:"total_tokens"`
	AnnualYield  float64 `json:"annual_yield"`
	LockupMonths int     `json:"lockup_months"`
	Rationale    string  `json:"rationale"`
}

// YieldEstimate is the yield/fee estimate of the tokenomics advice panel.
type YieldEstimate struct {
	AnnualYield   float64 `json:"annual_yield"`
	PlatformFee   float64 `json:"platform_fee"`
	ManagementFee float64 `json:"management_fee"`
	RiskLevel     string  `json:"risk_level"`
	Notes         string  `json:"notes"`
}

type BusinessPlanRequest struct {
	ProjectInfo domain.ProjectInfo `json:"project_info"`
	Property    domain.Property    `json:"property"`
}

type BusinessPlan struct {
	Headline  string   `json:"headline"`
	Sections  []string `json:"sections"`
	FullText  string   `json:"full_text"`
	WordCount int      `json:"word_count"`
}

type StrategyRequest struct {
	Question   string `json:"question"`
	AssetClass string `json:"asset_class"`
}

type DeepStrategy struct {
	Thesis        string   `json:"thesis"`
	Phases        []string `json:"phases"`
	Risks         []string `json:"risks"`
	Opportunities []string `json:"opportunities"`
}

type QuizQuestion struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation"`
}

// QuizSet is an AI-generated quiz that can be started as an academy attempt.
type QuizSet struct {
	Topic     string         `json:"topic"`
	Questions []QuizQuestion `json:"questions"`
}

// PublicQuestion is a QuizQuestion without its answer key or explanation.
type PublicQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// PublicQuiz is the shape of a QuizSet shown before it is taken.
type PublicQuiz struct {
	Topic     string           `json:"topic"`
	Questions []PublicQuestion `json:"questions"`
}

// Public drops the answer keys.
func (q *QuizSet) Public() PublicQuiz {
	out := PublicQuiz{Topic: q.Topic, Questions: make([]PublicQuestion, len(q.Questions))}
	for i, qq := range q.Questions {
		out.Questions[i] = PublicQuestion{Prompt: qq.Prompt, Options: qq.Options}
	}
	return out
}

type TokenizabilityReport struct {
	Score          int      `json:"score"`
	Verdict        string   `json:"verdict"`
	Strengths      []string `json:"strengths"`
	Concerns       []string `json:"concerns"`
	SuggestedClass string   `json:"suggested_class"`
}

type CaseStudy struct {
	Title   string   `json:"title"`
	Market  string   `json:"market"`
	Raised  float64  `json:"raised"`
	Outcome string   `json:"outcome"`
	Lessons []string `json:"lessons"`
}
