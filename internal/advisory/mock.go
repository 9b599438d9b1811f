package advisory

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
	"github.com/shopspring/decimal"
)

// MockService returns canned but input-dependent suggestions after a
// simulated delay. The same input always yields the same output.
type MockService struct {
	delay time.Duration
}

func NewMockService(delay time.Duration) *MockService {
	return &MockService{delay: delay}
}

// wait simulates model latency and gives up when ctx is cancelled.
func (m *MockService) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func seeded(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

var (
	mockCities     = []string{"Lisbon", "Dubai", "Miami", "Berlin", "Singapore", "Milan"}
	mockAssetTypes = map[string][]string{
		"Real Estate": {"Residential", "Commercial", "Hospitality", "Mixed-use"},
		"Debt":        {"Private Credit", "Invoice Pool", "Mortgage Note"},
		"Funds":       {"Venture Fund", "Real Estate Fund"},
		"Business":    {"SME Equity", "Revenue Share"},
		"Art":         {"Fine Art", "Collectibles"},
		"Commodities": {"Gold", "Carbon Credits"},
	}
)

func (m *MockService) SuggestAssetDetails(ctx context.Context, in AssetPrompt) (*AssetSuggestion, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	r := seeded(in.Description, in.AssetClass)

	class := in.AssetClass
	if class == "" {
		class = domain.DefaultAssetClass
	}
	types, ok := mockAssetTypes[class]
	if !ok {
		types = mockAssetTypes[domain.DefaultAssetClass]
	}
	city := mockCities[r.Intn(len(mockCities))]
	assetType := types[r.Intn(len(types))]

	return &AssetSuggestion{
		Title:        fmt.Sprintf("%s %s Opportunity", city, assetType),
		AssetType:    assetType,
		Category:     class,
		Location:     city,
		TotalValue:   float64(500_000 + r.Intn(90)*100_000),
		TotalAreaSqm: float64(200 + r.Intn(40)*50),
		Occupancy:    round2(70 + r.Float64()*28),
		Summary:      firstSentence(in.Description),
	}, nil
}

func (m *MockService) SuggestTokenConfig(ctx context.Context, p domain.Property) (*TokenConfigSuggestion, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	value := p.TotalValue
	if value <= 0 {
		value = 1_000_000
	}

	price := 50.0
	if value >= 10_000_000 {
		price = 100
	} else if value < 1_000_000 {
		price = 10
	}
	lockup := 12
	if p.LeverageRatio > 50 {
		lockup = 24
	}

	return &TokenConfigSuggestion{
		TokenPrice:   price,
		TotalTokens:  decimal.NewFromFloat(value).Div(decimal.NewFromFloat(price)).Floor().InexactFloat64(),
		AnnualYield:  domain.DynamicYield(lockup),
		LockupMonths: lockup,
		Rationale:    fmt.Sprintf("Supply sized to cover %.0f of asset value at %.0f per token.", value, price),
	}, nil
}

func (m *MockService) EstimateYield(ctx context.Context, p domain.Property) (*YieldEstimate, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	base := domain.DynamicYield(p.LockupMonths)
	occupancy := p.OccupancyRate
	if occupancy <= 0 {
		occupancy = 90
	}
	y := round2(base * occupancy / 100 * 1.1)

	risk := "Low"
	switch {
	case p.LeverageRatio > 60:
		risk = "High"
	case p.LeverageRatio > 30 || occupancy < 80:
		risk = "Medium"
	}

	return &YieldEstimate{
		AnnualYield:   y,
		PlatformFee:   1.5,
		ManagementFee: 2,
		RiskLevel:     risk,
		Notes:         fmt.Sprintf("Net yield assumes %.0f%% occupancy.", occupancy),
	}, nil
}

func (m *MockService) GenerateBusinessPlan(ctx context.Context, in BusinessPlanRequest) (*BusinessPlan, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	title := in.Property.Title
	if title == "" {
		title = in.ProjectInfo.ProjectName
	}
	location := in.Property.Location
	if location == "" {
		location = "its target market"
	}

	sections := []string{
		fmt.Sprintf("Executive Summary: %s tokenizes a %s asset located in %s.", title, strings.ToLower(in.ProjectInfo.AssetClass), location),
		fmt.Sprintf("Market Opportunity: fractional ownership opens %s to investors from %.0f per token.", title, in.Property.TokenPrice),
		"Token Structure: holders receive pro-rata distributions through the SPV.",
		"Compliance: investors are onboarded through KYC/AML before any transfer.",
		"Exit Strategy: secondary market liquidity after the lock-up, asset sale at term.",
	}
	text := strings.Join(sections, "\n\n")
	return &BusinessPlan{
		Headline:  fmt.Sprintf("%s: Business Plan", title),
		Sections:  sections,
		FullText:  text,
		WordCount: len(strings.Fields(text)),
	}, nil
}

func (m *MockService) GenerateDeepStrategy(ctx context.Context, in StrategyRequest) (*DeepStrategy, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	class := in.AssetClass
	if class == "" {
		class = domain.DefaultAssetClass
	}
	return &DeepStrategy{
		Thesis: fmt.Sprintf("For %s, %s", class, strings.TrimSuffix(firstSentence(in.Question), ".")+" is best answered by starting small and proving demand."),
		Phases: []string{
			"Structure the SPV and appoint a custodian",
			"Run a pilot raise with a soft cap",
			"Open secondary trading after lock-up",
		},
		Risks:         []string{"Regulatory reclassification", "Thin secondary liquidity"},
		Opportunities: []string{"Global investor reach", "Automated distributions"},
	}, nil
}

var mockQuizBank = []QuizQuestion{
	{Prompt: "What legal entity usually holds title to a tokenized asset?", Options: []string{"A DAO", "An SPV", "The exchange", "The token"}, AnswerIndex: 1, Explanation: "A Special Purpose Vehicle isolates the asset."},
	{Prompt: "What does KYC verify?", Options: []string{"Smart contract code", "Investor identity", "Asset value", "Token price"}, AnswerIndex: 1, Explanation: "Know Your Customer checks who the investor is."},
	{Prompt: "A longer lock-up usually means...", Options: []string{"A lower yield", "A higher yield", "No yield", "Instant liquidity"}, AnswerIndex: 1, Explanation: "Investors are paid a premium for illiquidity."},
	{Prompt: "Market cap of a token issue equals...", Options: []string{"Supply x price", "Price / supply", "Asset value", "Yield x price"}, AnswerIndex: 0, Explanation: "Total raise is supply times price."},
	{Prompt: "Which framework covers private placements in the US?", Options: []string{"MiCA", "Reg D", "GDPR", "Basel III"}, AnswerIndex: 1, Explanation: "Regulation D exempts private offerings."},
}

func (m *MockService) GenerateQuiz(ctx context.Context, topic string) (*QuizSet, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	r := seeded(topic)
	idx := r.Perm(len(mockQuizBank))[:3]
	qs := make([]QuizQuestion, 0, len(idx))
	for _, i := range idx {
		qs = append(qs, mockQuizBank[i])
	}
	return &QuizSet{Topic: strings.TrimSpace(topic), Questions: qs}, nil
}

var (
	strongSignals = []string{"rent", "income", "cash flow", "revenue", "lease", "contract", "appraised", "title"}
	weakSignals   = []string{"idea", "concept", "startup", "unregistered", "disputed", "crypto"}
)

func (m *MockService) CheckTokenizability(ctx context.Context, description string) (*TokenizabilityReport, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	words := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	score := 50
	var strengths, concerns []string
	for _, s := range strongSignals {
		if mentions(words, s) {
			score += 8
			strengths = append(strengths, "Mentions "+s)
		}
	}
	for _, s := range weakSignals {
		if mentions(words, s) {
			score -= 10
			concerns = append(concerns, "Mentions "+s)
		}
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	verdict := "Needs Work"
	switch {
	case score >= 75:
		verdict = "Highly Tokenizable"
	case score >= 50:
		verdict = "Tokenizable"
	}

	class := domain.DefaultAssetClass
	switch {
	case mentions(words, "loan") || mentions(words, "invoice"):
		class = "Debt"
	case mentions(words, "company") || mentions(words, "revenue"):
		class = "Business"
	case mentions(words, "painting") || mentions(words, "art"):
		class = "Art"
	}

	return &TokenizabilityReport{
		Score:          score,
		Verdict:        verdict,
		Strengths:      strengths,
		Concerns:       concerns,
		SuggestedClass: class,
	}, nil
}

// mentions reports whether phrase occurs as whole words, allowing a plural or
// past-tense suffix on each word.
func mentions(words []string, phrase string) bool {
	want := strings.Fields(phrase)
	for i := 0; i+len(want) <= len(words); i++ {
		hit := true
		for j, w := range want {
			if !inflectionOf(words[i+j], w) {
				hit = false
				break
			}
		}
		if hit {
			return true
		}
	}
	return false
}

func inflectionOf(word, stem string) bool {
	rest, ok := strings.CutPrefix(word, stem)
	if !ok {
		return false
	}
	switch rest {
	case "", "s", "es", "d", "ed":
		return true
	}
	return false
}

func (m *MockService) GenerateCaseStudy(ctx context.Context, topic string) (*CaseStudy, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	r := seeded(topic)
	market := mockCities[r.Intn(len(mockCities))]
	return &CaseStudy{
		Title:   fmt.Sprintf("Tokenizing %s in %s", strings.TrimSpace(topic), market),
		Market:  market,
		Raised:  float64(1_000_000 + r.Intn(50)*250_000),
		Outcome: "Fully subscribed within the first offering window.",
		Lessons: []string{
			"Clear legal wrapper built investor trust",
			"Low minimum ticket widened the investor base",
			"Quarterly reporting kept secondary prices stable",
		},
	}, nil
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?"); i >= 0 {
		return s[:i+1]
	}
	return s
}
