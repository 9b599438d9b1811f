package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/domain"
)

//go:embed academy.yaml
var defaultYAML []byte

// LearningPanel is the asset-class specific content of the education step.
type LearningPanel struct {
	AssetClass  string   `yaml:"asset_class" json:"asset_class"`
	Title       string   `yaml:"title" json:"title"`
	Summary     string   `yaml:"summary" json:"summary"`
	KeyPoints   []string `yaml:"key_points" json:"key_points"`
	Risks       []string `yaml:"risks" json:"risks"`
	Regulations []string `yaml:"regulations" json:"regulations"`
}

type Module struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Summary     string `yaml:"summary" json:"summary,omitempty"`
	QuizID      string `yaml:"quiz_id" json:"quiz_id,omitempty"`
	Placeholder bool   `yaml:"placeholder" json:"placeholder"`
}

// Page is a top-level screen such as Welcome or Pro Academy.
type Page struct {
	ID      string   `yaml:"id" json:"id"`
	Title   string   `yaml:"title" json:"title"`
	Tagline string   `yaml:"tagline" json:"tagline"`
	Modules []Module `yaml:"modules" json:"modules"`
}

type Quiz struct {
	ID        string            `yaml:"id" json:"id"`
	Title     string            `yaml:"title" json:"title"`
	Questions []domain.Question `yaml:"questions" json:"-"`
}

type FinalExam struct {
	ID             string            `yaml:"id" json:"id"`
	Title          string            `yaml:"title" json:"title"`
	QuestionsShown int               `yaml:"questions_shown" json:"questions_shown"`
	Questions      []domain.Question `yaml:"questions" json:"-"`
}

// Catalog is the static academy content.
type Catalog struct {
	LearningPanels []LearningPanel `yaml:"learning_panels" json:"learning_panels"`
	Pages          []Page          `yaml:"pages" json:"pages"`
	Quizzes        []Quiz          `yaml:"quizzes" json:"quizzes"`
	FinalExam      FinalExam       `yaml:"final_exam" json:"final_exam"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Parse decodes and validates a catalog document. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate collects every content problem instead of stopping at the first.
func (c *Catalog) Validate() error {
	var errs []error

	classes := map[string]bool{}
	for _, lp := range c.LearningPanels {
		if lp.AssetClass == "" || lp.Title == "" {
			errs = append(errs, fmt.Errorf("learning panel %q: asset_class and title are required", lp.AssetClass))
		}
		if classes[lp.AssetClass] {
			errs = append(errs, fmt.Errorf("learning panel %q: duplicate", lp.AssetClass))
		}
		classes[lp.AssetClass] = true
	}

	quizzes := map[string]bool{}
	for _, q := range c.Quizzes {
		if quizzes[q.ID] {
			errs = append(errs, fmt.Errorf("quiz %q: duplicate id", q.ID))
		}
		quizzes[q.ID] = true
		if len(q.Questions) == 0 {
			errs = append(errs, fmt.Errorf("quiz %q: %w", q.ID, domain.ErrNoQuestions))
		}
		for _, qq := range q.Questions {
			if err := qq.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("quiz %q: %w", q.ID, err))
			}
		}
	}

	pages := map[string]bool{}
	for _, p := range c.Pages {
		if pages[p.ID] {
			errs = append(errs, fmt.Errorf("page %q: duplicate id", p.ID))
		}
		pages[p.ID] = true
		for _, m := range p.Modules {
			if m.QuizID != "" && !quizzes[m.QuizID] {
				errs = append(errs, fmt.Errorf("page %q module %q: unknown quiz %q", p.ID, m.ID, m.QuizID))
			}
		}
	}

	fe := c.FinalExam
	if fe.QuestionsShown <= 0 || fe.QuestionsShown > len(fe.Questions) {
		errs = append(errs, fmt.Errorf("final exam: questions_shown %d with %d questions", fe.QuestionsShown, len(fe.Questions)))
	}
	for _, qq := range fe.Questions {
		if err := qq.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("final exam: %w", err))
		}
	}

	return errors.Join(errs...)
}

// LearningPanel returns the panel for an asset class, falling back to the
// default class for unknown ones.
func (c *Catalog) LearningPanel(assetClass string) (LearningPanel, error) {
	for _, lp := range c.LearningPanels {
		if strings.EqualFold(lp.AssetClass, strings.TrimSpace(assetClass)) {
			return lp, nil
		}
	}
	for _, lp := range c.LearningPanels {
		if lp.AssetClass == defaultAssetClass {
			return lp, nil
		}
	}
	return LearningPanel{}, fmt.Errorf("learning panel %q: %w", assetClass, domain.ErrPageNotFound)
}

const defaultAssetClass = "Real Estate"

func (c *Catalog) Page(id string) (Page, error) {
	for _, p := range c.Pages {
		if p.ID == id {
			return p, nil
		}
	}
	return Page{}, fmt.Errorf("%w: %q", domain.ErrPageNotFound, id)
}

func (c *Catalog) Quiz(id string) (Quiz, error) {
	for _, q := range c.Quizzes {
		if q.ID == id {
			return q, nil
		}
	}
	return Quiz{}, fmt.Errorf("%w: %q", domain.ErrQuizNotFound, id)
}
