package catalog

import "context"

// Category groups questions and the scores derived from them.
type Category string

const (
	// Interest dimensions (RIASEC).
	CategoryRealistic     Category = "realistic"
	CategoryInvestigative Category = "investigative"
	CategoryArtistic      Category = "artistic"
	CategorySocial        Category = "social"
	CategoryEnterprising  Category = "enterprising"
	CategoryConventional  Category = "conventional"

	// Aptitude dimensions.
	CategoryVerbal    Category = "verbal"
	CategoryNumerical Category = "numerical"
	CategorySpatial   Category = "spatial"

	CategoryAcademic Category = "academic"
)

type Kind string

const (
	KindSingleSelect Kind = "single_select"
	KindScale        Kind = "scale"
	KindYesNo        Kind = "yes_no"
)

type Option struct {
	Value  string  `json:"value"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

type Question struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Kind     Kind     `json:"kind"`
	Prompt   string   `json:"prompt"`
	Options  []Option `json:"options"`
	Required bool     `json:"required"`
	Order    int      `json:"order"`
}

// OptionWeight returns the weight of the option with the given value.
func (q Question) OptionWeight(value string) (float64, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o.Weight, true
		}
	}
	return 0, false
}

// MaxWeight is the highest weight any option of this question can yield.
func (q Question) MaxWeight() float64 {
	var max float64
	for _, o := range q.Options {
		if o.Weight > max {
			max = o.Weight
		}
	}
	return max
}

// Provider serves the current questionnaire, ordered by Question.Order.
type Provider interface {
	ListQuestions(ctx context.Context) ([]Question, error)
}
