package catalog

import "context"

// StaticProvider serves a fixed question list. The default questionnaire
// ships with the binary; deployments can swap in a DB-backed provider.
type StaticProvider struct {
	questions []Question
}

func NewStaticProvider(qs []Question) *StaticProvider {
	return &StaticProvider{questions: qs}
}

func (p *StaticProvider) ListQuestions(_ context.Context) ([]Question, error) {
	out := make([]Question, len(p.questions))
	copy(out, p.questions)
	return out, nil
}

// DefaultProvider returns the built-in guidance questionnaire.
func DefaultProvider() *StaticProvider {
	return NewStaticProvider(DefaultQuestions())
}

var likert = []Option{
	{Value: "strongly_disagree", Label: "Strongly disagree", Weight: 0},
	{Value: "disagree", Label: "Disagree", Weight: 2.5},
	{Value: "neutral", Label: "Neutral", Weight: 5},
	{Value: "agree", Label: "Agree", Weight: 7.5},
	{Value: "strongly_agree", Label: "Strongly agree", Weight: 10},
}

var yesNo = []Option{
	{Value: "yes", Label: "Yes", Weight: 10},
	{Value: "no", Label: "No", Weight: 0},
}

func scaleQ(id string, cat Category, prompt string, order int) Question {
	return Question{ID: id, Category: cat, Kind: KindScale, Prompt: prompt, Options: likert, Required: true, Order: order}
}

func yesNoQ(id string, cat Category, prompt string, order int) Question {
	return Question{ID: id, Category: cat, Kind: KindYesNo, Prompt: prompt, Options: yesNo, Required: true, Order: order}
}

// DefaultQuestions is the seed questionnaire: two questions per interest
// dimension, two per aptitude dimension, and an academic block.
func DefaultQuestions() []Question {
	return []Question{
		scaleQ("int-rea-1", CategoryRealistic, "I enjoy working with tools, machines, or physical materials.", 1),
		scaleQ("int-rea-2", CategoryRealistic, "I would rather build something than read about it.", 2),
		scaleQ("int-inv-1", CategoryInvestigative, "I like figuring out why things work the way they do.", 3),
		scaleQ("int-inv-2", CategoryInvestigative, "Solving abstract problems energizes me.", 4),
		scaleQ("int-art-1", CategoryArtistic, "I often look for creative ways to express ideas.", 5),
		scaleQ("int-art-2", CategoryArtistic, "I enjoy designing, drawing, writing, or composing.", 6),
		scaleQ("int-soc-1", CategorySocial, "Helping someone understand a difficult topic is satisfying to me.", 7),
		scaleQ("int-soc-2", CategorySocial, "I prefer working with people over working with things.", 8),
		scaleQ("int-ent-1", CategoryEnterprising, "I like persuading others and taking the lead in a group.", 9),
		scaleQ("int-ent-2", CategoryEnterprising, "Starting my own venture appeals to me.", 10),
		scaleQ("int-con-1", CategoryConventional, "I keep my notes, files, and plans well organized.", 11),
		scaleQ("int-con-2", CategoryConventional, "I am comfortable following detailed procedures precisely.", 12),

		{
			ID: "apt-ver-1", Category: CategoryVerbal, Kind: KindSingleSelect,
			Prompt: "Choose the word closest in meaning to 'candid'.",
			Options: []Option{
				{Value: "frank", Label: "Frank", Weight: 10},
				{Value: "hidden", Label: "Hidden", Weight: 0},
				{Value: "rude", Label: "Rude", Weight: 2},
				{Value: "clever", Label: "Clever", Weight: 2},
			},
			Required: true, Order: 13,
		},
		yesNoQ("apt-ver-2", CategoryVerbal, "Do you find it easy to summarize a long article in a few sentences?", 14),
		{
			ID: "apt-num-1", Category: CategoryNumerical, Kind: KindSingleSelect,
			Prompt: "A price rises from 80 to 100. What is the percentage increase?",
			Options: []Option{
				{Value: "20", Label: "20%", Weight: 3},
				{Value: "25", Label: "25%", Weight: 10},
				{Value: "80", Label: "80%", Weight: 0},
				{Value: "125", Label: "125%", Weight: 0},
			},
			Required: true, Order: 15,
		},
		yesNoQ("apt-num-2", CategoryNumerical, "Do you enjoy working with numbers and statistics?", 16),
		{
			ID: "apt-spa-1", Category: CategorySpatial, Kind: KindSingleSelect,
			Prompt: "How many faces does a cube have?",
			Options: []Option{
				{Value: "4", Label: "4", Weight: 0},
				{Value: "6", Label: "6", Weight: 10},
				{Value: "8", Label: "8", Weight: 2},
				{Value: "12", Label: "12", Weight: 0},
			},
			Required: true, Order: 17,
		},
		yesNoQ("apt-spa-2", CategorySpatial, "Can you usually picture how furniture would fit in a room before moving it?", 18),

		{
			ID: "aca-1", Category: CategoryAcademic, Kind: KindSingleSelect,
			Prompt: "Which subject group did you perform best in?",
			Options: []Option{
				{Value: "science", Label: "Science & Math", Weight: 10},
				{Value: "languages", Label: "Languages & Humanities", Weight: 8},
				{Value: "commerce", Label: "Commerce & Business", Weight: 8},
				{Value: "arts", Label: "Arts", Weight: 8},
			},
			Required: true, Order: 19,
		},
		{
			ID: "aca-2", Category: CategoryAcademic, Kind: KindScale,
			Prompt:  "I keep up with coursework without needing deadlines to push me.",
			Options: likert, Required: false, Order: 20,
		},
	}
}
