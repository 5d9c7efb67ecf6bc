// Package intake models the education-profile form. The required field set
// is derived from (level, status) through a static schema registry: adding
// a level or branch is a data change here, not new control flow.
package intake

type Level string

const (
	LevelMatriculation Level = "matriculation"
	LevelIntermediate  Level = "intermediate"
	LevelBachelor      Level = "bachelor"
	LevelMaster        Level = "master"
)

type Status string

const (
	StatusStudying  Status = "studying"
	StatusCompleted Status = "completed"
)

type FieldKind string

const (
	KindSelect   FieldKind = "select"
	KindNumber   FieldKind = "number"
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
)

// OtherOption is the sentinel select value that activates a field's
// free-text sibling.
const OtherOption = "other"

type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Options  []string  `json:"options,omitempty"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
	Step     float64   `json:"step,omitempty"`
	Required bool      `json:"required"`
	// OtherField names the free-text sibling filled in when OtherOption
	// is selected.
	OtherField string `json:"other_field,omitempty"`
}

type FieldSchema []Field

type levelSchema struct {
	hasStatus bool
	flat      FieldSchema            // status-less levels
	branches  map[Status]FieldSchema // status-bearing levels
}

func num(min, max, step float64) (mn, mx *float64, st float64) {
	return &min, &max, step
}

func numberField(name, label string, min, max, step float64, required bool) Field {
	mn, mx, st := num(min, max, step)
	return Field{Name: name, Label: label, Kind: KindNumber, Min: mn, Max: mx, Step: st, Required: required}
}

var registry = map[Level]levelSchema{
	LevelMatriculation: {
		flat: FieldSchema{
			{Name: "group", Label: "Subject group", Kind: KindSelect,
				Options: []string{"science", "arts", "commerce", OtherOption},
				Required: true, OtherField: "group_other"},
			{Name: "group_other", Label: "Other subject group", Kind: KindText},
			numberField("grade_percentage", "Overall percentage", 0, 100, 0.1, true),
			{Name: "favorite_subject", Label: "Favorite subject", Kind: KindText, Required: true},
		},
	},
	LevelIntermediate: {
		hasStatus: true,
		branches: map[Status]FieldSchema{
			StatusStudying: {
				{Name: "stream", Label: "Stream", Kind: KindSelect,
					Options: []string{"pre_engineering", "pre_medical", "commerce", "humanities", OtherOption},
					Required: true, OtherField: "stream_other"},
				{Name: "stream_other", Label: "Other stream", Kind: KindText},
				numberField("year_of_study", "Year of study", 1, 2, 1, true),
			},
			StatusCompleted: {
				{Name: "stream", Label: "Stream", Kind: KindSelect,
					Options: []string{"pre_engineering", "pre_medical", "commerce", "humanities", OtherOption},
					Required: true, OtherField: "stream_other"},
				{Name: "stream_other", Label: "Other stream", Kind: KindText},
				numberField("final_percentage", "Final percentage", 0, 100, 0.1, true),
				{Name: "strongest_subject", Label: "Strongest subject", Kind: KindText, Required: true},
			},
		},
	},
	LevelBachelor: {
		hasStatus: true,
		branches: map[Status]FieldSchema{
			StatusStudying: {
				{Name: "degree_name", Label: "Degree name", Kind: KindText, Required: true},
				numberField("semesters_completed", "Semesters completed", 1, 16, 1, true),
				numberField("current_cgpa", "Current CGPA", 0, 4, 0.01, true),
				{Name: "strongest_subject", Label: "Strongest subject", Kind: KindText, Required: true},
			},
			StatusCompleted: {
				{Name: "degree_name", Label: "Degree name", Kind: KindText, Required: true},
				numberField("final_cgpa", "Final CGPA", 0, 4, 0.01, true),
				numberField("graduation_year", "Graduation year", 1980, 2035, 1, true),
				{Name: "work_experience", Label: "Work experience", Kind: KindTextarea},
			},
		},
	},
	LevelMaster: {
		hasStatus: true,
		branches: map[Status]FieldSchema{
			StatusStudying: {
				{Name: "degree_name", Label: "Degree name", Kind: KindText, Required: true},
				{Name: "specialization", Label: "Specialization", Kind: KindText, Required: true},
				numberField("semesters_completed", "Semesters completed", 1, 8, 1, true),
				numberField("current_cgpa", "Current CGPA", 0, 4, 0.01, true),
			},
			StatusCompleted: {
				{Name: "degree_name", Label: "Degree name", Kind: KindText, Required: true},
				{Name: "specialization", Label: "Specialization", Kind: KindText, Required: true},
				numberField("final_cgpa", "Final CGPA", 0, 4, 0.01, true),
				{Name: "research_area", Label: "Research area", Kind: KindTextarea},
			},
		},
	},
}

// baseCommon is shared by every level; the status selector is appended for
// status-bearing levels by CommonFields.
var baseCommon = FieldSchema{
	{Name: "institution", Label: "Institution", Kind: KindText, Required: true},
	{Name: "city", Label: "City", Kind: KindText},
}

var statusField = Field{
	Name: "education_status", Label: "Completion status", Kind: KindSelect,
	Options:  []string{string(StatusStudying), string(StatusCompleted)},
	Required: true,
}

// Levels lists the known education levels.
func Levels() []Level {
	return []Level{LevelMatriculation, LevelIntermediate, LevelBachelor, LevelMaster}
}

// HasStatus reports whether the level distinguishes studying vs completed.
func HasStatus(level Level) bool {
	return registry[level].hasStatus
}

// KnownLevel reports whether the level is part of the registry.
func KnownLevel(level Level) bool {
	_, ok := registry[level]
	return ok
}
