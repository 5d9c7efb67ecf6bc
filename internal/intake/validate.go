package intake

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Payload is a candidate intake submission. Common holds the level-invariant
// fields; Specific holds the (level, status)-dependent ones.
type Payload struct {
	Level    Level                  `json:"level"`
	Status   Status                 `json:"status,omitempty"`
	Common   map[string]interface{} `json:"common"`
	Specific map[string]interface{} `json:"specific"`
}

// Validate checks the payload against the schema derived from its level and
// status. It returns every violation at once, keyed by field path; an empty
// map means valid. Re-run it whenever level or status changes.
func Validate(p Payload) map[string]string {
	errs := map[string]string{}

	if !KnownLevel(p.Level) {
		errs["level"] = fmt.Sprintf("unknown education level %q", p.Level)
		return errs
	}
	if HasStatus(p.Level) && p.Status != StatusStudying && p.Status != StatusCompleted {
		errs["education_status"] = fmt.Sprintf("status must be %q or %q", StatusStudying, StatusCompleted)
	}

	checkFields(errs, "common", CommonFields(p.Level), p.Common)
	checkFields(errs, "specific", SpecificFields(p.Level, p.Status), p.Specific)
	return errs
}

func checkFields(errs map[string]string, area string, schema FieldSchema, values map[string]interface{}) {
	for _, f := range schema {
		// the status selector is validated separately, from Payload.Status
		if f.Name == statusField.Name {
			continue
		}
		path := area + "." + f.Name
		v, present := values[f.Name]

		if f.Required && !present || f.Required && isEmpty(v) {
			errs[path] = f.Label + " is required"
			continue
		}
		if !present || isEmpty(v) {
			continue
		}

		switch f.Kind {
		case KindNumber:
			n, ok := numericValue(v)
			if !ok {
				errs[path] = f.Label + " must be a number"
				continue
			}
			if f.Min != nil && n < *f.Min || f.Max != nil && n > *f.Max {
				errs[path] = fmt.Sprintf("%s must be between %v and %v", f.Label, *f.Min, *f.Max)
			}
		case KindSelect:
			sv, _ := v.(string)
			if !containsOption(f.Options, sv) {
				errs[path] = f.Label + " has an invalid option"
				continue
			}
			// "Other" requires its free-text sibling
			if sv == OtherOption && f.OtherField != "" {
				if ov, ok := values[f.OtherField]; !ok || isEmpty(ov) {
					errs[area+"."+f.OtherField] = "please specify a value for " + f.Label
				}
			}
		}
	}
}

func isEmpty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	default:
		return false
	}
}

func numericValue(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func containsOption(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}
