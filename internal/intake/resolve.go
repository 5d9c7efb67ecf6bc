package intake

// CommonFields returns the always-present fields for a level. Status-bearing
// levels additionally carry the completion-status selector.
func CommonFields(level Level) FieldSchema {
	out := make(FieldSchema, 0, len(baseCommon)+1)
	out = append(out, baseCommon...)
	if HasStatus(level) {
		out = append(out, statusField)
	}
	return out
}

// SpecificFields resolves the level-and-status-specific schema. Status-less
// levels return their fixed schema regardless of status. For status-bearing
// levels an unrecognized status falls back to the studying branch; Validate
// still flags the bad status value so the fallback cannot mask bad input.
func SpecificFields(level Level, status Status) FieldSchema {
	ls, ok := registry[level]
	if !ok {
		return nil
	}
	if !ls.hasStatus {
		return ls.flat
	}
	if branch, ok := ls.branches[status]; ok {
		return branch
	}
	return ls.branches[StatusStudying]
}

// PruneSpecific drops keys that are not part of the resolved (level, status)
// schema. Callers must apply it whenever level or status changes so specific
// values from the previous schema never leak across.
func PruneSpecific(level Level, status Status, specific map[string]interface{}) map[string]interface{} {
	schema := SpecificFields(level, status)
	allowed := make(map[string]bool, len(schema))
	for _, f := range schema {
		allowed[f.Name] = true
	}
	out := make(map[string]interface{}, len(specific))
	for k, v := range specific {
		if allowed[k] {
			out[k] = v
		}
	}
	return out
}
