package openaichat

import "strings"

// ModelTiers names the backend substitution targets for the three Claude
// model tiers. Middle may be empty, in which case mid-tier requests fall
// through to the big target.
type ModelTiers struct {
	Big    string
	Middle string
	Small  string
}

// ModelMapper substitutes client-requested Claude model identifiers with
// configured backend identifiers by tier marker. It is pure and total:
// identifiers matching no marker, and tiers with no configured target, pass
// through unchanged.
type ModelMapper struct {
	tiers ModelTiers
}

// NewModelMapper builds a mapper over the configured tier targets.
func NewModelMapper(tiers ModelTiers) *ModelMapper {
	return &ModelMapper{tiers: tiers}
}

// Map resolves one requested model identifier. Matching is a
// case-insensitive substring check on the tier markers haiku/sonnet/opus.
func (m *ModelMapper) Map(model string) string {
	lower := strings.ToLower(model)

	switch {
	case strings.Contains(lower, "haiku"):
		return orPassthrough(m.tiers.Small, model)
	case strings.Contains(lower, "opus"):
		return orPassthrough(m.tiers.Big, model)
	case strings.Contains(lower, "sonnet"):
		if m.tiers.Middle != "" {
			return m.tiers.Middle
		}
		return orPassthrough(m.tiers.Big, model)
	default:
		return model
	}
}

func orPassthrough(target, model string) string {
	if target == "" {
		return model
	}
	return target
}
