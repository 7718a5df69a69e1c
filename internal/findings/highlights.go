package findings

import "github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"

const DefaultHighlightLimit = 5

// ByStatus orders every check fail first, then warn, then everything else,
// preserving section and check order within each group.
func ByStatus(sections []model.Section) []model.Check {
	var fail, warn, rest []model.Check
	for _, s := range sections {
		for _, c := range s.Checks {
			switch c.Status {
			case model.CheckFail:
				fail = append(fail, c)
			case model.CheckWarn:
				warn = append(warn, c)
			default:
				rest = append(rest, c)
			}
		}
	}
	out := make([]model.Check, 0, len(fail)+len(warn)+len(rest))
	out = append(out, fail...)
	out = append(out, warn...)
	return append(out, rest...)
}

// Label is the short highlight text for a check.
func Label(c model.Check) string {
	switch c.Status {
	case model.CheckFail:
		return c.Name + " missing"
	case model.CheckWarn:
		return c.Name + " (review)"
	default:
		return c.Name + " detected"
	}
}

// Highlights returns up to limit labels, fail first. limit <= 0 means
// DefaultHighlightLimit.
func Highlights(sections []model.Section, limit int) []string {
	if limit <= 0 {
		limit = DefaultHighlightLimit
	}
	ordered := ByStatus(sections)
	out := make([]string, 0, min(limit, len(ordered)))
	for _, c := range ordered {
		if len(out) == limit {
			break
		}
		out = append(out, Label(c))
	}
	return out
}

// TopIssues names failing then warning checks, at most limit.
func TopIssues(sections []model.Section, limit int) []string {
	var out []string
	for _, c := range ByStatus(sections) {
		if len(out) == limit {
			break
		}
		if c.Status != model.CheckFail && c.Status != model.CheckWarn {
			break
		}
		out = append(out, c.Name)
	}
	return out
}

// NextActions lists distinct non-empty recommendations of failing then
// warning checks, at most limit.
func NextActions(sections []model.Section, limit int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range ByStatus(sections) {
		if len(out) == limit {
			break
		}
		if c.Status != model.CheckFail && c.Status != model.CheckWarn {
			break
		}
		if c.Recommendation == "" || seen[c.Recommendation] {
			continue
		}
		seen[c.Recommendation] = true
		out = append(out, c.Recommendation)
	}
	return out
}

// Counts tallies checks by status.
type Counts struct {
	Pass  int `json:"pass"`
	Warn  int `json:"warn"`
	Fail  int `json:"fail"`
	Total int `json:"total"`
}

func CountChecks(sections []model.Section) Counts {
	var c Counts
	for _, s := range sections {
		for _, ch := range s.Checks {
			c.Total++
			switch ch.Status {
			case model.CheckPass:
				c.Pass++
			case model.CheckWarn:
				c.Warn++
			case model.CheckFail:
				c.Fail++
			}
		}
	}
	return c
}
