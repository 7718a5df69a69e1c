package findings

import (
	"strings"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// StatusFilters are the values offered in the UI.
var StatusFilters = []string{StatusAll, string(model.CheckFail), string(model.CheckWarn), string(model.CheckPass)}

// Filter narrows checks. Status is compared to the check status exactly and
// case-sensitively; "" and "all" match everything. Query is a free-text
// substring match.
type Filter struct {
	Status string
	Query  string
}

func (f Filter) query() string {
	return strings.ToLower(strings.TrimSpace(f.Query))
}

// Active reports whether f narrows anything.
func (f Filter) Active() bool {
	return (f.Status != "" && f.Status != StatusAll) || f.query() != ""
}

// Match reports whether c passes both the status and text filters.
func (f Filter) Match(c model.Check) bool {
	if f.Status != "" && f.Status != StatusAll && string(c.Status) != f.Status {
		return false
	}
	q := f.query()
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Recommendation), q) ||
		strings.Contains(strings.ToLower(c.Evidence.Snippet), q) ||
		strings.Contains(strings.ToLower(c.Evidence.File), q)
}

// Checks returns the checks matching f, in order.
func (f Filter) Checks(checks []model.Check) []model.Check {
	out := make([]model.Check, 0, len(checks))
	for _, c := range checks {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// AllChecks applies f across every section.
func (f Filter) AllChecks(sections []model.Section) []model.Check {
	var out []model.Check
	for _, s := range sections {
		out = append(out, f.Checks(s.Checks)...)
	}
	return out
}

// Questions filters interview questions by the text query only.
func (f Filter) Questions(questions []string) []string {
	q := f.query()
	out := make([]string, 0, len(questions))
	for _, s := range questions {
		if q == "" || strings.Contains(strings.ToLower(s), q) {
			out = append(out, s)
		}
	}
	return out
}
