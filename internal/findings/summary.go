package findings

import "github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"

const (
	TopIssueLimit   = 5
	NextActionLimit = 3
)

// TabView is one tab with its (filtered) contents.
type TabView struct {
	Tab       Tab            `json:"tab"`
	Section   *model.Section `json:"section,omitempty"`
	Checks    []model.Check  `json:"checks"`
	Questions []string       `json:"questions,omitempty"`
	Empty     bool           `json:"empty"`
}

// Summary is everything derived for one done report.
type Summary struct {
	Repo        string   `json:"repo"`
	Score       int      `json:"score"`
	Band        Band     `json:"band"`
	Commit      string   `json:"commit,omitempty"`
	Analyzed    string   `json:"analyzed"`
	Counts      Counts   `json:"counts"`
	Highlights  []string `json:"highlights"`
	TopIssues   []string `json:"top_issues"`
	NextActions []string `json:"next_actions"`
	Tabs        []Tab    `json:"tabs"`
}

// Summarize derives the header, sidebar and tab list for r. highlightLimit
// <= 0 means DefaultHighlightLimit.
func Summarize(r *model.Report, highlightLimit int) Summary {
	sections := r.Sections()
	analyzed := r.UpdatedAt
	if analyzed == nil {
		analyzed = r.CreatedAt
	}
	score := r.Score()
	return Summary{
		Repo:        RepoLabel(r),
		Score:       score,
		Band:        ScoreBand(score),
		Commit:      ShortSHA(r.CommitSHA),
		Analyzed:    FormatDate(analyzed),
		Counts:      CountChecks(sections),
		Highlights:  Highlights(sections, highlightLimit),
		TopIssues:   TopIssues(sections, TopIssueLimit),
		NextActions: NextActions(sections, NextActionLimit),
		Tabs:        Tabs(sections),
	}
}

// View builds the contents of tab under f. The interview tab lists the
// filtered questions; every other tab lists the filtered checks of the
// section mapped to it.
func View(r *model.Report, tab Tab, f Filter) TabView {
	if tab == TabInterviewPack {
		qs := f.Questions(r.InterviewPack())
		return TabView{Tab: tab, Checks: []model.Check{}, Questions: qs, Empty: len(qs) == 0}
	}
	sec := SectionsByTab(r.Sections())[tab]
	if sec == nil {
		return TabView{Tab: tab, Checks: []model.Check{}, Empty: true}
	}
	checks := f.Checks(sec.Checks)
	return TabView{Tab: tab, Section: sec, Checks: checks, Empty: len(checks) == 0}
}
