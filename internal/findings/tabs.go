// Package findings derives everything the report page shows from a set of
// findings: tab layout, highlights, filters and summary figures. Nothing
// here touches the network or stores state.
package findings

import "github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"

type Tab string

const (
	TabRunability    Tab = "Runability"
	TabEngineering   Tab = "Engineering"
	TabSecurity      Tab = "Security"
	TabDocs          Tab = "Docs"
	TabCode          Tab = "Code"
	TabInterviewPack Tab = "Interview Pack"
)

// FixedTabs is the tab order shown for every report.
var FixedTabs = []Tab{TabRunability, TabEngineering, TabSecurity, TabDocs, TabCode, TabInterviewPack}

var sectionTabs = map[string]Tab{
	"Runability":          TabRunability,
	"Engineering Quality": TabEngineering,
	"Secrets Safety":      TabSecurity,
	"Documentation":       TabDocs,
	"Code Analysis":       TabCode,
}

// TabFor maps a backend section name to its tab. Unknown names map to
// themselves.
func TabFor(sectionName string) Tab {
	if t, ok := sectionTabs[sectionName]; ok {
		return t
	}
	return Tab(sectionName)
}

// IsFixed reports whether t is one of FixedTabs.
func IsFixed(t Tab) bool {
	for _, f := range FixedTabs {
		if f == t {
			return true
		}
	}
	return false
}

// Tabs lists FixedTabs followed by a tab for every unknown section name, in
// order of first appearance.
func Tabs(sections []model.Section) []Tab {
	tabs := append([]Tab(nil), FixedTabs...)
	seen := make(map[Tab]bool, len(sections))
	for _, s := range sections {
		t := TabFor(s.Name)
		if IsFixed(t) || seen[t] {
			continue
		}
		seen[t] = true
		tabs = append(tabs, t)
	}
	return tabs
}

// SectionsByTab assigns each section to its tab. When two sections map to
// the same tab the later one wins.
func SectionsByTab(sections []model.Section) map[Tab]*model.Section {
	m := make(map[Tab]*model.Section, len(sections))
	for i := range sections {
		m[TabFor(sections[i].Name)] = &sections[i]
	}
	return m
}

// ParseTab resolves a tab name from a query string, falling back to the
// first tab when name is empty or not one of tabs.
func ParseTab(name string, tabs []Tab) Tab {
	for _, t := range tabs {
		if string(t) == name {
			return t
		}
	}
	if len(tabs) == 0 {
		return TabRunability
	}
	return tabs[0]
}
