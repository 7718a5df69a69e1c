package findings

import (
	"strings"
	"time"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

// Placeholder is shown for missing values.
const Placeholder = "—"

type Band string

const (
	BandGood Band = "good"
	BandFair Band = "fair"
	BandPoor Band = "poor"
)

func ScoreBand(score int) Band {
	switch {
	case score >= 70:
		return BandGood
	case score >= 40:
		return BandFair
	default:
		return BandPoor
	}
}

// ShortSHA truncates a commit hash to 7 characters.
func ShortSHA(sha *string) string {
	if sha == nil || *sha == "" {
		return ""
	}
	if len(*sha) <= 7 {
		return *sha
	}
	return (*sha)[:7]
}

// RepoLabel is "owner/name" when both are known, else the repo URL, else
// Placeholder.
func RepoLabel(r *model.Report) string {
	if r == nil {
		return Placeholder
	}
	if r.RepoOwner != nil && r.RepoName != nil && *r.RepoOwner != "" && *r.RepoName != "" {
		return *r.RepoOwner + "/" + *r.RepoName
	}
	if r.RepoURL != "" {
		return r.RepoURL
	}
	return Placeholder
}

// Zone-less layouts are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseDate reads the ISO-8601 variants the backend emits.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a timestamp as "May 1, 2024, 10:00 AM", or
// Placeholder when missing or unparseable.
func FormatDate(iso *string) string {
	if iso == nil || *iso == "" {
		return Placeholder
	}
	t, ok := ParseDate(*iso)
	if !ok {
		return Placeholder
	}
	return t.Format("Jan 2, 2006, 3:04 PM")
}
