package testutil

import (
	"encoding/json"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

const SampleRepoURL = "https://github.com/octo/hello"

// SampleFindings has one section per well-known tab, a mix of statuses and
// an interview pack.
func SampleFindings() *model.SuccessFindings {
	return &model.SuccessFindings{
		OverallScore: 64,
		Sections: []model.Section{
			{Name: "Runability", Score: 20, Checks: []model.Check{
				{ID: "run.readme_start", Name: "Start instructions", Status: model.CheckPass, Points: 10,
					Evidence:       model.Evidence{File: "README.md", Snippet: "npm run dev", StartLine: model.Ptr(12), EndLine: model.Ptr(14)},
					Recommendation: "Keep start instructions current"},
				{ID: "run.dockerfile", Name: "Dockerfile", Status: model.CheckFail, Points: 0,
					Evidence:       model.Evidence{File: "", Snippet: ""},
					Recommendation: "Add a Dockerfile"},
			}},
			{Name: "Engineering Quality", Score: 18, Checks: []model.Check{
				{ID: "eng.ci", Name: "CI workflow", Status: model.CheckWarn, Points: 5,
					Evidence:       model.Evidence{File: ".github/workflows/ci.yml", Snippet: "run: echo skip"},
					Recommendation: "Run tests in CI"},
				{ID: "eng.tests", Name: "Test suite", Status: model.CheckPass, Points: 10,
					Evidence: model.Evidence{File: "package.json", Snippet: `"test": "vitest"`}},
			}},
			{Name: "Secrets Safety", Score: 10, Checks: []model.Check{
				{ID: "sec.env", Name: "Committed .env", Status: model.CheckFail, Points: 0,
					Evidence:       model.Evidence{File: ".env", Snippet: "API_KEY=abc123", StartLine: model.Ptr(1)},
					Recommendation: "Remove secrets from the repository"},
			}},
			{Name: "Documentation", Score: 16, Checks: []model.Check{
				{ID: "doc.license", Name: "License", Status: model.CheckPass, Points: 8,
					Evidence: model.Evidence{File: "LICENSE", Snippet: "MIT License"}},
			}},
		},
		InterviewPack: []string{
			"How would you containerize this service?",
			"Why are secrets stored in .env?",
		},
	}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// PendingReport is a report still being analyzed.
func PendingReport(id string) *model.Report {
	return &model.Report{
		ID:        id,
		RepoURL:   SampleRepoURL,
		Status:    model.StatusPending,
		CreatedAt: model.Ptr("2024-05-01T10:00:00"),
	}
}

// DoneReport wraps f (SampleFindings when nil) in a finished report.
func DoneReport(id string, f *model.SuccessFindings) *model.Report {
	if f == nil {
		f = SampleFindings()
	}
	raw := mustJSON(f)
	return &model.Report{
		ID:           id,
		RepoURL:      SampleRepoURL,
		RepoOwner:    model.Ptr("octo"),
		RepoName:     model.Ptr("hello"),
		CommitSHA:    model.Ptr("0123456789abcdef0123456789abcdef01234567"),
		Status:       model.StatusDone,
		OverallScore: model.Ptr(f.OverallScore),
		CreatedAt:    model.Ptr("2024-05-01T10:00:00"),
		UpdatedAt:    model.Ptr("2024-05-01T10:00:42"),
		RawFindings:  raw,
		Findings:     model.DecodeFindings(raw),
	}
}

// FailedReport is a report the backend could not analyze.
func FailedReport(id, msg string) *model.Report {
	raw := mustJSON(map[string]string{"error": msg})
	return &model.Report{
		ID:          id,
		RepoURL:     SampleRepoURL,
		Status:      model.StatusFailed,
		CreatedAt:   model.Ptr("2024-05-01T10:00:00"),
		RawFindings: raw,
		Findings:    model.DecodeFindings(raw),
	}
}
