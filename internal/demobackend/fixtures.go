package demobackend

import (
	"crypto/sha1"
	"encoding/hex"
	"hash/fnv"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

// FailureMessage is the error reported for repositories whose name
// contains "fail".
const FailureMessage = "Repository not found or not accessible"

type checkTemplate struct {
	id, name, recommendation string
	file, snippet            string
	line                     int
	points                   int
}

type sectionTemplate struct {
	name   string
	checks []checkTemplate
}

var sectionTemplates = []sectionTemplate{
	{"Runability", []checkTemplate{
		{"run.readme_start", "Start instructions", "Document how to run the project locally", "README.md", "npm install && npm run dev", 12, 10},
		{"run.dockerfile", "Dockerfile", "Add a Dockerfile so the app runs the same everywhere", "Dockerfile", "FROM node:20-alpine", 1, 10},
		{"run.env_example", "Env example", "Commit a .env.example listing required variables", ".env.example", "DATABASE_URL=", 1, 5},
	}},
	{"Engineering Quality", []checkTemplate{
		{"eng.ci", "CI workflow", "Run tests on every push", ".github/workflows/ci.yml", "run: npm test", 18, 10},
		{"eng.tests", "Test suite", "Add automated tests", "package.json", `"test": "vitest run"`, 9, 10},
		{"eng.lint", "Linter config", "Configure a linter", "eslint.config.mjs", "export default [js.configs.recommended]", 3, 5},
	}},
	{"Secrets Safety", []checkTemplate{
		{"sec.env_committed", "Committed .env", "Remove .env from the repository and rotate keys", ".env", "API_KEY=sk_live_abc123", 2, 15},
		{"sec.gitignore", "Gitignore covers secrets", "Ignore .env files", ".gitignore", ".env*", 4, 5},
	}},
	{"Documentation", []checkTemplate{
		{"doc.readme", "README", "Add a README describing the project", "README.md", "# Project", 1, 5},
		{"doc.license", "License", "Add a LICENSE file", "LICENSE", "MIT License", 1, 5},
	}},
	{"Code Analysis", []checkTemplate{
		{"code.routes", "HTTP routes", "Document public routes", "src/server.ts", "app.get('/api/items', list)", 27, 5},
		{"code.error_handling", "Error handling", "Handle errors in request handlers", "src/server.ts", "catch (e) {}", 41, 5},
	}},
}

var interviewPack = []string{
	"Walk me through how a request flows from the route handler to storage.",
	"How would you containerize this project for production?",
	"What would you change about how secrets are managed?",
	"Which part of the codebase would you test first, and why?",
}

// buildFindings derives deterministic findings from the repository slug so
// the same repository always gets the same report.
func buildFindings(slug string) *model.SuccessFindings {
	h := fnv.New64a()
	_, _ = h.Write([]byte(slug))
	bits := h.Sum64()

	f := &model.SuccessFindings{InterviewPack: append([]string(nil), interviewPack...)}
	total, possible := 0, 0
	bit := 0
	for _, st := range sectionTemplates {
		sec := model.Section{Name: st.name}
		for _, ct := range st.checks {
			// two bits per check: 0,1 pass; 2 warn; 3 fail
			var status model.CheckStatus
			var earned int
			switch (bits >> (2 * (bit % 32))) & 3 {
			case 0, 1:
				status, earned = model.CheckPass, ct.points
			case 2:
				status, earned = model.CheckWarn, ct.points/2
			default:
				status, earned = model.CheckFail, 0
			}
			bit++

			ev := model.Evidence{File: ct.file, Snippet: ct.snippet, StartLine: model.Ptr(ct.line)}
			if status == model.CheckFail {
				ev = model.Evidence{}
			}
			sec.Checks = append(sec.Checks, model.Check{
				ID:             ct.id,
				Name:           ct.name,
				Status:         status,
				Evidence:       ev,
				Recommendation: ct.recommendation,
				Points:         earned,
			})
			sec.Score += earned
			total += earned
			possible += ct.points
		}
		f.Sections = append(f.Sections, sec)
	}
	if possible > 0 {
		f.OverallScore = total * 100 / possible
	}
	return f
}

func commitSHA(slug string) string {
	sum := sha1.Sum([]byte(slug))
	return hex.EncodeToString(sum[:])
}
