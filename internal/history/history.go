// Package history keeps a local record of analyses submitted from this
// machine so they can be listed and compared later.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/repourl"
)

var ErrEntryNotFound = errors.New("history entry not found")

// Entry is one submitted analysis. Status and Score are filled in once the
// report settles.
type Entry struct {
	ReportID    string       `json:"report_id"`
	RepoURL     string       `json:"repo_url"`
	Owner       string       `json:"owner"`
	Name        string       `json:"name"`
	SubmittedAt time.Time    `json:"submitted_at"`
	Status      model.Status `json:"status"`
	Score       *int         `json:"score,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Slug is "owner/name" when known, else the repo URL.
func (e Entry) Slug() string {
	if e.Owner != "" && e.Name != "" {
		return e.Owner + "/" + e.Name
	}
	return e.RepoURL
}

// NewEntry is the pending entry for a job just created for repo. Repos that
// never parsed keep their raw URL.
func NewEntry(reportID string, repo repourl.Repo, at time.Time) Entry {
	e := Entry{
		ReportID:    reportID,
		RepoURL:     strings.TrimSpace(repo.Raw),
		Owner:       repo.Owner,
		Name:        repo.Name,
		SubmittedAt: at.UTC(),
		Status:      model.StatusPending,
		UpdatedAt:   at.UTC(),
	}
	if repo.Owner != "" && repo.Name != "" {
		e.RepoURL = repo.Canonical()
	}
	return e
}

type Store interface {
	// Record inserts or replaces the entry for e.ReportID.
	Record(ctx context.Context, e Entry) error
	// UpdateResult stores the settled status and score.
	UpdateResult(ctx context.Context, reportID string, status model.Status, score *int) error
	Get(ctx context.Context, reportID string) (*Entry, error)
	// List returns entries newest first; limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Entry, error)
	// ListByRepo returns entries for repoURL newest first.
	ListByRepo(ctx context.Context, repoURL string, limit int) ([]Entry, error)
	Delete(ctx context.Context, reportID string) error
	Close() error
}

// Previous returns the newest entry for the same repository submitted
// before reportID, or ErrEntryNotFound.
func Previous(ctx context.Context, s Store, reportID string) (*Entry, error) {
	cur, err := s.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ListByRepo(ctx, cur.RepoURL, 0)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		e := entries[i]
		if e.ReportID != reportID && e.SubmittedAt.Before(cur.SubmittedAt) {
			return &e, nil
		}
	}
	return nil, ErrEntryNotFound
}
