// Package repourl validates GitHub repository URLs before they are sent to
// the analysis backend.
package repourl

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

const githubHost = "github.com"

// ValidationError is a client-side validation failure. Its message is shown
// inline next to the input.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Repo is a validated GitHub repository reference.
type Repo struct {
	Owner string
	Name  string

	// Raw is the trimmed input as the user typed it; it is what gets sent
	// to the backend.
	Raw string
}

// Slug returns "owner/name".
func (r Repo) Slug() string { return r.Owner + "/" + r.Name }

// Canonical returns https://github.com/owner/name.
func (r Repo) Canonical() string { return "https://" + githubHost + "/" + r.Slug() }

// Parse validates raw and returns the repository it names. Errors are always
// *ValidationError.
func Parse(raw string) (Repo, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Repo{}, invalid(raw, "URL is required")
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return Repo{}, invalid(raw, "Invalid URL")
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Repo{}, invalid(raw, "URL must use http or https")
	}
	if u.Host == "" {
		return Repo{}, invalid(raw, "Invalid URL")
	}
	if normalizeHost(u.Hostname()) != githubHost {
		return Repo{}, invalid(raw, "URL must point to github.com")
	}

	path := strings.TrimSuffix(u.Path, "/")
	if strings.HasSuffix(strings.ToLower(path), ".git") {
		path = path[:len(path)-len(".git")]
	}
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) < 2 {
		return Repo{}, invalid(raw, "URL must contain owner and repo (e.g. github.com/owner/name)")
	}

	return Repo{Owner: segments[0], Name: segments[1], Raw: s}, nil
}

// Validate reports only whether raw is acceptable.
func Validate(raw string) error {
	_, err := Parse(raw)
	return err
}

// normalizeHost lower-cases and converts a hostname to its ASCII form so
// look-alike Unicode hosts never match github.com. A trailing root dot is
// kept, so "github.com." is rejected.
func normalizeHost(host string) string {
	host = strings.ToLower(host)
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

func invalid(input, reason string) error {
	return &ValidationError{Input: input, Reason: reason}
}

// MustParse is Parse for fixtures; it panics on invalid input.
func MustParse(raw string) Repo {
	r, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("repourl: %v", err))
	}
	return r
}
