package clients

import (
	"regexp"
	"strings"
)

// DefaultBaseURL is the production backend, used whenever no base URL is
// configured.
const DefaultBaseURL = "https://api.pikudogame.com"

var absoluteURLPattern = regexp.MustCompile(`(?i)^https?://`)

// NormalizeBaseURL trims the input and strips trailing slashes. A blank
// input falls back to DefaultBaseURL. Pure function, no I/O.
func NormalizeBaseURL(baseURL string) string {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	return strings.TrimRight(raw, "/")
}

func normalizePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "/"
	}
	if absoluteURLPattern.MatchString(trimmed) {
		return trimmed
	}
	if !strings.HasPrefix(trimmed, "/") {
		return "/" + trimmed
	}
	return trimmed
}

// URLStrategy produces the ordered candidate URLs to try for one request
// path. Candidates are attempted in order until one responds with something
// other than a 404 or a transport failure.
type URLStrategy func(baseURL, path string) []string

// BuildURLCandidates returns the ordered list of full URLs to try for a
// request. Absolute URLs pass through unchanged as a single candidate;
// relative paths are joined to the normalized base. The list currently holds
// exactly one variant per path, but callers iterate it in order so endpoint
// renames can be tolerated by appending alternates here.
func BuildURLCandidates(baseURL, path string) []string {
	normalized := normalizePath(path)
	if absoluteURLPattern.MatchString(normalized) {
		return []string{normalized}
	}
	return []string{NormalizeBaseURL(baseURL) + normalized}
}
