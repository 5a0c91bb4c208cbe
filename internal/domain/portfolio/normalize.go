package portfolio

import "strings"

const (
	githubBaseURL   = "https://github.com/"
	linkedinBaseURL = "https://linkedin.com/in/"
	twitterBaseURL  = "https://twitter.com/"
)

// Normalize turns bare handles into absolute profile URLs. Empty values and
// values that already start with "http" are kept, so Normalize is idempotent.
func (s Social) Normalize() Social {
	return Social{
		Github:   normalizeHandle(s.Github, githubBaseURL, false),
		Linkedin: normalizeHandle(s.Linkedin, linkedinBaseURL, false),
		Twitter:  normalizeHandle(s.Twitter, twitterBaseURL, true),
	}
}

func normalizeHandle(value, baseURL string, stripAt bool) string {
	if value == "" || strings.HasPrefix(value, "http") {
		return value
	}
	if stripAt {
		value = strings.TrimPrefix(value, "@")
	}
	return baseURL + value
}
