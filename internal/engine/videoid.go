package engine

import (
	"errors"
	"regexp"
	"strings"
)

// videoIDPatterns are tried in order; the first match wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
	regexp.MustCompile(`/(?:embed|shorts|live|v)/([0-9A-Za-z_-]{11})(?:[^0-9A-Za-z_-]|$)`),
}

// ExtractVideoID pulls the 11-char video ID out of a watch, short-link,
// embed, shorts or live URL. Everything after the ID is discarded.
func ExtractVideoID(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return "", E(KindInvalidLink, "extract video id", errors.New("empty url"))
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(s); len(m) >= 2 {
			return m[1], nil
		}
	}
	return "", E(KindInvalidLink, "extract video id", errors.New("no video id in "+s))
}
