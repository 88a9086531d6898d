// Package sources holds the external transcript providers used by the engine.
package sources

// YouTube implementation is split across three files by responsibility:
//   youtube.go            : client construction and the engine.TranscriptSource entry point
//   youtube_innertube.go  : Innertube API types, constants, and the ANDROID /player call
//   youtube_transcript.go : watch page scraping, English track selection, timedtext parsing

import (
	"context"
	"net/http"

	"github.com/anatolykoptev/go_quickeng/internal/engine"
)

// YouTube fetches caption tracks straight from youtube.com.
// Each FetchTranscript call makes exactly one player lookup and one
// timedtext download; failures are not retried.
type YouTube struct {
	client    *http.Client
	mode      string
	watchURL  string
	playerURL string
}

// NewYouTube creates a YouTube source. mode selects how the player response
// is obtained: engine.YouTubeClientWatch scrapes the watch page,
// engine.YouTubeClientInnertube calls the ANDROID /player endpoint.
func NewYouTube(client *http.Client, mode string) *YouTube {
	if client == nil {
		client = http.DefaultClient
	}
	if mode != engine.YouTubeClientInnertube {
		mode = engine.YouTubeClientWatch
	}
	return &YouTube{
		client:    client,
		mode:      mode,
		watchURL:  ytWatchURL,
		playerURL: ytInnertubeURL,
	}
}

// FetchTranscript implements engine.TranscriptSource.
func (y *YouTube) FetchTranscript(ctx context.Context, videoID, preferredLang string) (*engine.Transcript, error) {
	engine.IncrYouTubeTranscript()
	tr, err := y.fetchTranscript(ctx, videoID, preferredLang)
	if err != nil {
		engine.IncrYouTubeTranscriptError()
		return nil, err
	}
	return tr, nil
}
