package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_quickeng/internal/engine"
)

const zooTimedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="1.2" dur="2.16">All right, so here we are in front of the &amp;quot;elephants&amp;quot;</text>
<text start="5.318" dur="3.1">the cool thing about these guys is that they have really...</text>
<text start="8.418" dur="2">really really long trunks</text>
<text start="10.5" dur="0.5"> </text>
<text start="12.0" dur="1.5">and that&amp;#39;s cool</text>
</transcript>`

type fakeYouTube struct {
	t          *testing.T
	srv        *httptest.Server
	tracks     []map[string]string
	status     string
	title      string
	noCaptions bool
	pageTitle  string
	watchCode  int
	timedCalls int
	lastUA     string
	timedText  string
}

func newFakeYouTube(t *testing.T) *fakeYouTube {
	f := &fakeYouTube{t: t, status: "OK", title: "Me at the zoo", watchCode: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", f.serveWatch)
	mux.HandleFunc("/youtubei/v1/player", f.servePlayer)
	mux.HandleFunc("/api/timedtext", f.serveTimedText)
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeYouTube) track(lang, kind string) map[string]string {
	u := f.srv.URL + "/api/timedtext?v=jNQXAC9IVRw&lang=" + lang
	if kind != "" {
		u += "&kind=" + kind
	}
	return map[string]string{"baseUrl": u, "languageCode": lang, "kind": kind}
}

func (f *fakeYouTube) playerJSON() []byte {
	pr := map[string]any{
		"playabilityStatus": map[string]string{"status": f.status, "reason": "unavailable"},
		"videoDetails":      map[string]string{"videoId": "jNQXAC9IVRw", "title": f.title},
	}
	if !f.noCaptions {
		pr["captions"] = map[string]any{
			"playerCaptionsTracklistRenderer": map[string]any{"captionTracks": f.tracks},
		}
	}
	b, err := json.Marshal(pr)
	require.NoError(f.t, err)
	return b
}

func (f *fakeYouTube) serveWatch(w http.ResponseWriter, r *http.Request) {
	if f.watchCode != http.StatusOK {
		w.WriteHeader(f.watchCode)
		return
	}
	title := ""
	if f.pageTitle != "" {
		title = fmt.Sprintf(`<meta property="og:title" content="%s">`, f.pageTitle)
	}
	fmt.Fprintf(w, `<!DOCTYPE html><html><head><title>Watch - YouTube</title>%s</head><body>
<script>var ytInitialPlayerResponse = %s;var meta = {"a":"}"};</script></body></html>`, title, f.playerJSON())
}

func (f *fakeYouTube) servePlayer(w http.ResponseWriter, r *http.Request) {
	var req innertubeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Context.Client.ClientName != "ANDROID" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	_, _ = w.Write(f.playerJSON())
}

func (f *fakeYouTube) serveTimedText(w http.ResponseWriter, r *http.Request) {
	f.timedCalls++
	f.lastUA = r.Header.Get("User-Agent")
	if r.URL.Query().Get("fmt") == "srv3" {
		http.Error(w, "srv3 not expected", http.StatusBadRequest)
		return
	}
	body := zooTimedText
	if f.timedText != "" {
		body = f.timedText
	}
	_, _ = io.WriteString(w, body)
}

func (f *fakeYouTube) client(mode string) *YouTube {
	y := NewYouTube(f.srv.Client(), mode)
	y.watchURL = f.srv.URL + "/watch?v="
	y.playerURL = f.srv.URL + "/youtubei/v1/player"
	return y
}

func TestFetchTranscript_WatchPage(t *testing.T) {
	f := newFakeYouTube(t)
	f.tracks = []map[string]string{f.track("ko", ""), f.track("en", "asr"), f.track("en", "")}

	tr, err := f.client(engine.YouTubeClientWatch).FetchTranscript(context.Background(), "jNQXAC9IVRw", "ko")
	require.NoError(t, err)

	assert.Equal(t, "jNQXAC9IVRw", tr.VideoID)
	assert.Equal(t, "Me at the zoo", tr.Title)
	assert.Equal(t, "en", tr.Language)
	require.Len(t, tr.Segments, 4)
	assert.Equal(t, `All right, so here we are in front of the "elephants"`, tr.Segments[0].Text)
	assert.InDelta(t, 1.2, tr.Segments[0].Start, 1e-9)
	assert.InDelta(t, 2.16, tr.Segments[0].Duration, 1e-9)
	assert.Equal(t, "and that's cool", tr.Segments[3].Text)
	assert.NotEmpty(t, f.lastUA)
}

func TestFetchTranscript_Innertube(t *testing.T) {
	f := newFakeYouTube(t)
	f.tracks = []map[string]string{f.track("en", "asr")}

	tr, err := f.client(engine.YouTubeClientInnertube).FetchTranscript(context.Background(), "jNQXAC9IVRw", "")
	require.NoError(t, err)
	assert.Equal(t, "Me at the zoo", tr.Title)
	assert.Len(t, tr.Segments, 4)
}

func TestFetchTranscript_TitleFromPage(t *testing.T) {
	f := newFakeYouTube(t)
	f.title = ""
	f.pageTitle = "Me at the zoo (og)"
	f.tracks = []map[string]string{f.track("en", "")}

	tr, err := f.client(engine.YouTubeClientWatch).FetchTranscript(context.Background(), "jNQXAC9IVRw", "ko")
	require.NoError(t, err)
	assert.Equal(t, "Me at the zoo (og)", tr.Title)
}

func TestFetchTranscript_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeYouTube)
		want  error
	}{
		{"only korean", func(f *fakeYouTube) {
			f.tracks = []map[string]string{f.track("ko", ""), f.track("ja", "asr")}
		}, engine.ErrNoTranscript},
		{"no captions", func(f *fakeYouTube) { f.noCaptions = true }, engine.ErrTranscriptsDisabled},
		{"empty track list", func(f *fakeYouTube) { f.tracks = nil }, engine.ErrTranscriptsDisabled},
		{"unplayable", func(f *fakeYouTube) {
			f.status = "ERROR"
			f.tracks = []map[string]string{f.track("en", "")}
		}, engine.ErrYouTubeUnknown},
		{"watch page 429", func(f *fakeYouTube) { f.watchCode = http.StatusTooManyRequests }, engine.ErrYouTubeUnknown},
		{"potoken only", func(f *fakeYouTube) {
			tr := f.track("en", "")
			tr["baseUrl"] += "&exp=xpe"
			f.tracks = []map[string]string{tr}
		}, engine.ErrYouTubeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeYouTube(t)
			tt.setup(f)

			tr, err := f.client(engine.YouTubeClientWatch).FetchTranscript(context.Background(), "jNQXAC9IVRw", "ko")
			require.Error(t, err)
			assert.Nil(t, tr)
			assert.True(t, errors.Is(err, tt.want), "got kind %v: %v", engine.KindOf(err), err)
			assert.Zero(t, f.timedCalls, "timedtext must not be fetched")
		})
	}
}

func TestFetchTranscript_BlankTrack(t *testing.T) {
	f := newFakeYouTube(t)
	f.tracks = []map[string]string{f.track("en", "asr")}
	f.timedText = `<transcript><text start="0" dur="1"> </text><text start="1" dur="1">&amp;nbsp;</text></transcript>`

	tr, err := f.client(engine.YouTubeClientWatch).FetchTranscript(context.Background(), "jNQXAC9IVRw", "ko")
	require.Error(t, err)
	assert.Nil(t, tr)
	assert.ErrorIs(t, err, engine.ErrNoTranscript)
	assert.Equal(t, 1, f.timedCalls)
}

func TestFetchTranscript_CountsMetrics(t *testing.T) {
	f := newFakeYouTube(t)
	f.noCaptions = true

	before := engine.GetMetrics()
	_, _ = f.client(engine.YouTubeClientWatch).FetchTranscript(context.Background(), "jNQXAC9IVRw", "ko")
	after := engine.GetMetrics()

	assert.Equal(t, before["youtube_transcript_requests"]+1, after["youtube_transcript_requests"])
	assert.Equal(t, before["youtube_transcript_errors"]+1, after["youtube_transcript_errors"])
}

func TestPickEnglishTrack(t *testing.T) {
	tr := func(lang, kind string) captionTrack {
		return captionTrack{BaseURL: "https://x/" + lang + "/" + kind, LanguageCode: lang, Kind: kind}
	}
	tests := []struct {
		name      string
		tracks    []captionTrack
		preferred string
		wantLang  string
		wantKind  string
	}{
		{"manual beats asr", []captionTrack{tr("en", "asr"), tr("en", "")}, "ko", "en", ""},
		{"asr when no manual", []captionTrack{tr("ko", ""), tr("en", "asr")}, "ko", "en", "asr"},
		{"preferred english variant first", []captionTrack{tr("en", ""), tr("en-GB", "")}, "en-GB", "en-GB", ""},
		{"en before en-US", []captionTrack{tr("en-US", ""), tr("en", "")}, "ko", "en", ""},
		{"priority manual over other variant", []captionTrack{tr("en-AU", ""), tr("en-US", "")}, "ko", "en-US", ""},
		{"other variant manual", []captionTrack{tr("en-AU", "asr"), tr("en-CA", "")}, "", "en-CA", ""},
		{"other variant asr", []captionTrack{tr("en-AU", "asr")}, "", "en-AU", "asr"},
		{"case insensitive", []captionTrack{tr("EN", "")}, "ko", "EN", ""},
		{"skips potoken track", []captionTrack{
			{BaseURL: "https://x/en?a=1&exp=xpe", LanguageCode: "en"},
			tr("en", "asr"),
		}, "ko", "en", "asr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickEnglishTrack(tt.tracks, tt.preferred)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLang, got.LanguageCode)
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}
}

func TestPickEnglishTrack_Errors(t *testing.T) {
	_, err := pickEnglishTrack([]captionTrack{{LanguageCode: "ko"}, {LanguageCode: "es", Kind: "asr"}}, "ko")
	assert.ErrorIs(t, err, errNoEnglishTrack)

	_, err = pickEnglishTrack([]captionTrack{{LanguageCode: "ko"}}, "en")
	assert.ErrorIs(t, err, errNoEnglishTrack, "a preferred English code does not conjure a track")

	_, err = pickEnglishTrack([]captionTrack{{LanguageCode: "en", BaseURL: "https://x?a&exp=xpe"}}, "ko")
	assert.ErrorIs(t, err, errPoTokenOnly)
}

func TestTrackPriority(t *testing.T) {
	tests := []struct {
		preferred string
		want      []string
	}{
		{"ko", []string{"en", "en-US", "en-GB"}},
		{"", []string{"en", "en-US", "en-GB"}},
		{"en", []string{"en", "en-US", "en-GB"}},
		{"en-GB", []string{"en-GB", "en", "en-US"}},
		{"en-AU", []string{"en-AU", "en", "en-US", "en-GB"}},
	}
	for _, tt := range tests {
		t.Run(tt.preferred, func(t *testing.T) {
			assert.Equal(t, tt.want, trackPriority(tt.preferred))
		})
	}
}

func TestParseTimedText(t *testing.T) {
	segs, err := parseTimedText([]byte(zooTimedText))
	require.NoError(t, err)
	require.Len(t, segs, 4)
	assert.Equal(t, "really really long trunks", segs[2].Text)
	assert.InDelta(t, 8.418, segs[2].Start, 1e-9)
	assert.InDelta(t, 2.0, segs[2].Duration, 1e-9)

	_, err = parseTimedText([]byte("<transcript><text"))
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};var x`, `{"a":1}`},
		{"nested", `{"a":{"b":{}}} trailing`, `{"a":{"b":{}}}`},
		{"brace in string", `{"a":"}{"};`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"x\"}"}rest`, `{"a":"x\"}"}`},
		{"unterminated", `{"a":1`, ""},
		{"not an object", `[1]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(extractJSON([]byte(tt.in)))
			if got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"og title", `<html><head><title>Other - YouTube</title><meta property="og:title" content="Me at the zoo"></head></html>`, "Me at the zoo"},
		{"title tag", `<html><head><title>Me at the zoo - YouTube</title></head></html>`, "Me at the zoo"},
		{"none", `<html><body>nothing</body></html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageTitle([]byte(tt.page)); got != tt.want {
				t.Errorf("pageTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewYouTube_Defaults(t *testing.T) {
	y := NewYouTube(nil, "bogus")
	assert.Equal(t, engine.YouTubeClientWatch, y.mode)
	assert.Same(t, http.DefaultClient, y.client)
	assert.True(t, strings.HasPrefix(y.watchURL, "https://www.youtube.com/"))
}
