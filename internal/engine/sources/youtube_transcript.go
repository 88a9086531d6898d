package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_quickeng/internal/engine"
)

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// englishFallbacks follow the preferred language in track priority.
var englishFallbacks = []string{"en", "en-US", "en-GB"}

var (
	errNoEnglishTrack = errors.New("no English caption track")
	errPoTokenOnly    = errors.New("all English tracks require PoToken")
)

func (y *YouTube) fetchTranscript(ctx context.Context, videoID, preferredLang string) (*engine.Transcript, error) {
	pr, page, err := y.loadPlayer(ctx, videoID)
	if err != nil {
		return nil, engine.E(engine.KindYouTubeUnknown, "load player", err)
	}

	if ps := pr.PlayabilityStatus; ps != nil && ps.Status != "" && ps.Status != "OK" {
		return nil, engine.E(engine.KindYouTubeUnknown, "load player",
			fmt.Errorf("video unplayable: %s %s", ps.Status, ps.Reason))
	}
	if pr.Captions == nil || len(pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return nil, engine.E(engine.KindTranscriptsDisabled, "list tracks",
			fmt.Errorf("video %s has no caption tracks", videoID))
	}

	tracks := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	track, err := pickEnglishTrack(tracks, preferredLang)
	switch {
	case errors.Is(err, errNoEnglishTrack):
		return nil, engine.E(engine.KindNoTranscript, "pick track",
			fmt.Errorf("%w (available: %s)", err, trackLangs(tracks)))
	case err != nil:
		return nil, engine.E(engine.KindYouTubeUnknown, "pick track", err)
	}

	segs, err := y.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, engine.E(engine.KindYouTubeUnknown, "fetch timedtext", err)
	}
	if len(segs) == 0 {
		return nil, engine.E(engine.KindNoTranscript, "fetch timedtext",
			fmt.Errorf("%s track of %s has no text", track.LanguageCode, videoID))
	}

	title := ""
	if pr.VideoDetails != nil {
		title = strings.TrimSpace(pr.VideoDetails.Title)
	}
	if title == "" && page != nil {
		title = pageTitle(page)
	}

	slog.Debug("youtube: transcript fetched",
		slog.String("id", videoID),
		slog.String("lang", track.LanguageCode),
		slog.String("kind", track.Kind),
		slog.Int("segments", len(segs)))

	return &engine.Transcript{
		VideoID:  videoID,
		Title:    title,
		Language: track.LanguageCode,
		Segments: segs,
	}, nil
}

// loadPlayer returns the player response and, in watch mode, the raw page.
func (y *YouTube) loadPlayer(ctx context.Context, videoID string) (*playerResp, []byte, error) {
	if y.mode == engine.YouTubeClientInnertube {
		pr, err := y.fetchPlayerInnertube(ctx, videoID)
		return pr, nil, err
	}
	return y.fetchPlayerWatchPage(ctx, videoID)
}

// fetchPlayerWatchPage scrapes the watch page HTML and decodes ytInitialPlayerResponse.
func (y *YouTube) fetchPlayerWatchPage(ctx context.Context, videoID string) (*playerResp, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.watchURL+videoID, nil)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range stealth.ChromeHeaders() {
		// Leave compression to net/http so the body arrives decoded.
		if strings.EqualFold(k, "accept-encoding") {
			continue
		}
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cookie", "CONSENT=YES+cb")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("watch page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, nil, fmt.Errorf("read watch page: %w", err)
	}

	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var pr playerResp
	if err := json.Unmarshal(jsonData, &pr); err != nil {
		return nil, nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &pr, body, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

func isEnglish(lang string) bool {
	l := strings.ToLower(lang)
	return l == "en" || strings.HasPrefix(l, "en-")
}

// trackPriority is the ordered list of language codes to look for. The
// preferred language only leads the list when it is an English variant.
func trackPriority(preferred string) []string {
	langs := make([]string, 0, len(englishFallbacks)+1)
	if isEnglish(preferred) {
		langs = append(langs, preferred)
	}
	for _, l := range englishFallbacks {
		if !strings.EqualFold(l, preferred) {
			langs = append(langs, l)
		}
	}
	return langs
}

// pickEnglishTrack selects the best usable English caption track.
// Manual tracks beat auto-generated ones; any other en-* track is the last resort.
// Non-English tracks are never returned.
func pickEnglishTrack(tracks []captionTrack, preferred string) (captionTrack, error) {
	english := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if isEnglish(t.LanguageCode) {
			english = append(english, t)
		}
	}
	if len(english) == 0 {
		return captionTrack{}, errNoEnglishTrack
	}

	usable := english[:0:0]
	for _, t := range english {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, errPoTokenOnly
	}

	langs := trackPriority(preferred)
	// 1. Manual track in priority order
	for _, lang := range langs {
		for _, t := range usable {
			if strings.EqualFold(t.LanguageCode, lang) && t.Kind != "asr" {
				return t, nil
			}
		}
	}
	// 2. Auto-generated track in priority order
	for _, lang := range langs {
		for _, t := range usable {
			if strings.EqualFold(t.LanguageCode, lang) {
				return t, nil
			}
		}
	}
	// 3. Any other English variant
	for _, t := range usable {
		if t.Kind != "asr" {
			return t, nil
		}
	}
	return usable[0], nil
}

func trackLangs(tracks []captionTrack) string {
	langs := make([]string, 0, len(tracks))
	for _, t := range tracks {
		langs = append(langs, t.LanguageCode)
	}
	return strings.Join(langs, ",")
}

// fetchTimedText downloads and parses a YouTube timedtext XML caption URL.
func (y *YouTube) fetchTimedText(ctx context.Context, baseURL string) ([]engine.TranscriptSegment, error) {
	// srv3 is a different XML dialect; the default format is <text start dur>.
	baseURL = strings.Replace(baseURL, "&fmt=srv3", "", 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", stealth.RandomUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty timedtext response")
	}
	return parseTimedText(body)
}

// parseTimedText decodes timedtext XML into segments in playback order.
func parseTimedText(body []byte) ([]engine.TranscriptSegment, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segs := make([]engine.TranscriptSegment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := engine.CleanHTML(line.Text)
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		segs = append(segs, engine.TranscriptSegment{Text: text, Start: start, Duration: dur})
	}
	return segs, nil
}

// pageTitle reads og:title, falling back to <title>, from watch page HTML.
func pageTitle(page []byte) string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	var ogTitle, docTitle string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if ogTitle != "" {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				if attr(n, "property") == "og:title" {
					ogTitle = strings.TrimSpace(attr(n, "content"))
					return
				}
			case "title":
				if docTitle == "" && n.FirstChild != nil {
					docTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if ogTitle != "" {
		return ogTitle
	}
	return strings.TrimSpace(strings.TrimSuffix(docTitle, "- YouTube"))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
