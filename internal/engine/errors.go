package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure. The set is closed.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidLink
	KindNoTranscript
	KindTranscriptsDisabled
	KindYouTubeUnknown
	KindAIParse
	KindAIUnknown
)

func (k Kind) String() string {
	switch k {
	case KindInvalidLink:
		return "invalid_link"
	case KindNoTranscript:
		return "no_transcript"
	case KindTranscriptsDisabled:
		return "transcripts_disabled"
	case KindYouTubeUnknown:
		return "youtube_unknown"
	case KindAIParse:
		return "ai_parse"
	case KindAIUnknown:
		return "ai_unknown"
	}
	return "unknown"
}

// Error is a typed pipeline failure. Err carries the raw provider error and
// is only ever logged, never sent to clients.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNoTranscript) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidLink         = &Error{Kind: KindInvalidLink}
	ErrNoTranscript        = &Error{Kind: KindNoTranscript}
	ErrTranscriptsDisabled = &Error{Kind: KindTranscriptsDisabled}
	ErrYouTubeUnknown      = &Error{Kind: KindYouTubeUnknown}
	ErrAIParse             = &Error{Kind: KindAIParse}
	ErrAIUnknown           = &Error{Kind: KindAIUnknown}
)

// E builds a typed error.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the Kind of err, KindUnknown when err is not typed.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ErrorBody is the client-facing failure payload.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorMapping struct {
	status int
	body   ErrorBody
}

var errorTable = map[Kind]errorMapping{
	KindInvalidLink: {http.StatusBadRequest, ErrorBody{
		Code: "INVALID_LINK", Message: "유효하지 않은 유튜브 링크입니다. URL을 확인해주세요.",
	}},
	KindNoTranscript: {http.StatusBadRequest, ErrorBody{
		Code: "NO_TRANSCRIPT", Message: "요청하신 언어(영어)의 자막을 찾을 수 없습니다.",
	}},
	KindTranscriptsDisabled: {http.StatusBadRequest, ErrorBody{
		Code: "TRANSCRIPTS_DISABLED", Message: "이 영상은 자막 기능이 비활성화되어 있어 분석할 수 없습니다.",
	}},
	KindAIParse: {http.StatusInternalServerError, ErrorBody{
		Code: "AI_PARSE_ERROR", Message: "AI 분석 결과가 올바르지 않습니다. 다시 시도해주세요.",
	}},
	KindYouTubeUnknown: {http.StatusInternalServerError, ErrorBody{
		Code: "YOUTUBE_ERROR", Message: "유튜브 자막을 가져오는 중 오류가 발생했습니다.",
	}},
	KindAIUnknown: {http.StatusInternalServerError, ErrorBody{
		Code: "SERVER_ERROR", Message: "서버 내부 로직 오류가 발생했습니다.",
	}},
	KindUnknown: {http.StatusInternalServerError, ErrorBody{
		Code: "UNKNOWN_ERROR", Message: "알 수 없는 오류가 발생했습니다.",
	}},
}

// ErrorResponse translates any pipeline error into the HTTP status and body
// sent to the client. It is the only place that does so.
func ErrorResponse(err error) (int, ErrorBody) {
	m := errorTable[KindOf(err)]
	return m.status, m.body
}
