package engine

import "testing"

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"entities", "I&#39;m &quot;fine&quot; &amp; you?", `I'm "fine" & you?`},
		{"tags", "<font color=\"#E5E5E5\">really</font> long", "really long"},
		{"whitespace", "  line one\n  line two  ", "line one line two"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanHTML(tt.in); got != tt.want {
				t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("안녕하세요 여러분", 5, ""); got != "안녕하세요" {
		t.Errorf("TruncateRunes = %q", got)
	}
	if got := TruncateRunes("short", 100, "..."); got != "short" {
		t.Errorf("TruncateRunes = %q, want unchanged", got)
	}
}
