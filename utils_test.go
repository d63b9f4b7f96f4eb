package main

import (
	"strings"
	"testing"
)

func TestSanitizeContent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello", "hello"},
		{"keeps formatting", "<p><strong>sim</strong></p>", "<p><strong>sim</strong></p>"},
		{"drops scripts", `<p>ok<script>alert(1)</script></p>`, "<p>ok</p>"},
		{"markup only is empty", "<p><br></p>", ""},
		{"whitespace is empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeContent(tt.in); got != tt.want {
				t.Errorf("sanitizeContent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderText(t *testing.T) {
	got := renderText("**bold** <script>x</script>")
	if !strings.Contains(got, "<strong>bold</strong>") || strings.Contains(got, "<script>") {
		t.Errorf("renderText() = %q", got)
	}
}

func TestHfSlug(t *testing.T) {
	if got := hfSlug("Pena de Morte: sim ou não?"); got != "pena-de-morte-sim-ou-nao" {
		t.Errorf("hfSlug() = %q", got)
	}
}

func TestPlainText(t *testing.T) {
	if got := plainText("<p>Tom &amp; <em>Jerry</em>'s</p>"); got != "Tom & Jerry's" {
		t.Errorf("plainText = %q", got)
	}
}
