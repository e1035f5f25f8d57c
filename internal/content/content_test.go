package content

import (
	"strings"
	"testing"

	"boltalka/internal/grouping"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain text", "Hello World", "Hello World"},
		{"HTML tags", "Hello <b>World</b>", "Hello <b>World</b>"},
		{"Script tag", "<script>alert('xss')</script>Hello", "Hello"},
		{"Complex HTML", "<a href='javascript:alert(1)'>Click me</a>", "Click me"},
		{"Emoji", "I am 🤖", "I am 🤖"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.expected {
				t.Errorf("Sanitize() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"Plain text", "Hello World", "<p>Hello World</p>"},
		{"Emphasis", "Hello *World*", "<em>World</em>"},
		{"Strikethrough", "~~gone~~", "<del>gone</del>"},
		{"Linkify", "see https://example.com", `href="https://example.com"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.input)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Render() = %v, want substring %v", got, tt.contains)
			}
		})
	}
}

func TestRenderStripsScripts(t *testing.T) {
	got, err := Render("hi <script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("rendered output contains script tag: %v", got)
	}
}

func TestTranscript(t *testing.T) {
	groups := []grouping.Group{
		{
			Direction: grouping.Outgoing,
			Messages:  []grouping.GroupMessage{{ID: "m1", Content: "hello"}},
		},
		{
			Direction:  grouping.Incoming,
			AvatarText: "Bo",
			Messages:   []grouping.GroupMessage{{ID: "m2", Content: "hi *there*"}},
		},
	}

	html, err := Transcript("Town Hall", groups)
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}

	for _, want := range []string{
		"<title>Town Hall</title>",
		`<section class="outgoing">`,
		`<section class="incoming">`,
		`<span class="avatar">Bo</span>`,
		`id="message-m1"`,
		"<em>there</em>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("transcript missing %q:\n%s", want, html)
		}
	}
}
