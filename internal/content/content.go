// Package content handles message body hygiene and HTML rendering.
package content

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"boltalka/internal/grouping"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	policy = bluemonday.UGCPolicy()

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	)
)

// Sanitize removes unsafe HTML from the input string using a strict policy.
// Message bodies are sanitized in both directions: before send and before
// appending a received body to the log.
func Sanitize(input string) string {
	return policy.Sanitize(input)
}

// Render converts a markdown message body into sanitized HTML.
func Render(input string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(input), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

// Transcript renders display groups into a standalone HTML conversation
// transcript.
func Transcript(title string, groups []grouping.Group) (string, error) {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>")
	b.WriteString(template.HTMLEscapeString(title))
	b.WriteString("</title></head>\n<body>\n")

	for _, group := range groups {
		fmt.Fprintf(&b, "<section class=%q>\n", string(group.Direction))
		if group.Direction == grouping.Incoming {
			fmt.Fprintf(&b, "<span class=\"avatar\">%s</span>\n",
				template.HTMLEscapeString(group.AvatarText))
		}
		for _, msg := range group.Messages {
			body, err := Render(msg.Content)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "<div class=\"message\" id=\"message-%s\">%s</div>\n",
				template.HTMLEscapeString(msg.ID), body)
		}
		b.WriteString("</section>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
