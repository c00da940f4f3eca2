package summarizer

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

const (
	maxSentences = 3
	maxChars     = 500
)

type Summarizer struct{}

func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Run extracts the readable text of an HTML page and condenses it to the
// leading sentences.
func (s *Summarizer) Run(data []byte, pageURL string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := condense(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Summary generated",
		"title", article.Title,
		"summary_length", len(text))

	return text, nil
}

// condense collapses whitespace and keeps the first few sentences of the
// extracted text, capped at maxChars.
func condense(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}

	var b strings.Builder
	sentences := 0
	for i, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Sentence boundary only when followed by a space or end of text
			if i+1 == len(text) || text[i+1] == ' ' {
				sentences++
				if sentences >= maxSentences {
					break
				}
			}
		}
		if b.Len() >= maxChars {
			break
		}
	}

	return strings.TrimSpace(b.String())
}
