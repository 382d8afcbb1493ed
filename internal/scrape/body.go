package scrape

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxSummaryLen bounds the error body kept on an Error
const maxSummaryLen = 500

// summarizeBody reduces an error response to a short human-readable message.
// FastAPI-style {"detail": ...} bodies yield the detail, HTML pages (proxies,
// gateways) yield their title and visible text, anything else is trimmed.
func summarizeBody(contentType string, body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	if detail, ok := jsonDetail(body); ok {
		return truncate(detail)
	}

	if strings.Contains(contentType, "html") || bytes.HasPrefix(body, []byte("<")) {
		if text, err := htmlText(body); err == nil && text != "" {
			return truncate(text)
		}
	}

	return truncate(collapseWhitespace(string(body)))
}

func jsonDetail(body []byte) (string, bool) {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s, true
		}
		// Validation errors carry a list of objects
		return string(payload.Detail), true
	}
	if payload.Error != "" {
		return payload.Error, true
	}
	return "", false
}

func htmlText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()

	title := collapseWhitespace(doc.Find("title").First().Text())
	text := collapseWhitespace(doc.Find("body").Text())

	switch {
	case title == "":
		return text, nil
	case text == "" || strings.HasPrefix(text, title):
		return title, nil
	default:
		return title + ": " + text, nil
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	if len(s) <= maxSummaryLen {
		return s
	}
	cut := maxSummaryLen
	// Don't split a multi-byte rune
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
