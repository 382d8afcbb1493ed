package ingestion

import "strings"

// DedupeTags collapses exact duplicate tags, keeping the first occurrence of each.
// Tags are compared and kept as given, so "Go", "go" and " Go" are all distinct.
// Blank tags are dropped. The result is never nil.
func DedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ComposeLocation joins the non-empty parts with ", "
func ComposeLocation(parts ...*string) string {
	var kept []string
	for _, p := range parts {
		if s := text(p); s != nil {
			kept = append(kept, *s)
		}
	}
	return strings.Join(kept, ", ")
}

// text trims s and returns nil when nothing is left
func text(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// CleanMarkdown normalizes line endings, strips trailing whitespace and collapses
// runs of blank lines, leaving the markdown structure untouched.
func CleanMarkdown(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
