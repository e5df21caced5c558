package chunker

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/docstruct/document"
)

var tablePlaceholderRe = regexp.MustCompile(`(?m)^\s*\[TABLE[^\]]*\]\s*$`)

var numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+\S`)

// section is one heading-delimited slice of the document text.
type section struct {
	title   string
	content string
}

// TextChunks splits raw text into heading-delimited sections,
// classifies each one, and sub-chunks anything over the configured
// size.
func (c *Composer) TextChunks(content string) []document.Chunk {
	content = tablePlaceholderRe.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var chunks []document.Chunk
	for _, sec := range splitSections(content) {
		ctype := classifySection(sec.title, sec.content)
		for _, piece := range c.splitBounded(sec.content) {
			chunks = append(chunks, document.Chunk{
				Type:    ctype,
				Content: piece,
				Meta: map[string]string{
					"section": sec.title,
				},
			})
		}
	}
	return chunks
}

// splitSections scans for heading-like lines; everything between two
// headings is one section. Content before the first heading gets the
// default title.
func splitSections(content string) []section {
	lines := strings.Split(content, "\n")

	var sections []section
	title := "Introduction"
	var body []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text != "" {
			sections = append(sections, section{title: title, content: text})
		}
		body = body[:0]
	}

	for _, line := range lines {
		if h, ok := headingText(line); ok {
			flush()
			title = h
			continue
		}
		body = append(body, line)
	}
	flush()

	if len(sections) == 0 && title != "Introduction" {
		// Heading-only document: keep the heading as content.
		sections = append(sections, section{title: title, content: title})
	}
	return sections
}

// headingText recognizes markdown headers, numbered headings, ALL-CAPS
// lines, and short lines ending in a colon.
func headingText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	if strings.HasPrefix(trimmed, "#") {
		h := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if h != "" {
			return h, true
		}
		return "", false
	}
	if numberedHeadingRe.MatchString(trimmed) && len(trimmed) < 100 && !strings.HasSuffix(trimmed, ".") {
		return trimmed, true
	}
	if isAllCaps(trimmed) && len(trimmed) >= 3 && len(trimmed) <= 80 {
		return trimmed, true
	}
	if strings.HasSuffix(trimmed, ":") && len(trimmed) < 80 && !strings.Contains(trimmed, ". ") {
		return strings.TrimSuffix(trimmed, ":"), true
	}
	return "", false
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

var (
	definitionTitleWords = []string{"definition", "glossary", "terminology"}
	statisticTitleWords  = []string{"statistic", "data", "figure", "number"}
	referenceTitleWords  = []string{"reference", "citation", "source"}
	codeMarkers          = []string{"```", "func ", "def ", "class ", "#include", "import "}
)

// classifySection picks a chunk type from the section title keywords
// first, then from content markers.
func classifySection(title, content string) document.ChunkType {
	lower := strings.ToLower(title)
	for _, w := range definitionTitleWords {
		if strings.Contains(lower, w) {
			return document.ChunkDefinition
		}
	}
	for _, w := range statisticTitleWords {
		if strings.Contains(lower, w) {
			return document.ChunkStatistic
		}
	}
	for _, w := range referenceTitleWords {
		if strings.Contains(lower, w) {
			return document.ChunkReference
		}
	}
	for _, m := range codeMarkers {
		if strings.Contains(content, m) {
			return document.ChunkCode
		}
	}
	for _, line := range strings.Split(content, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ") {
			return document.ChunkList
		}
	}
	return document.ChunkText
}
