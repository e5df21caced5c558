package chunker

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/docstruct/document"
)

// definitionSource tags definitions found by scanning document text.
const definitionSource = "content_extraction"

var definitionPatterns = []*regexp.Regexp{
	// Widget: A small mechanical part.
	regexp.MustCompile(`(?m)^([A-Z][A-Za-z0-9][A-Za-z0-9 \-]{0,50}):\s+([A-Z][^\n]{3,250}?\.)`),
	// A widget is a reusable component.
	regexp.MustCompile(`\b([A-Z][A-Za-z0-9\-]{2,50})\s+is\s+(an?\s[^\n]{3,250}?\.)`),
	// Throughput refers to the rate of processing.
	regexp.MustCompile(`\b([A-Z][A-Za-z0-9 \-]{1,50}?)\s+refers to\s+([^\n]{3,250}?\.)`),
	// "Latency" means the time between request and response.
	regexp.MustCompile(`"([^"]{2,60})"\s+means\s+([^\n]{3,250}?\.)`),
}

// ExtractDefinitions scans the whole document text for
// term/definition patterns. Duplicate terms keep their first match.
func ExtractDefinitions(content string) []document.Definition {
	var defs []document.Definition
	seen := map[string]bool{}
	for _, re := range definitionPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			term := strings.TrimSpace(m[1])
			definition := strings.TrimSpace(m[2])
			key := strings.ToLower(term)
			if term == "" || definition == "" || seen[key] {
				continue
			}
			seen[key] = true
			defs = append(defs, document.Definition{
				Term:       term,
				Definition: definition,
				Source:     definitionSource,
			})
		}
	}
	return defs
}
