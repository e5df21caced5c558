package chunker

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/docstruct/document"
)

const statContext = 50 // characters of surrounding context per side

var (
	measurementRe = regexp.MustCompile(`\b\d+(?:[.,]\d+)*\s*(?:%|percent|km|kg|tons?|units?|m\b|USD|EUR|GBP|SAR|AED)`)
	trendRe       = regexp.MustCompile(`(?i)\b(?:increased|decreased|grew|fell|rose|declined)\s+(?:by\s+)?(\d+(?:[.,]\d+)*\s*%?)`)
	yearRangeRe   = regexp.MustCompile(`\b(?:19|20)\d{2}\s*[-–]\s*(?:19|20)\d{2}\b`)
)

// ExtractStatistics finds numeric facts in document text: measurements
// with units, trend statements, and year ranges, each with up to 50
// characters of context on either side.
func ExtractStatistics(content string) []document.Statistic {
	var stats []document.Statistic
	seen := map[string]bool{}

	add := func(value string, start, end int, statType string) {
		value = strings.TrimSpace(value)
		ctx := surrounding(content, start, end)
		key := value + "|" + ctx
		if value == "" || seen[key] {
			return
		}
		seen[key] = true
		stats = append(stats, document.Statistic{
			Value:   value,
			Context: ctx,
			Type:    statType,
			Source:  "content_extraction",
		})
	}

	for _, loc := range measurementRe.FindAllStringIndex(content, -1) {
		add(content[loc[0]:loc[1]], loc[0], loc[1], "measurement")
	}
	for _, loc := range trendRe.FindAllStringSubmatchIndex(content, -1) {
		// Group 1 holds the magnitude.
		if loc[2] >= 0 {
			add(content[loc[2]:loc[3]], loc[0], loc[1], "trend")
		}
	}
	for _, loc := range yearRangeRe.FindAllStringIndex(content, -1) {
		add(content[loc[0]:loc[1]], loc[0], loc[1], "year_range")
	}
	return stats
}

// TableStatistics turns every numeric validated cell into a statistics
// entry carrying its headers and source table.
func TableStatistics(tables []document.Table) []document.Statistic {
	var stats []document.Statistic
	for _, tbl := range tables {
		source := "table"
		if tbl.Title != "" {
			source = "table:" + tbl.Title
		}
		for _, cell := range tbl.Cells {
			switch cell.Type {
			case document.TypeNumber, document.TypePercentage, document.TypeCurrency:
			default:
				continue
			}
			var ctxParts []string
			if cell.ColHeader != "" {
				ctxParts = append(ctxParts, cell.ColHeader)
			}
			if cell.RowHeader != "" && cell.RowHeader != cell.Value {
				ctxParts = append(ctxParts, cell.RowHeader)
			}
			stats = append(stats, document.Statistic{
				Value:   cell.Value,
				Context: strings.Join(ctxParts, " "),
				Type:    string(cell.Type),
				Source:  source,
			})
		}
	}
	return stats
}

// surrounding returns up to statContext characters either side of the
// match, snapped to rune boundaries.
func surrounding(content string, start, end int) string {
	lo := start - statContext
	if lo < 0 {
		lo = 0
	}
	hi := end + statContext
	if hi > len(content) {
		hi = len(content)
	}
	for lo > 0 && !isRuneStart(content[lo]) {
		lo--
	}
	for hi < len(content) && !isRuneStart(content[hi]) {
		hi++
	}
	return strings.TrimSpace(content[lo:hi])
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
