package document

import "strings"

// Normalize pads or truncates every row so row length equals header
// length. Backends must call this before handing a table to the
// cross-validator.
func (t *Table) Normalize() {
	want := len(t.Headers)
	if want == 0 {
		return
	}
	for i, row := range t.Rows {
		switch {
		case len(row) < want:
			padded := make([]string, want)
			copy(padded, row)
			t.Rows[i] = padded
		case len(row) > want:
			t.Rows[i] = row[:want]
		}
	}
}

// BuildCells rebuilds the flat cell list from Headers and Rows,
// classifying each value and attaching header context. The first
// column acts as the row header. (row, col) pairs are unique.
func (t *Table) BuildCells() {
	t.Cells = t.Cells[:0]
	for ri, row := range t.Rows {
		rowHeader := ""
		if len(row) > 0 {
			rowHeader = strings.TrimSpace(row[0])
		}
		for ci, val := range row {
			colHeader := ""
			if ci < len(t.Headers) {
				colHeader = t.Headers[ci]
			}
			dt := Classify(val)
			t.Cells = append(t.Cells, Cell{
				Value:      strings.TrimSpace(val),
				Row:        ri,
				Col:        ci,
				RowHeader:  rowHeader,
				ColHeader:  colHeader,
				Type:       dt,
				Unit:       Unit(val, dt),
				Confidence: t.Confidence,
				Method:     t.Method,
			})
		}
	}
}

// FirstCell returns the trimmed, lower-cased value of the first data
// cell, or "" when the table has no data.
func (t *Table) FirstCell() string {
	if len(t.Rows) == 0 || len(t.Rows[0]) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(t.Rows[0][0]))
}

// NonEmptyCells counts data cells with non-blank values.
func (t *Table) NonEmptyCells() int {
	n := 0
	for _, row := range t.Rows {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				n++
			}
		}
	}
	return n
}

// HasNumericCell reports whether any data cell classifies as a number,
// percentage or currency.
func (t *Table) HasNumericCell() bool {
	for _, row := range t.Rows {
		for _, v := range row {
			switch Classify(v) {
			case TypeNumber, TypePercentage, TypeCurrency:
				return true
			}
		}
	}
	return false
}

// Markdown renders the table as a pipe table: optional title line,
// header row, separator, one line per data row. Missing values render
// as empty cells.
func (t *Table) Markdown() string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString("### ")
		sb.WriteString(t.Title)
		sb.WriteByte('\n')
	}
	writeRow := func(cells []string) {
		sb.WriteByte('|')
		for _, c := range cells {
			c = strings.ReplaceAll(c, "\n", " ")
			c = strings.ReplaceAll(c, "|", `\|`)
			sb.WriteByte(' ')
			sb.WriteString(c)
			sb.WriteString(" |")
		}
		sb.WriteByte('\n')
	}
	writeRow(t.Headers)
	sb.WriteByte('|')
	for range t.Headers {
		sb.WriteString(" --- |")
	}
	sb.WriteByte('\n')
	for _, row := range t.Rows {
		writeRow(row)
	}
	return sb.String()
}

// ParseMarkdownTable parses a pipe table rendered by Markdown back
// into headers and rows. Lines before the header row (e.g. a title)
// are skipped.
func ParseMarkdownTable(md string) (headers []string, rows [][]string) {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cells := splitMarkdownRow(line)
		if isSeparatorRow(cells) {
			continue
		}
		if headers == nil {
			headers = cells
			continue
		}
		rows = append(rows, cells)
	}
	return headers, rows
}

// splitMarkdownRow splits one pipe-table line into cell values. A pipe
// escaped as \| is part of the cell, not a delimiter.
func splitMarkdownRow(line string) []string {
	var cells []string
	var cur strings.Builder
	flush := func() {
		cells = append(cells, strings.TrimSpace(cur.String()))
		cur.Reset()
	}
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			cur.WriteByte('|')
			i++
		case line[i] == '|':
			flush()
		default:
			cur.WriteByte(line[i])
		}
	}
	flush()
	// The leading and trailing delimiters produce empty edge cells.
	if len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if strings.Trim(c, ":-") != "" {
			return false
		}
	}
	return true
}
