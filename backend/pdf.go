package backend

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Shared pdfcpu plumbing for the three PDF strategies. Each strategy
// reads the same page content streams but interprets them differently:
// pdf_grid looks at drawn lines, pdf_stream at text column alignment,
// pdf_text at the text layer itself.

// textItem is one positioned text run from a content stream.
type textItem struct {
	x, y float64
	text string
}

// segment is one straight path segment, used for grid detection.
type segment struct {
	x1, y1, x2, y2 float64
}

func (s segment) horizontal() bool { return abs(s.y1-s.y2) < 1.0 && abs(s.x1-s.x2) >= 4.0 }
func (s segment) vertical() bool   { return abs(s.x1-s.x2) < 1.0 && abs(s.y1-s.y2) >= 4.0 }

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func openPDF(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx, nil
}

func pageStream(ctx *model.Context, pageNr int) ([]byte, error) {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// scanPage lexes a page content stream into positioned text items and
// path segments. The lexer tracks a simplified text state: Tm sets the
// absolute position, Td/TD move relative to the line start, T* and '
// advance by the leading.
func scanPage(data []byte) ([]textItem, []segment) {
	var (
		items   []textItem
		segs    []segment
		x, y    float64
		lx, ly  float64 // line start
		leading = 12.0
		cx, cy  float64 // current path point
	)

	var operands []token
	emit := func(s string) {
		if s != "" {
			items = append(items, textItem{x: x, y: y, text: s})
		}
	}
	nums := func(n int) []float64 {
		out := make([]float64, n)
		idx := len(operands) - 1
		for i := n - 1; i >= 0 && idx >= 0; i, idx = i-1, idx-1 {
			out[i] = operands[idx].num
		}
		return out
	}
	joinStrings := func() string {
		var sb strings.Builder
		for _, t := range operands {
			if t.isString {
				sb.WriteString(t.str)
			}
		}
		return sb.String()
	}

	lexContent(data, func(t token) {
		if !t.isOperator {
			operands = append(operands, t)
			return
		}
		switch t.str {
		case "BT":
			x, y, lx, ly = 0, 0, 0, 0
		case "Tm":
			v := nums(6)
			x, y = v[4], v[5]
			lx, ly = x, y
		case "Td":
			v := nums(2)
			lx += v[0]
			ly += v[1]
			x, y = lx, ly
		case "TD":
			v := nums(2)
			leading = -v[1]
			lx += v[0]
			ly += v[1]
			x, y = lx, ly
		case "TL":
			v := nums(1)
			leading = v[0]
		case "T*":
			ly -= leading
			x, y = lx, ly
		case "Tj":
			emit(joinStrings())
		case "'", "\"":
			ly -= leading
			x, y = lx, ly
			emit(joinStrings())
		case "TJ":
			emit(joinStrings())
		case "re":
			v := nums(4)
			rx, ry, rw, rh := v[0], v[1], v[2], v[3]
			switch {
			case rh < 2.0 && rw >= 4.0:
				segs = append(segs, segment{rx, ry, rx + rw, ry})
			case rw < 2.0 && rh >= 4.0:
				segs = append(segs, segment{rx, ry, rx, ry + rh})
			default:
				segs = append(segs,
					segment{rx, ry, rx + rw, ry},
					segment{rx, ry + rh, rx + rw, ry + rh},
					segment{rx, ry, rx, ry + rh},
					segment{rx + rw, ry, rx + rw, ry + rh},
				)
			}
		case "m":
			v := nums(2)
			cx, cy = v[0], v[1]
		case "l":
			v := nums(2)
			segs = append(segs, segment{cx, cy, v[0], v[1]})
			cx, cy = v[0], v[1]
		}
		operands = operands[:0]
	})

	return items, segs
}

// token is one lexed content-stream token.
type token struct {
	isOperator bool
	isString   bool
	str        string
	num        float64
}

// lexContent walks a content stream calling fn per token. Dictionaries
// and hex strings are skipped; literal strings decode PDF escapes.
func lexContent(data []byte, fn func(token)) {
	i := 0
	n := len(data)
	for i < n {
		c := data[i]
		switch {
		case c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '[' || c == ']':
			i++
		case c == '%': // comment to end of line
			for i < n && data[i] != '\n' {
				i++
			}
		case c == '(':
			str, next := lexString(data, i)
			fn(token{isString: true, str: str})
			i = next
		case c == '<':
			if i+1 < n && data[i+1] == '<' {
				i = skipDict(data, i)
			} else {
				for i < n && data[i] != '>' {
					i++
				}
				i++
			}
		case c == '/':
			i++
			for i < n && !isDelim(data[i]) {
				i++
			}
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			start := i
			i++
			for i < n && !isDelim(data[i]) {
				i++
			}
			f, err := strconv.ParseFloat(string(data[start:i]), 64)
			if err == nil {
				fn(token{num: f})
			}
		default:
			start := i
			for i < n && !isDelim(data[i]) {
				i++
			}
			op := string(data[start:i])
			if op != "" {
				fn(token{isOperator: true, str: op})
			}
		}
	}
}

func isDelim(b byte) bool {
	switch b {
	case ' ', '\n', '\r', '\t', '(', ')', '<', '>', '[', ']', '/', '%':
		return true
	}
	return false
}

// lexString reads a literal string starting at the '(' and returns the
// decoded text plus the index past the closing ')'.
func lexString(data []byte, start int) (string, int) {
	var sb strings.Builder
	depth := 0
	i := start
	for i < len(data) {
		c := data[i]
		switch {
		case c == '\\' && i+1 < len(data):
			i++
			switch data[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\', '(', ')':
				sb.WriteByte(data[i])
			default:
				if data[i] >= '0' && data[i] <= '7' {
					val := int(data[i] - '0')
					for k := 0; k < 2 && i+1 < len(data) && data[i+1] >= '0' && data[i+1] <= '7'; k++ {
						i++
						val = val*8 + int(data[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(data[i])
				}
			}
			i++
		case c == '(':
			depth++
			if depth > 1 {
				sb.WriteByte(c)
			}
			i++
		case c == ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), i
}

func skipDict(data []byte, start int) int {
	depth := 0
	i := start
	for i+1 < len(data) {
		if data[i] == '<' && data[i+1] == '<' {
			depth++
			i += 2
			continue
		}
		if data[i] == '>' && data[i+1] == '>' {
			depth--
			i += 2
			if depth == 0 {
				return i
			}
			continue
		}
		i++
	}
	return len(data)
}

// textLine is a row of items sharing a baseline.
type textLine struct {
	y     float64
	items []textItem
}

// groupIntoLines clusters items by baseline (top of page first) and
// sorts each line left to right.
func groupIntoLines(items []textItem) []textLine {
	const tol = 2.5
	sorted := append([]textItem(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].y > sorted[j].y })

	var lines []textLine
	for _, it := range sorted {
		if len(lines) > 0 && abs(lines[len(lines)-1].y-it.y) <= tol {
			lines[len(lines)-1].items = append(lines[len(lines)-1].items, it)
			continue
		}
		lines = append(lines, textLine{y: it.y, items: []textItem{it}})
	}
	for _, ln := range lines {
		sort.Slice(ln.items, func(i, j int) bool { return ln.items[i].x < ln.items[j].x })
	}
	return lines
}

// render joins a line's items, inserting a column gap marker (two or
// more spaces) when items are far apart.
func (l textLine) render() string {
	const gap = 18.0
	var sb strings.Builder
	for i, it := range l.items {
		if i > 0 {
			prev := l.items[i-1]
			if it.x-prev.x > gap {
				sb.WriteString("   ")
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(strings.TrimSpace(it.text))
	}
	return strings.TrimSpace(sb.String())
}

// cluster groups close coordinate values and returns one representative
// per group, sorted ascending.
func cluster(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var out []float64
	prev := sorted[0]
	count := 1
	sum := sorted[0]
	for _, v := range sorted[1:] {
		if v-prev <= tol {
			sum += v
			count++
			prev = v
			continue
		}
		out = append(out, sum/float64(count))
		prev = v
		sum = v
		count = 1
	}
	out = append(out, sum/float64(count))
	return out
}
