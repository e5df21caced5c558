package chunker

import "strings"

// separatorCascade orders split points from strongest to weakest:
// paragraph, line, sentence, clause, word.
var separatorCascade = []string{"\n\n", "\n", ". ", ", ", " "}

// splitBounded returns the text unchanged when it fits, otherwise
// splits it recursively along the separator cascade and applies the
// configured overlap so consecutive pieces share boundary context.
func (c *Composer) splitBounded(text string) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}
	pieces := splitRecursive(text, c.chunkSize, 0)
	return c.applyOverlap(pieces)
}

// splitRecursive splits on the strongest separator that produces
// parts, re-splitting any part still over the limit with the next
// separator. Beyond the cascade it falls back to a hard cut.
func splitRecursive(text string, limit, level int) []string {
	if len(text) <= limit {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}
	if level >= len(separatorCascade) {
		return hardCut(text, limit)
	}

	sep := separatorCascade[level]
	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		return splitRecursive(text, limit, level+1)
	}

	// Re-attach the separator so sentence and clause boundaries stay
	// readable, then pack parts greedily up to the limit.
	var out []string
	var cur strings.Builder
	for i, part := range parts {
		if i < len(parts)-1 {
			part += sep
		}
		if cur.Len() > 0 && cur.Len()+len(part) > limit {
			out = append(out, flushPiece(&cur, limit, level)...)
		}
		cur.WriteString(part)
	}
	out = append(out, flushPiece(&cur, limit, level)...)
	return out
}

func flushPiece(cur *strings.Builder, limit, level int) []string {
	piece := cur.String()
	cur.Reset()
	if strings.TrimSpace(piece) == "" {
		return nil
	}
	if len(piece) > limit {
		return splitRecursive(piece, limit, level+1)
	}
	return []string{piece}
}

func hardCut(text string, limit int) []string {
	var out []string
	for len(text) > limit {
		out = append(out, text[:limit])
		text = text[limit:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// applyOverlap prepends the tail of each piece to its successor so no
// chunk silently loses boundary context.
func (c *Composer) applyOverlap(pieces []string) []string {
	if c.overlap <= 0 || len(pieces) < 2 {
		return trimPieces(pieces)
	}
	out := make([]string, len(pieces))
	out[0] = pieces[0]
	for i := 1; i < len(pieces); i++ {
		prev := pieces[i-1]
		tail := prev
		if len(prev) > c.overlap {
			tail = prev[len(prev)-c.overlap:]
			// Start the overlap at a word boundary when possible.
			if idx := strings.IndexByte(tail, ' '); idx >= 0 && idx < len(tail)-1 {
				tail = tail[idx+1:]
			}
		}
		out[i] = strings.TrimSpace(tail) + " " + pieces[i]
	}
	return trimPieces(out)
}

func trimPieces(pieces []string) []string {
	out := pieces[:0]
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
