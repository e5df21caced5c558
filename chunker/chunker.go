// Package chunker re-projects validated tables and raw text into the
// chunk representations used by downstream retrieval: four views per
// table, semantically classified text sections, plus definitions and
// statistics pulled from both.
package chunker

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/hazyhaar/docstruct/document"
)

// DefaultChunkSize is the target chunk size in characters.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the character overlap between consecutive
// sub-chunks of an oversized section.
const DefaultChunkOverlap = 200

// Composer turns validated tables and text into chunks.
type Composer struct {
	chunkSize int
	overlap   int
	logger    *slog.Logger
}

// New creates a Composer. Non-positive size or overlap fall back to
// the defaults; overlap is capped below the chunk size.
func New(chunkSize, overlap int, logger *slog.Logger) *Composer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{chunkSize: chunkSize, overlap: overlap, logger: logger}
}

// Compose produces the full chunk list for one document: table views
// first (in table order), then classified text chunks. Chunk indices
// are assigned sequentially across the whole list.
func (c *Composer) Compose(content string, tables []document.Table) []document.Chunk {
	var chunks []document.Chunk
	for _, tbl := range tables {
		chunks = append(chunks, c.TableChunks(tbl)...)
	}
	chunks = append(chunks, c.TextChunks(content)...)
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

// TableChunks emits exactly four views of one validated table:
// full-table markdown, one chunk per cell, one per row, one per
// column.
func (c *Composer) TableChunks(tbl document.Table) []document.Chunk {
	var chunks []document.Chunk
	tableIdx := strconv.Itoa(tbl.Index)

	chunks = append(chunks, document.Chunk{
		Type:    document.ChunkTableFull,
		Content: tbl.Markdown(),
		Meta: map[string]string{
			"table_index": tableIdx,
			"table_title": tbl.Title,
			"method":      tbl.Method,
		},
	})

	for _, cell := range tbl.Cells {
		content := cellContent(cell)
		if content == "" {
			continue
		}
		chunks = append(chunks, document.Chunk{
			Type:    document.ChunkTableCell,
			Content: content,
			Meta: map[string]string{
				"table_index": tableIdx,
				"row":         strconv.Itoa(cell.Row),
				"col":         strconv.Itoa(cell.Col),
				"row_header":  cell.RowHeader,
				"col_header":  cell.ColHeader,
				"data_type":   string(cell.Type),
				"unit":        cell.Unit,
			},
		})
	}

	for ri, row := range tbl.Rows {
		rowHeader := ""
		if len(row) > 0 {
			rowHeader = strings.TrimSpace(row[0])
		}
		chunks = append(chunks, document.Chunk{
			Type:    document.ChunkTableRow,
			Content: strings.Join(row, " | "),
			Meta: map[string]string{
				"table_index": tableIdx,
				"row":         strconv.Itoa(ri),
				"row_header":  rowHeader,
			},
		})
	}

	for ci, header := range tbl.Headers {
		var values []string
		for _, row := range tbl.Rows {
			if ci < len(row) {
				values = append(values, row[ci])
			}
		}
		chunks = append(chunks, document.Chunk{
			Type:    document.ChunkTableColumn,
			Content: header + ": " + strings.Join(values, ", "),
			Meta: map[string]string{
				"table_index": tableIdx,
				"col":         strconv.Itoa(ci),
				"col_header":  header,
			},
		})
	}

	return chunks
}

// cellContent renders "{col_header}: {row_header} {value} {unit}" with
// empty parts omitted.
func cellContent(cell document.Cell) string {
	var parts []string
	if cell.RowHeader != "" && cell.RowHeader != cell.Value {
		parts = append(parts, cell.RowHeader)
	}
	if cell.Value != "" {
		parts = append(parts, cell.Value)
	}
	if cell.Unit != "" && !strings.Contains(cell.Value, cell.Unit) {
		parts = append(parts, cell.Unit)
	}
	body := strings.Join(parts, " ")
	if body == "" {
		return ""
	}
	if cell.ColHeader != "" {
		return cell.ColHeader + ": " + body
	}
	return body
}
