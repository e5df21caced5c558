// Package document defines the data model produced by the extraction
// engine: tables with typed cells, retrieval chunks, and the final
// Document record handed to storage.
package document

import "time"

// DataType is the semantic type of a single cell value.
type DataType string

const (
	TypeEmpty      DataType = "empty"
	TypeText       DataType = "text"
	TypeNumber     DataType = "number"
	TypePercentage DataType = "percentage"
	TypeCurrency   DataType = "currency"
	TypeDate       DataType = "date"
)

// ValidationStatus records how a table survived cross-validation.
type ValidationStatus string

const (
	StatusUnvalidated      ValidationStatus = "unvalidated"
	StatusSingleExtraction ValidationStatus = "single_extraction"
	StatusSingleMethod     ValidationStatus = "single_method"
	StatusValidated        ValidationStatus = "validated"
)

// ChunkType classifies a retrieval chunk.
type ChunkType string

const (
	ChunkText         ChunkType = "text"
	ChunkTableFull    ChunkType = "table_full"
	ChunkTableCell    ChunkType = "table_cell"
	ChunkTableRow     ChunkType = "table_row"
	ChunkTableColumn  ChunkType = "table_column"
	ChunkHeader       ChunkType = "header"
	ChunkList         ChunkType = "list"
	ChunkCode         ChunkType = "code"
	ChunkDefinition   ChunkType = "definition"
	ChunkStatistic    ChunkType = "statistic"
	ChunkReference    ChunkType = "reference"
	ChunkImageCaption ChunkType = "image_caption"
)

// Cell is one table cell with positional and header context.
// Cells belong to exactly one Table and are rebuilt from its rows.
type Cell struct {
	Value      string   `json:"value,omitempty"`
	Row        int      `json:"row"`
	Col        int      `json:"col"`
	RowHeader  string   `json:"row_header,omitempty"`
	ColHeader  string   `json:"col_header,omitempty"`
	Type       DataType `json:"type"`
	Unit       string   `json:"unit,omitempty"`
	Confidence float64  `json:"confidence"`
	Method     string   `json:"method"`
}

// Table is one extracted table. Backends create tables, the
// cross-validator may replace a table wholesale with a better
// representative; tables are never mutated after that.
type Table struct {
	Title      string            `json:"title,omitempty"`
	Headers    []string          `json:"headers"`
	Rows       [][]string        `json:"rows"`
	Cells      []Cell            `json:"cells,omitempty"`
	Page       int               `json:"page,omitempty"` // 1-based source page, 0 if unknown
	Index      int               `json:"index"`
	Method     string            `json:"method"`
	Confidence float64           `json:"confidence"`
	Status     ValidationStatus  `json:"status"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// Chunk is one independently retrievable unit derived from a document.
type Chunk struct {
	Index   int               `json:"index"`
	Type    ChunkType         `json:"type"`
	Content string            `json:"content"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Definition is a term/definition pair found in document text.
type Definition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Source     string `json:"source"`
}

// Statistic is a numeric fact found in text or in a validated cell.
type Statistic struct {
	Value   string `json:"value"`
	Context string `json:"context"`
	Type    string `json:"type"`
	Source  string `json:"source"`
}

// Metadata summarizes a processed document.
type Metadata struct {
	TableCount  int       `json:"table_count"`
	ChunkCount  int       `json:"chunk_count"`
	MainTag     string    `json:"main_tag,omitempty"`
	Methods     []string  `json:"extraction_methods"`
	Status      string    `json:"validation_status"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Document is the immutable output record of the engine. It is
// constructed exactly once per input file and handed by value to the
// storage layer; the engine performs no persistence itself.
type Document struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	Path        string       `json:"path"`
	FileType    string       `json:"file_type"`
	Content     string       `json:"content"`
	ContentHash string       `json:"content_hash"`
	Tables      []Table      `json:"tables"`
	Chunks      []Chunk      `json:"chunks"`
	Definitions []Definition `json:"definitions,omitempty"`
	Statistics  []Statistic  `json:"statistics,omitempty"`
	Meta        Metadata     `json:"meta"`
}
