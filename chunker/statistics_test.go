package chunker

import (
	"strings"
	"testing"

	"github.com/hazyhaar/docstruct/document"
)

func TestExtractStatisticsTrend(t *testing.T) {
	content := "Revenue increased by 12% in Q2 2023 compared to Q1."
	stats := ExtractStatistics(content)
	if len(stats) == 0 {
		t.Fatal("expected at least one statistic")
	}
	found := false
	for _, s := range stats {
		if s.Value == "12%" && strings.Contains(s.Context, "Q2 2023") {
			found = true
		}
	}
	if !found {
		t.Errorf("no statistic with value 12%% and Q2 2023 context in %+v", stats)
	}
}

func TestExtractStatisticsMeasurement(t *testing.T) {
	content := "The pipeline spans 340 km across three regions."
	stats := ExtractStatistics(content)
	if len(stats) != 1 {
		t.Fatalf("got %d statistics, want 1", len(stats))
	}
	if stats[0].Value != "340 km" || stats[0].Type != "measurement" {
		t.Errorf("got %+v", stats[0])
	}
}

func TestExtractStatisticsYearRange(t *testing.T) {
	content := "The plan covers 2020-2025 in two phases."
	stats := ExtractStatistics(content)
	found := false
	for _, s := range stats {
		if s.Type == "year_range" && s.Value == "2020-2025" {
			found = true
		}
	}
	if !found {
		t.Errorf("no year_range statistic in %+v", stats)
	}
}

func TestExtractStatisticsContextBounded(t *testing.T) {
	pad := strings.Repeat("x", 200)
	content := pad + " grew 75% " + pad
	stats := ExtractStatistics(content)
	if len(stats) == 0 {
		t.Fatal("expected a statistic")
	}
	for _, s := range stats {
		if len(s.Context) > 2*statContext+len(s.Value)+20 {
			t.Errorf("context too long: %d chars", len(s.Context))
		}
	}
}

func TestTableStatistics(t *testing.T) {
	tbl := document.Table{
		Title:   "Budget",
		Headers: []string{"Item", "Amount", "Share"},
		Rows: [][]string{
			{"Rent", "$1,200", "30%"},
			{"Notes", "pending", ""},
		},
	}
	tbl.Normalize()
	tbl.BuildCells()

	stats := TableStatistics([]document.Table{tbl})
	if len(stats) != 2 {
		t.Fatalf("got %d statistics, want 2", len(stats))
	}
	for _, s := range stats {
		if s.Source != "table:Budget" {
			t.Errorf("source = %q", s.Source)
		}
	}
	byValue := map[string]document.Statistic{}
	for _, s := range stats {
		byValue[s.Value] = s
	}
	if s, ok := byValue["$1,200"]; !ok || s.Type != string(document.TypeCurrency) {
		t.Errorf("currency cell statistic missing or mistyped: %+v", s)
	}
	if s, ok := byValue["30%"]; !ok || !strings.Contains(s.Context, "Share") {
		t.Errorf("percentage cell statistic missing column header: %+v", s)
	}
}
