package render

import (
	"bytes"
	"strings"
	"testing"
)

type genomeRow struct {
	Genome string  `json:"genome"`
	Pairs  int     `json:"pairs"`
	Cov    float64 `json:"coverage"`
	Tags   []string
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"json lowercase", "json", FormatJSON, false},
		{"json uppercase", "JSON", FormatJSON, false},
		{"table", "table", FormatTable, false},
		{"yaml", "yaml", FormatYAML, false},
		{"empty", "", "", false},
		{"invalid", "xml", "", true},
		{"invalid csv", "csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseFormat("xml"); err == nil || !strings.Contains(err.Error(), "json, table, or yaml") {
		t.Errorf("error should list valid formats, got: %v", err)
	}
}

func TestRenderer_JSONAndYAML(t *testing.T) {
	row := genomeRow{Genome: "gA", Pairs: 25, Cov: 2.5}

	var jsonBuf bytes.Buffer
	if err := NewRendererWithWriter(FormatJSON, &jsonBuf).Render(row); err != nil {
		t.Fatalf("JSON render failed: %v", err)
	}
	if !strings.Contains(jsonBuf.String(), `"genome": "gA"`) || !strings.Contains(jsonBuf.String(), `"pairs": 25`) {
		t.Errorf("JSON output missing fields: %s", jsonBuf.String())
	}

	var yamlBuf bytes.Buffer
	if err := NewRendererWithWriter(FormatYAML, &yamlBuf).Render(map[string]int{"pairs": 25}); err != nil {
		t.Fatalf("YAML render failed: %v", err)
	}
	if got := yamlBuf.String(); got != "pairs: 25\n" {
		t.Errorf("YAML output = %q, want %q", got, "pairs: 25\n")
	}
}

func TestRenderer_Table_Struct(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, false, &buf)

	if err := r.Render(&genomeRow{Genome: "gA", Pairs: 25, Tags: []string{"a", "b"}}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	for _, want := range []string{"genome:", "gA", "pairs:", "25", "tags:", "[2 items]"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q: %s", want, got)
		}
	}
}

func TestRenderer_Table_Slice(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, false, &buf)

	rows := []genomeRow{
		{Genome: "gA", Pairs: 25},
		{Genome: "gB", Pairs: 75},
	}
	if err := r.Render(rows); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "genome") || !strings.Contains(lines[0], "coverage") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "gB") || !strings.Contains(lines[2], "75") {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestRenderer_Table_MapIsSorted(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, false, &buf)

	if err := r.Render(map[string]int64{"gC": 3, "gA": 1, "gB": 2}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	a, b, c := strings.Index(got, "gA"), strings.Index(got, "gB"), strings.Index(got, "gC")
	if a >= b || b >= c {
		t.Errorf("map keys not sorted: %s", got)
	}
}

func TestRenderer_Table_EmptySlice(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, false, &buf)

	if err := r.Render([]genomeRow{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "(no results)") {
		t.Errorf("empty slice should show '(no results)', got: %s", buf.String())
	}
}

type statsView struct {
	RunID         string           `json:"run_id"`
	ErrorRate     float64          `json:"error_rate"`
	PairsByGenome map[string]int64 `json:"pairs_by_genome"`
	QualityCurve  []float32        `json:"quality_forward"`
	Empty         map[string]int64 `json:"flush_triggers"`
}

func TestRenderer_Table_ExpandsMapFields(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, &buf)

	view := statsView{
		RunID:         "run-001",
		PairsByGenome: map[string]int64{"chr2": 40, "chr1": 60},
	}
	if err := r.Render(view); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	c1, c2 := strings.Index(got, "pairs_by_genome.chr1:"), strings.Index(got, "pairs_by_genome.chr2:")
	if c1 < 0 || c2 < 0 || c1 > c2 {
		t.Errorf("expected one sorted line per genome, got: %s", got)
	}
	if !strings.Contains(got, "flush_triggers:") || !strings.Contains(got, "{}") {
		t.Errorf("empty map should render as {}, got: %s", got)
	}
}

func TestRenderer_Table_FloatFormatting(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, &buf)

	view := statsView{
		ErrorRate:    0.0012345678,
		QualityCurve: []float32{38, 36.5, 30},
	}
	if err := r.Render(view); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "0.0012\n") {
		t.Errorf("error rate should round to 4 decimals, got: %s", got)
	}
	if !strings.Contains(got, "3 values, 30..38") {
		t.Errorf("quality curve should be summarized, got: %s", got)
	}
}

func TestRenderer_RenderTUI_Unsupported(t *testing.T) {
	r := NewRendererWithWriter(FormatTable, false, &bytes.Buffer{})
	if err := r.RenderTUI("plan", nil); err == nil {
		t.Error("expected error for unsupported TUI view")
	}
}
