// Package render writes command results as json, yaml or a table.
//
// Without --format, output to a terminal is a table and anything else is
// json.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/justapithecus/readsim/cli/tui"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format string. Empty means "choose by terminal".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatTable, FormatYAML, "":
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, table, or yaml)", s)
	}
}

// Renderer handles output formatting.
type Renderer struct {
	format Format
	out    io.Writer
}

// NewRenderer creates a renderer writing to the app's writer.
func NewRenderer(c *cli.Context) (*Renderer, error) {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stdout
	if c.App != nil && c.App.Writer != nil {
		out = c.App.Writer
	}
	if format == "" {
		format = FormatJSON
		if f, ok := out.(*os.File); ok && isTTY(f) {
			format = FormatTable
		}
	}
	return &Renderer{format: format, out: out}, nil
}

// NewRendererWithWriter creates a renderer with a fixed format and writer.
func NewRendererWithWriter(format Format, out io.Writer) *Renderer {
	return &Renderer{format: format, out: out}
}

// Render outputs the data in the configured format.
func (r *Renderer) Render(data any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		return enc.Encode(data)
	case FormatTable:
		return r.renderTable(data)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// RenderTUI runs the interactive view for viewType.
func (r *Renderer) RenderTUI(viewType string, data any) error {
	if !tui.IsTUISupported(viewType) {
		return fmt.Errorf("--tui is not supported for %s", viewType)
	}
	return tui.Run(viewType, data)
}

// Format returns the selected output format.
func (r *Renderer) Format() Format {
	return r.format
}

// renderTable prints a slice of structs as rows under a header, and a
// struct or map as "key: value" lines.
func (r *Renderer) renderTable(data any) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)

	v := deref(reflect.ValueOf(data))
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			fmt.Fprintln(w, "(no results)")
			break
		}
		row := deref(v.Index(0))
		if row.Kind() != reflect.Struct {
			fmt.Fprintln(w, formatValue(v))
			break
		}
		fmt.Fprintln(w, strings.Join(columns(row.Type()), "\t"))
		for i := range v.Len() {
			row := deref(v.Index(i))
			cells := make([]string, row.NumField())
			for j := range cells {
				cells[j] = formatValue(row.Field(j))
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
	case reflect.Struct:
		t := v.Type()
		for i := range v.NumField() {
			writeField(w, fieldName(t.Field(i)), v.Field(i))
		}
	case reflect.Map:
		for _, k := range sortedKeys(v) {
			writeField(w, fmt.Sprint(k.Interface()), v.MapIndex(k))
		}
	default:
		fmt.Fprintln(w, formatValue(v))
	}
	return w.Flush()
}

// writeField prints one "key: value" line. Non-empty maps, such as pairs
// per genome, expand to one line per entry.
func writeField(w io.Writer, key string, v reflect.Value) {
	v = deref(v)
	if v.Kind() == reflect.Map && v.Len() > 0 {
		for _, k := range sortedKeys(v) {
			fmt.Fprintf(w, "%s.%v:\t%s\n", key, k.Interface(), formatValue(v.MapIndex(k)))
		}
		return
	}
	fmt.Fprintf(w, "%s:\t%s\n", key, formatValue(v))
}

func columns(t reflect.Type) []string {
	names := make([]string, t.NumField())
	for i := range names {
		names[i] = fieldName(t.Field(i))
	}
	return names
}

// fieldName prefers the json tag name.
func fieldName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return strings.ToLower(f.Name)
}

func formatValue(v reflect.Value) string {
	v = deref(v)
	if !v.IsValid() {
		return ""
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return formatFloat(v.Float())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "[]"
		}
		if k := v.Type().Elem().Kind(); k == reflect.Float32 || k == reflect.Float64 {
			lo, hi := math.Inf(1), math.Inf(-1)
			for i := range v.Len() {
				f := v.Index(i).Float()
				lo, hi = min(lo, f), max(hi, f)
			}
			return fmt.Sprintf("%d values, %s..%s", v.Len(), formatFloat(lo), formatFloat(hi))
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "{}"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	case reflect.Struct:
		return "{...}"
	default:
		return fmt.Sprint(v.Interface())
	}
}

// formatFloat rounds to four decimals and drops trailing zeros.
func formatFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*1e4)/1e4, 'f', -1, 64)
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// sortedKeys returns map keys in their formatted order so table output is
// stable.
func sortedKeys(v reflect.Value) []reflect.Value {
	keys := v.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	})
	return keys
}

func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
