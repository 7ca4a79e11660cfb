package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
)

// maxCellWidth truncates long text fields such as tweet bodies.
const maxCellWidth = 60

// TableFormatter renders results as ASCII tables.
type TableFormatter struct{}

// FormatEnvelope renders list data one row per record and object data as
// field/value rows. Pagination cursors follow the table.
func (f *TableFormatter) FormatEnvelope(env *core.Envelope) (string, error) {
	if env == nil {
		return "", nil
	}

	data, err := generic(env.Data)
	if err != nil {
		return "", err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault

	switch v := data.(type) {
	case []any:
		records := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				records = append(records, m)
			}
		}
		columns := columnsOf(records)
		header := make(table.Row, 0, len(columns))
		for _, c := range columns {
			header = append(header, c)
		}
		t.AppendHeader(header)
		for _, rec := range records {
			row := make(table.Row, 0, len(columns))
			for _, c := range columns {
				row = append(row, cell(rec[c]))
			}
			t.AppendRow(row)
		}
		t.AppendFooter(footer(len(columns), fmt.Sprintf("%d record(s) from %s", len(records), env.Platform)))
	case map[string]any:
		t.AppendHeader(table.Row{"Field", "Value"})
		for _, key := range sortedKeys(v) {
			t.AppendRow(table.Row{key, cell(v[key])})
		}
		t.AppendFooter(table.Row{string(env.Platform), env.Timestamp})
	default:
		t.AppendHeader(table.Row{"Value"})
		t.AppendRow(table.Row{cell(v)})
	}

	rendered := t.Render()
	if len(env.Pagination) > 0 {
		lines := []string{"", "Pagination:"}
		for _, key := range sortedKeys(env.Pagination) {
			lines = append(lines, fmt.Sprintf("  %s: %s", key, cell(env.Pagination[key])))
		}
		rendered += strings.Join(lines, "\n")
	}
	return rendered, nil
}

// FormatPlatforms renders the platform, action and throttle listing.
func (f *TableFormatter) FormatPlatforms(infos []engine.PlatformInfo) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Platform", "Actions", "Limit", "Used", "Store"})

	for _, info := range infos {
		limit := "-"
		used := "-"
		if info.Limit.MaxRequests > 0 {
			limit = fmt.Sprintf("%d / %s", info.Limit.MaxRequests, info.Limit.WindowText)
			used = fmt.Sprintf("%d", info.Limit.Used)
			if info.Limit.Used < 0 {
				used = "unknown"
			}
		}
		store := info.Limit.Store
		if store == "" {
			store = "-"
		}
		t.AppendRow(table.Row{
			info.Platform.DisplayName(),
			strings.Join(info.Actions, ", "),
			limit,
			used,
			store,
		})
	}
	return t.Render(), nil
}

// columnsOf returns the union of keys across records, id first.
func columnsOf(records []map[string]any) []string {
	seen := map[string]bool{}
	var columns []string
	for _, rec := range records {
		for key := range rec {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	sort.Slice(columns, func(i, j int) bool {
		if columns[i] == "id" || columns[j] == "id" {
			return columns[i] == "id"
		}
		return columns[i] < columns[j]
	})
	return columns
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func footer(width int, text string) table.Row {
	if width == 0 {
		return table.Row{text}
	}
	row := make(table.Row, width)
	for i := range row {
		row[i] = ""
	}
	row[0] = text
	return row
}

// cell flattens one value for display.
func cell(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s = val
	case float64:
		if val == float64(int64(val)) {
			s = fmt.Sprintf("%d", int64(val))
		} else {
			s = fmt.Sprintf("%g", val)
		}
	case bool:
		s = fmt.Sprintf("%t", val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			s = fmt.Sprint(val)
		} else {
			s = string(data)
		}
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) > maxCellWidth {
		s = string([]rune(s)[:maxCellWidth-3]) + "..."
	}
	return s
}
