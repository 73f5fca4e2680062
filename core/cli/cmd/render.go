package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/lariat-data/lariat-go/core/domain"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use table, json or yaml)", format)
	}
}

// render writes v as JSON or YAML, or calls table for the table format
func render(w io.Writer, v any, table func(tw *tabwriter.Writer)) error {
	switch outputFormat {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
}

func row(tw *tabwriter.Writer, cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = domain.FormatValue(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

// renderTable writes a result table in the selected format
func renderTable(w io.Writer, result *domain.QueryResult) error {
	table := result.Table()
	switch outputFormat {
	case formatJSON:
		return result.WriteJSON(w)
	case formatYAML:
		return render(w, table.Maps(), nil)
	default:
		if len(table.Columns) == 0 {
			fmt.Fprintln(w, "(no records)")
			return nil
		}
		return render(w, nil, func(tw *tabwriter.Writer) {
			header := make([]any, len(table.Columns))
			for i, c := range table.Columns {
				header[i] = strings.ToUpper(c)
			}
			row(tw, header...)
			for _, r := range table.Rows {
				row(tw, r...)
			}
		})
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	return slices.Sorted(maps.Keys(m))
}
