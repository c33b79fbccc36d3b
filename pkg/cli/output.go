package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// tabular is implemented by results that can print themselves as tables.
type tabular interface {
	tables() []table.Writer
}

func newTable(title string, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	if len(header) > 0 {
		t.AppendHeader(table.Row(header))
	}
	return t
}

func (a *appConfig) encode(v any) error {
	return encode(a.Out, a.Format, v)
}

func encode(out io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		e := yaml.NewEncoder(out)
		if err := e.Encode(v); err != nil {
			return fmt.Errorf("error encoding yaml: %w", err)
		}
		return e.Close()
	case formatTable:
		if t, ok := v.(tabular); ok {
			for _, w := range t.tables() {
				if _, err := fmt.Fprintln(out, w.Render()); err != nil {
					return err
				}
			}
			return nil
		}
	}

	e := json.NewEncoder(out)
	e.SetIndent("", "  ")
	if err := e.Encode(v); err != nil {
		return fmt.Errorf("error encoding json: %w", err)
	}
	return nil
}
