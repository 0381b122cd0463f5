package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-admin-console/components/console"
)

type actionsCmd struct{}

func (cmd *actionsCmd) Run() error {
	rows := make([][]string, 0, len(console.ActionNames))
	for _, name := range console.ActionNames {
		action := console.ParseAction(console.Element{
			Action: name,
			Attrs:  map[string]string{"view": "orders", "chart": "sales"},
		})
		rows = append(rows, []string{name, action.Name()})
	}
	return writeTable(os.Stdout, []string{"DataAction", "HandledAs"}, rows)
}

type viewsCmd struct {
	Mode []string `help:"Terminology modes to show (defaults to all)."`
}

func (cmd *viewsCmd) Run(ctx context.Context) error {
	modes := cmd.Mode
	if len(modes) == 0 {
		modes = console.TerminologyModes()
	}
	return writeTable(os.Stdout, append([]string{"View", "DataView"}, modes...), viewRows(ctx, modes))
}

func viewRows(ctx context.Context, modes []string) [][]string {
	term := console.NewTerminology(nil)
	rows := make([][]string, 0, len(console.DefaultViews))
	for _, view := range console.DefaultViews {
		row := []string{view, fmt.Sprint(slices.Contains(console.DefaultDataViews, view))}
		for _, mode := range modes {
			row = append(row, term.Label(ctx, mode, "nav."+view))
		}
		rows = append(rows, row)
	}
	return rows
}

// writeTable prints aligned columns. Headers are rendered in SCREAMING_SNAKE.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	labels := make([]string, len(headers))
	for i, h := range headers {
		labels[i] = strcase.ToSNAKE(h)
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
