package cmd

import (
	"github.com/pterm/pterm"
)

// listTable renders simple listings with a bold cyan header row.
type listTable struct {
	printer *pterm.TablePrinter
	data    pterm.TableData
}

func newListTable(headers []string) *listTable {
	printer := pterm.DefaultTable.
		WithHasHeader(true).
		WithHeaderStyle(pterm.NewStyle(pterm.FgCyan, pterm.Bold))
	return &listTable{
		printer: printer,
		data:    pterm.TableData{headers},
	}
}

func (t *listTable) AddRow(cells ...string) {
	t.data = append(t.data, cells)
}

func (t *listTable) Render() error {
	return t.printer.WithData(t.data).Render()
}
