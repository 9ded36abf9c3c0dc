package tui

import (
	"github.com/charmbracelet/bubbles/table"
)

const (
	initialTableHeight = 20
	initialTableWidth  = 106

	idWidth    = 6
	valueWidth = 16
)

var incidentListTableColumns = []table.Column{
	{Title: "#", Width: idWidth},
	{Title: "ONG", Width: 28},
	{Title: "CASE", Width: 48},
	{Title: "VALUE", Width: valueWidth},
}

// tableColumns splits the available width between the ONG and CASE columns
func tableColumns(width int) []table.Column {
	// Each cell has one column of padding on both sides
	cellPadding := 2 * len(incidentListTableColumns)
	borderEdges := 2
	flexible := width - idWidth - valueWidth - cellPadding - borderEdges

	if flexible < 20 {
		return incidentListTableColumns
	}

	ongWidth := flexible / 3

	return []table.Column{
		{Title: "#", Width: idWidth},
		{Title: "ONG", Width: ongWidth},
		{Title: "CASE", Width: flexible - ongWidth},
		{Title: "VALUE", Width: valueWidth},
	}
}
