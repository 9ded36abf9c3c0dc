package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/clcollins/heroes/pkg/api"
	"github.com/clcollins/heroes/pkg/money"
)

// incidentRows converts loaded incidents to table rows, keeping arrival order
func incidentRows(incidents []api.Incident, f *money.Formatter) []table.Row {
	rows := make([]table.Row, 0, len(incidents))
	for _, i := range incidents {
		rows = append(rows, table.Row{
			strconv.FormatInt(i.ID, 10),
			i.Name,
			i.Title,
			formatValue(f, i.Value),
		})
	}
	return rows
}

func formatValue(f *money.Formatter, v float64) string {
	if f == nil {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return f.Format(v)
}
