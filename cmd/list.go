package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/clcollins/heroes/pkg/api"
	"github.com/clcollins/heroes/pkg/loader"
	"github.com/clcollins/heroes/pkg/money"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listCmd prints every available incident without starting the TUI
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all available incidents",
	Long: `The list command loads every page of available incidents and prints them
as a table, or as JSON with --json.  If a page fails to load, the incidents
loaded so far are printed before the error is returned.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		if err := validateConfig(v); err != nil {
			return err
		}

		client, cleanup, err := newIncidentClient(cmd.Context(), v)
		if err != nil {
			return err
		}
		defer cleanup()

		formatter, err := newFormatter(v)
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		return listIncidents(cmd.Context(), client, cmd.OutOrStdout(), formatter, asJSON)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("json", false, "print incidents as JSON")
}

// listIncidents pages through the whole list and writes it to w
func listIncidents(ctx context.Context, client api.IncidentClient, w io.Writer, f *money.Formatter, asJSON bool) error {
	l := loader.New(client)
	loadErr := l.LoadAll(ctx)

	state := l.State()
	log.Debug("listIncidents", "loaded", len(state.Items), "total", state.TotalCount, "error", loadErr)

	var err error
	if asJSON {
		err = writeIncidentsJSON(w, state.Items)
	} else {
		_, err = fmt.Fprintln(w, renderIncidentTable(state.Items, state.TotalCount, f))
	}
	if err != nil {
		return fmt.Errorf("cmd.listIncidents(): %w", err)
	}

	if loadErr != nil {
		return fmt.Errorf("cmd.listIncidents(): loaded %d of %d incidents: %w", len(state.Items), state.TotalCount, loadErr)
	}
	return nil
}

func writeIncidentsJSON(w io.Writer, incidents []api.Incident) error {
	if incidents == nil {
		incidents = []api.Incident{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(incidents)
}

func renderIncidentTable(incidents []api.Incident, total int, f *money.Formatter) string {
	rows := make([][]string, 0, len(incidents))
	for _, i := range incidents {
		rows = append(rows, []string{
			strconv.FormatInt(i.ID, 10),
			i.Name,
			i.Title,
			f.Format(i.Value),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("#", "ONG", "CASE", "VALUE").
		Rows(rows...)

	return t.Render() + "\n" + totalLine(len(incidents), total)
}

func totalLine(loaded, total int) string {
	if total == 1 {
		return fmt.Sprintf("%d of 1 case", loaded)
	}
	return fmt.Sprintf("%d of %d cases", loaded, total)
}
