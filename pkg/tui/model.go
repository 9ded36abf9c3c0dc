package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/clcollins/heroes/pkg/api"
	"github.com/clcollins/heroes/pkg/launcher"
	"github.com/clcollins/heroes/pkg/loader"
	"github.com/clcollins/heroes/pkg/money"
	"github.com/clcollins/heroes/pkg/tui/style"
)

const defaultEndThreshold = 0.5

// Options carries the collaborators and settings the TUI needs besides the API client
type Options struct {
	Formatter *money.Formatter
	Launcher  launcher.DetailLauncher

	// EndThreshold is how close to the end of the list, in screens of visible rows,
	// the cursor must get before the next page is requested
	EndThreshold float64
}

type model struct {
	ctx    context.Context
	cancel context.CancelFunc
	err    error

	client    api.IncidentClient
	formatter *money.Formatter
	launcher  launcher.DetailLauncher
	threshold float64

	list loader.State

	table table.Model
	help  help.Model

	// This is a hack since viewport.Model doesn't have a Focused() method
	viewingIncident  bool
	selectedIncident *api.Incident
	incidentViewer   viewport.Model
	markdownRenderer *glamour.TermRenderer

	spinner spinner.Model
	status  string
}

func InitialModel(ctx context.Context, client api.IncidentClient, opts Options) model {
	ctx, cancel := context.WithCancel(ctx)

	if opts.Formatter == nil {
		f, err := money.NewFormatter(money.DefaultLocale, money.DefaultCurrency)
		if err != nil {
			log.Error("InitialModel", "failed to create currency formatter", err)
		}
		opts.Formatter = f
	}

	if opts.EndThreshold <= 0 {
		opts.EndThreshold = defaultEndThreshold
	}

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = s.Style.Foreground(style.Spinner)

	// Create markdown renderer once - reusing it is much faster than creating new ones
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		log.Error("InitialModel", "failed to create markdown renderer", err)
		// Continue without renderer - rendering will fall back to plain text
		renderer = nil
	}

	m := model{
		ctx:              ctx,
		cancel:           cancel,
		client:           client,
		formatter:        opts.Formatter,
		launcher:         opts.Launcher,
		threshold:        opts.EndThreshold,
		list:             loader.NewState(),
		table:            newTableWithStyles(),
		help:             newHelp(),
		incidentViewer:   newIncidentViewer(),
		markdownRenderer: renderer,
		spinner:          s,
	}

	log.Debug("InitialModel", "threshold", m.threshold, "launcher", m.launcher.Enabled)

	return m
}

func (m *model) setStatus(msg string) {
	log.Info("setStatus", "status", msg)
	m.status = msg
}

func (m *model) toggleHelp() {
	m.help.ShowAll = !m.help.ShowAll
}

// getHighlightedIncident returns the incident under the table cursor, or nil for an empty table
func (m *model) getHighlightedIncident() *api.Incident {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.list.Items) {
		return nil
	}
	i := m.list.Items[c]
	return &i
}

func (m *model) clearSelectedIncident(reason string) {
	m.selectedIncident = nil
	m.viewingIncident = false
	log.Debug("clearSelectedIncident", "reason", reason)
}

// nearEnd reports whether the table cursor is inside the trailing threshold
func (m *model) nearEnd() bool {
	return loader.NearEnd(m.table.Cursor(), len(m.list.Items), m.table.Height(), m.threshold)
}

func newTableWithStyles() table.Model {
	t := table.New(
		table.WithColumns(incidentListTableColumns),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(initialTableHeight),
	)
	t.SetStyles(style.Table)
	return t
}

func newHelp() help.Model {
	h := help.New()
	h.ShowAll = false
	return h
}

func newIncidentViewer() viewport.Model {
	vp := viewport.New(initialTableWidth, initialTableHeight)
	vp.Style = style.IncidentViewer
	return vp
}
