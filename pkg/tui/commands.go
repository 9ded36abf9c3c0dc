package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/clcollins/heroes/pkg/api"
	"github.com/clcollins/heroes/pkg/launcher"
	"github.com/clcollins/heroes/pkg/loader"
)

const (
	loadingPageStatus   = "loading page %d..."
	refreshingStatus    = "refreshing..."
	nilIncidentErr      = "no incident highlighted"
	noLauncherErr       = "no detail_command configured"
	renderingStatus     = "rendering incident %d..."
	openingDetailStatus = "opening incident %d..."
)

// Type and function for capturing error messages with tea.Msg
type errMsg struct{ error }

// loadNextPageMsg asks the model to start loading the next page, if it is not already
// loading and the list is not exhausted
type loadNextPageMsg struct{}

func loadNextPage() tea.Msg {
	return loadNextPageMsg{}
}

type loadedPageMsg struct {
	result loader.Result
}

func loadPageCmd(ctx context.Context, client api.IncidentClient, req loader.Request) tea.Cmd {
	return func() tea.Msg {
		debug("tui.loadPageCmd", "page", req.Page, "generation", req.Generation)
		return loadedPageMsg{loader.Fetch(ctx, client, req)}
	}
}

type purgedCacheMsg struct {
	err error
}

// purgeCacheCmd drops cached pages so a refresh reaches the API, when the client caches
func purgeCacheCmd(ctx context.Context, client api.IncidentClient) tea.Cmd {
	return func() tea.Msg {
		p, ok := client.(api.Purger)
		if !ok {
			return purgedCacheMsg{}
		}
		return purgedCacheMsg{p.Purge(ctx)}
	}
}

type renderIncidentMsg string

type renderedIncidentMsg struct {
	content string
	err     error
}

func renderIncident(m *model) tea.Cmd {
	incident := m.selectedIncident
	renderer := m.markdownRenderer
	formatter := m.formatter

	return func() tea.Msg {
		if incident == nil {
			return renderedIncidentMsg{"", errors.New(nilIncidentErr)}
		}

		t, err := incidentTemplate(summarizeIncident(*incident, formatter))
		if err != nil {
			return renderedIncidentMsg{"", fmt.Errorf("tui.renderIncident(): %w", err)}
		}

		// Fall back to the raw markdown without a renderer
		if renderer == nil {
			return renderedIncidentMsg{t, nil}
		}

		content, err := renderer.Render(t)
		if err != nil {
			return renderedIncidentMsg{"", fmt.Errorf("tui.renderIncident(): %w", err)}
		}

		return renderedIncidentMsg{content, nil}
	}
}

type openDetailFinishedMsg struct {
	id  int64
	err error
}

// openDetailCmd runs the configured detail command for an incident and reports anything
// it writes to stderr as an error
func openDetailCmd(l launcher.DetailLauncher, id int64) tea.Cmd {
	return func() tea.Msg {
		if !l.Enabled {
			return openDetailFinishedMsg{id, errors.New(noLauncherErr)}
		}

		command := l.BuildCommand(id)
		c := exec.Command(command[0], command[1:]...)

		debug("tui.openDetailCmd", "command", c.String())
		stderr, pipeErr := c.StderrPipe()
		if pipeErr != nil {
			return openDetailFinishedMsg{id, pipeErr}
		}

		err := c.Start()
		if err != nil {
			return openDetailFinishedMsg{id, err}
		}

		out, err := io.ReadAll(stderr)
		if err != nil {
			return openDetailFinishedMsg{id, err}
		}

		if err := c.Wait(); err != nil {
			if len(out) > 0 {
				return openDetailFinishedMsg{id, fmt.Errorf("%w: %s", err, out)}
			}
			return openDetailFinishedMsg{id, err}
		}

		return openDetailFinishedMsg{id, nil}
	}
}
