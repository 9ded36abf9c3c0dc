package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	dot       = "•"
	upArrow   = "↑"
	downArrow = "↓"
)

// Init starts the initial page load
func (m model) Init() tea.Cmd {
	debug("Init")
	return loadNextPage
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.windowSizeMsgHandler(msg)

	case tea.KeyMsg:
		return m.keyMsgHandler(msg)

	case errMsg:
		return m.errMsgHandler(msg)

	case spinner.TickMsg:
		// Stop ticking once nothing is loading; the next load restarts it
		if !m.list.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadNextPageMsg:
		return m.loadNextPageMsgHandler()

	case loadedPageMsg:
		return m.loadedPageMsgHandler(msg)

	case purgedCacheMsg:
		if msg.err != nil {
			// A stale cache is not fatal; the refresh still goes ahead
			debug("purgedCacheMsg", "error", msg.err)
		}
		return m, nil

	case renderIncidentMsg:
		if m.selectedIncident == nil {
			return m, nil
		}
		m.setStatus(fmt.Sprintf(renderingStatus, m.selectedIncident.ID))
		return m, renderIncident(&m)

	case renderedIncidentMsg:
		if msg.err != nil {
			m.clearSelectedIncident("render failed")
			return m, func() tea.Msg { return errMsg{msg.err} }
		}
		m.incidentViewer.SetContent(msg.content)
		m.incidentViewer.GotoTop()
		m.viewingIncident = true
		m.setStatus(fmt.Sprintf("showing incident %d", m.selectedIncident.ID))
		return m, nil

	case openDetailFinishedMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return errMsg{fmt.Errorf("opening incident %d: %w", msg.id, msg.err)} }
		}
		m.setStatus(fmt.Sprintf("opened incident %d", msg.id))
		return m, nil
	}

	return m, nil
}
