package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/clcollins/heroes/pkg/api"
	"github.com/clcollins/heroes/pkg/tui/style"
)

// Rows taken up by everything around the table: header, borders, footer and help
const chromeHeight = 8

// errMsgHandler is the message handler for the errMsg message
func (m model) errMsgHandler(msg errMsg) (tea.Model, tea.Cmd) {
	debug("errMsgHandler", "error", msg.error)
	m.setStatus(msg.Error())
	m.err = msg.error
	return m, nil
}

// windowSizeMsgHandler resizes the tui according to the new terminal window size
func (m model) windowSizeMsgHandler(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	debug("windowSizeMsgHandler", "width", msg.Width, "height", msg.Height)

	borderEdges := style.TableContainer.GetHorizontalFrameSize()
	m.help.Width = msg.Width - borderEdges

	m.table.SetColumns(tableColumns(msg.Width - borderEdges))

	height := max(msg.Height-chromeHeight, 3)
	m.table.SetHeight(height)
	m.incidentViewer.Width = msg.Width - borderEdges
	m.incidentViewer.Height = height

	// More rows may fit now, so the list might need another page
	return m, m.loadMoreIfNearEnd()
}

// loadNextPageMsgHandler claims the loader and starts the fetch; it does nothing when a
// page is already loading or every incident has been loaded
func (m model) loadNextPageMsgHandler() (tea.Model, tea.Cmd) {
	next, req, ok := m.list.Begin()
	if !ok {
		debug("loadNextPageMsgHandler", "noop", true, "loading", m.list.Loading, "exhausted", m.list.Exhausted())
		return m, nil
	}

	m.list = next
	m.setStatus(fmt.Sprintf(loadingPageStatus, req.Page))

	return m, tea.Batch(
		loadPageCmd(m.ctx, m.client, req),
		m.spinner.Tick,
	)
}

// loadedPageMsgHandler folds a finished fetch into the list and, when the cursor is still
// near the end, asks for the following page
func (m model) loadedPageMsgHandler(msg loadedPageMsg) (tea.Model, tea.Cmd) {
	before := m.list
	m.list = m.list.Apply(msg.result)

	if !before.Loading || m.list.Loading {
		debug("loadedPageMsgHandler", "stale", true, "page", msg.result.Request.Page)
		return m, nil
	}

	if m.list.Err != nil {
		m.setStatus(fmt.Sprintf("failed to load page %d", msg.result.Request.Page))
		m.err = m.list.Err
		return m, nil
	}

	m.table.SetRows(incidentRows(m.list.Items, m.formatter))
	m.setStatus(fmt.Sprintf("showing %d/%d incidents", len(m.list.Items), m.totalCount()))

	return m, m.loadMoreIfNearEnd()
}

// loadMoreIfNearEnd returns a command to load the next page when the cursor is inside
// the trailing threshold. A failed load is only retried on request.
func (m model) loadMoreIfNearEnd() tea.Cmd {
	if m.list.Loading || m.list.Err != nil || m.list.Exhausted() {
		return nil
	}
	if !m.nearEnd() {
		return nil
	}
	return loadNextPage
}

// totalCount is the advertised total, or the loaded count when the API sent none
func (m model) totalCount() int {
	if m.list.TotalCount > 0 {
		return m.list.TotalCount
	}
	return len(m.list.Items)
}

func (m model) keyMsgHandler(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	debug("keyMsgHandler", "tea.KeyMsg", msg.String())
	if key.Matches(msg, defaultKeyMap.Quit) {
		// Anything still in flight is abandoned with the program
		if m.cancel != nil {
			m.cancel()
		}
		m.list = m.list.Cancel()
		return m, tea.Quit
	}

	switch {
	case m.err != nil:
		return switchErrorFocusMode(m, msg)

	case m.viewingIncident:
		return switchIncidentFocusMode(m, msg)

	default:
		return switchTableFocusMode(m, msg)
	}
}

// switchTableFocusMode is the main mode for the application
func switchTableFocusMode(m model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	debug("switchTableFocusMode")

	switch {
	case key.Matches(msg, defaultKeyMap.Help):
		m.toggleHelp()

	case key.Matches(msg, defaultKeyMap.Up):
		m.table.MoveUp(1)

	case key.Matches(msg, defaultKeyMap.Down):
		m.table.MoveDown(1)
		return m, m.loadMoreIfNearEnd()

	case key.Matches(msg, defaultKeyMap.Top):
		m.table.GotoTop()

	case key.Matches(msg, defaultKeyMap.Bottom):
		m.table.GotoBottom()
		return m, m.loadMoreIfNearEnd()

	case key.Matches(msg, defaultKeyMap.Enter):
		incident := m.getHighlightedIncident()
		if incident == nil {
			m.setStatus(nilIncidentErr)
			return m, nil
		}
		m.selectedIncident = incident
		return m, func() tea.Msg { return renderIncidentMsg("render") }

	case key.Matches(msg, defaultKeyMap.Open):
		incident := m.getHighlightedIncident()
		if incident == nil {
			m.setStatus(nilIncidentErr)
			return m, nil
		}
		return m.openDetail(incident)

	case key.Matches(msg, defaultKeyMap.Refresh):
		return m.refresh()

	case key.Matches(msg, defaultKeyMap.Retry):
		if m.list.Err == nil {
			return m, nil
		}
		return m, loadNextPage
	}

	return m, nil
}

func switchIncidentFocusMode(m model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	debug("switchIncidentFocusMode")

	switch {
	case key.Matches(msg, defaultKeyMap.Help):
		m.toggleHelp()
		return m, nil

	// This un-sets the selected incident and returns to the table view
	case key.Matches(msg, defaultKeyMap.Back):
		m.clearSelectedIncident("back")
		return m, nil

	case key.Matches(msg, defaultKeyMap.Open):
		return m.openDetail(m.selectedIncident)
	}

	var cmd tea.Cmd
	m.incidentViewer, cmd = m.incidentViewer.Update(msg)
	return m, cmd
}

func switchErrorFocusMode(m model, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	debug("switchErrorFocusMode")

	switch {
	case key.Matches(msg, defaultKeyMap.Back):
		m.err = nil

	case key.Matches(msg, defaultKeyMap.Retry):
		m.err = nil
		if m.list.Err != nil {
			return m, loadNextPage
		}
	}

	return m, nil
}

// refresh drops everything loaded so far and starts again from the first page. Results
// for requests issued before the refresh are ignored.
func (m model) refresh() (tea.Model, tea.Cmd) {
	m.list = m.list.Reset()
	m.err = nil
	m.clearSelectedIncident("refresh")
	m.table.SetRows(incidentRows(nil, m.formatter))
	m.table.GotoTop()
	m.setStatus(refreshingStatus)

	return m, tea.Sequence(
		purgeCacheCmd(m.ctx, m.client),
		loadNextPage,
	)
}

func (m model) openDetail(incident *api.Incident) (tea.Model, tea.Cmd) {
	if incident == nil {
		m.setStatus(nilIncidentErr)
		return m, nil
	}
	if !m.launcher.Enabled {
		m.setStatus(noLauncherErr)
		return m, nil
	}
	m.setStatus(fmt.Sprintf(openingDetailStatus, incident.ID))
	return m, openDetailCmd(m.launcher, incident.ID)
}
