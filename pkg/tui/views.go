package tui

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/clcollins/heroes/pkg/api"
	"github.com/clcollins/heroes/pkg/loader"
	"github.com/clcollins/heroes/pkg/money"
	"github.com/clcollins/heroes/pkg/tui/style"
)

func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.renderHeader())

	switch {
	case m.err != nil:
		log.Debug("View", "error", m.err)

		var e strings.Builder
		e.WriteString(dot)
		e.WriteString("ERROR")
		e.WriteString(dot)
		e.WriteString("\n\n")
		e.WriteString(m.err.Error())
		e.WriteString("\n\n")
		e.WriteString(help.New().View(errorViewKeyMap))

		s.WriteString(style.Error.Render(e.String()))
		return s.String()

	case m.viewingIncident:
		s.WriteString(m.incidentViewer.View())

	default:
		s.WriteString(style.TableContainer.Render(m.table.View()))
	}

	s.WriteString("\n")
	s.WriteString(style.Padded.Render(footerArea(m.list)))
	s.WriteString("\n")
	s.WriteString(style.Padded.Render(style.Help.Render(m.help.View(defaultKeyMap))))

	return s.String()
}

func (m model) renderHeader() string {
	var s strings.Builder

	total := style.Padded.Render(style.Total.Render(totalArea(m.totalCount())))
	status := style.Padded.Render(style.Status.Render(statusArea(m.status, m.list.Loading, m.spinner.View())))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, total, status))
	s.WriteString("\n")
	return s.String()
}

// totalArea is the header count shown above the list
func totalArea(total int) string {
	if total == 1 {
		return "Total of 1 case"
	}
	return fmt.Sprintf("Total of %d cases", total)
}

func statusArea(s string, showSpinner bool, spinnerView string) string {
	if showSpinner {
		return fmt.Sprintf("%s %s", spinnerView, s)
	}
	return fmt.Sprintf("> %s", s)
}

// footerArea describes where the list loading stands
func footerArea(s loader.State) string {
	switch {
	case s.Loading:
		return fmt.Sprintf("Loading page %d...", s.NextPage)
	case s.Err != nil:
		return fmt.Sprintf("Failed to load page %d: press r to retry", s.NextPage)
	case s.Exhausted():
		return fmt.Sprintf("All %d cases loaded", len(s.Items))
	default:
		return fmt.Sprintf("Loaded %d cases; scroll down for more", len(s.Items))
	}
}

type incidentSummary struct {
	ID          int64
	Title       string
	Description string
	Value       string
	Name        string
	Email       string
	Whatsapp    string
	Location    string
}

func summarizeIncident(i api.Incident, f *money.Formatter) incidentSummary {
	s := incidentSummary{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Value:       formatValue(f, i.Value),
		Name:        i.Name,
		Email:       i.Email,
		Whatsapp:    i.Whatsapp,
	}

	switch {
	case i.City != "" && i.UF != "":
		s.Location = i.City + "/" + i.UF
	case i.City != "":
		s.Location = i.City
	default:
		s.Location = i.UF
	}

	return s
}

func incidentTemplate(summary incidentSummary) (string, error) {
	t, err := template.New("incident").Parse(incidentMarkdown)
	if err != nil {
		return "", err
	}

	o := new(bytes.Buffer)
	err = t.Execute(o, summary)
	if err != nil {
		return "", err
	}

	return o.String(), nil
}

const incidentMarkdown = `# {{ .Title }}

Case #{{ .ID }} from **{{ .Name }}**
{{- if .Location }} ({{ .Location }}){{ end }}

{{ if .Description -}}
{{ .Description }}
{{- else -}}
_no description_
{{- end }}

## Value

**{{ .Value }}**

## Contact

{{ if or .Email .Whatsapp -}}
{{ if .Email }}* E-mail: {{ .Email }}
{{ end }}
{{- if .Whatsapp }}* WhatsApp: {{ .Whatsapp }}
{{ end }}
{{- else -}}
_none_
{{ end }}`
