package launcher

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	incidentIDVar = "%%INCIDENT_ID%%"
	baseURLVar    = "%%BASE_URL%%"
)

// DetailLauncher builds the command used to open a single incident outside the TUI,
// eg: "xdg-open %%BASE_URL%%/incidents/%%INCIDENT_ID%%"
type DetailLauncher struct {
	Enabled bool
	command []string
	baseURL string
}

func NewDetailLauncher(command string, baseURL string) (DetailLauncher, error) {
	launcher := DetailLauncher{
		command: strings.Fields(command),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}

	err := launcher.validate()
	if err != nil {
		return DetailLauncher{}, err
	}

	return launcher, nil
}

func (l *DetailLauncher) validate() error {
	errs := []error{}

	if len(l.command) == 0 {
		errs = append(errs, fmt.Errorf("detail command is not set"))
	}

	if len(l.command) > 0 && strings.Contains(l.command[0], "%%") {
		errs = append(errs, fmt.Errorf("first detail command argument cannot have a replaceable"))
	}

	if !strings.Contains(strings.Join(l.command, " "), incidentIDVar) {
		errs = append(errs, fmt.Errorf("detail command must contain %s", incidentIDVar))
	}

	if len(errs) > 0 {
		return fmt.Errorf("launcher error: %v", errors.Join(errs...))
	}

	l.Enabled = true
	return nil
}

// BuildCommand returns the argv for opening the given incident
func (l *DetailLauncher) BuildCommand(id int64) []string {
	if len(l.command) == 0 {
		return []string{}
	}

	command := []string{}

	// The first arg is never replaced, as checked in validate
	command = append(command, l.command[0])
	command = append(command, l.replaceVars(l.command[1:], id)...)

	return command
}

func (l *DetailLauncher) replaceVars(args []string, id int64) []string {
	r := strings.NewReplacer(
		incidentIDVar, strconv.FormatInt(id, 10),
		baseURLVar, l.baseURL,
	)

	transformedArgs := []string{}
	for _, str := range args {
		transformedArgs = append(transformedArgs, r.Replace(str))
	}
	return transformedArgs
}
