package cmd

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/clcollins/heroes/pkg/api"
	"github.com/clcollins/heroes/pkg/deprecation"
	"github.com/clcollins/heroes/pkg/launcher"
	"github.com/clcollins/heroes/pkg/money"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	exampleConfig = `
# Example heroes configuration file
---
# This is an example configuration file for heroes.  It is intended to be used
# as a reference for the configuration options available to the user.  The
# configuration file is located at ~/.config/heroes/heroes.yaml
# Every key may also be set from the environment, eg: HEROES_BASE_URL

# Required configuration options

# Root of the incidents API; the list is read from <base_url>/incidents/available
base_url: http://localhost:3333

# Optional configuration options

# Locale and ISO 4217 currency used to display incident values
locale: pt-BR
currency: BRL

# Replace the currency symbol taken from the locale data
currency_symbol: R$

# Load the next page when the cursor is this many screens from the last row
end_threshold: 0.5

# HTTP settings
request_timeout: 30s
user_agent: heroes

# Command used to open a single incident, eg: in a browser
detail_command: xdg-open %%BASE_URL%%/incidents/%%INCIDENT_ID%%

# Cache pages in redis between runs
redis_addr: localhost:6379
cache_ttl: 1m

# Serve prometheus metrics while the TUI runs
metrics_addr: localhost:9090`
)

const description = `The config command is used to create or validate the heroes config file.
The config file is located at ~/.config/heroes/heroes.yaml and is used to store
the configuration options for the heroes application.`

var (
	requiredKeys = map[string]string{
		"base_url": "Incidents API base URL",
	}
	defaultOptionalKeys = map[string]interface{}{
		"locale":          money.DefaultLocale,
		"currency":        money.DefaultCurrency,
		"currency_symbol": "",
		"end_threshold":   0.5,
		"request_timeout": 30 * time.Second,
		"user_agent":      "heroes",
		"detail_command":  "",
		"redis_addr":      "",
		"cache_ttl":       time.Minute,
		"metrics_addr":    "",
	}
	optionalKeys = map[string]string{
		"locale":          fmt.Sprintf("BCP 47 locale for values (default: %v)", defaultOptionalKeys["locale"]),
		"currency":        fmt.Sprintf("ISO 4217 currency code for values (default: %v)", defaultOptionalKeys["currency"]),
		"currency_symbol": "Currency symbol override (default: from the locale)",
		"end_threshold":   fmt.Sprintf("Screens from the last row that trigger the next page (default: %v)", defaultOptionalKeys["end_threshold"]),
		"request_timeout": fmt.Sprintf("HTTP request timeout (default: %v)", defaultOptionalKeys["request_timeout"]),
		"user_agent":      fmt.Sprintf("HTTP User-Agent (default: %v)", defaultOptionalKeys["user_agent"]),
		"detail_command":  "Command to open an incident; requires %%INCIDENT_ID%% (default: None)",
		"redis_addr":      "Redis address for the page cache (default: None)",
		"cache_ttl":       fmt.Sprintf("How long cached pages are kept (default: %v)", defaultOptionalKeys["cache_ttl"]),
		"metrics_addr":    "Address to serve prometheus metrics on (default: None)",
	}
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Create or validate the heroes config file",
	Long:         description + "\n\n" + exampleConfig,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case cmd.Flag("create").Value.String() == "true":
			fmt.Fprintln(cmd.OutOrStdout(), exampleConfig)
			return nil
		case cmd.Flag("validate").Value.String() == "true":
			err := validateConfig(viper.GetViper())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Config file is valid")
			return nil
		default:
			err := cmd.Usage()
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolP("create", "c", false, "print a sample config file")
	configCmd.Flags().BoolP("validate", "v", false, "validate the config file")
	configCmd.MarkFlagsMutuallyExclusive("create", "validate")
}

func setDefaults(v *viper.Viper) {
	for k, d := range defaultOptionalKeys {
		v.SetDefault(k, d)
	}
}

// validateConfig checks every setting the TUI depends on and reports all problems at once
func validateConfig(v *viper.Viper) error {
	errs := []error{}
	settings := v.AllSettings()
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if deprecation.Deprecated(k) {
			if r := deprecation.Replacement(k); r != "" {
				log.Warn("Found deprecated key; it is ignored", "key_name", k, "use_instead", r)
			} else {
				log.Info("Found deprecated key; you may remove this from your config", "key_name", k)
			}
			continue
		}

		log.Debug("Found key", k, fmt.Sprintf("%v", settings[k]))
	}

	for k, d := range requiredKeys {
		if v.GetString(k) == "" {
			errs = append(errs, fmt.Errorf("missing required key: %s", k))
			log.Error("Missing required key", "key_name", k, "key_description", d)
		}
	}

	for k, d := range optionalKeys {
		if !v.IsSet(k) {
			log.Debug("Optional key not set; using default", "key_name", k, "key_description", d)
		}
	}

	if u := v.GetString("base_url"); u != "" {
		if _, err := api.NewClient(api.Config{BaseURL: u}); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := money.NewFormatter(v.GetString("locale"), v.GetString("currency")); err != nil {
		errs = append(errs, err)
	}

	if c := v.GetString("detail_command"); c != "" {
		if _, err := launcher.NewDetailLauncher(c, v.GetString("base_url")); err != nil {
			errs = append(errs, fmt.Errorf("invalid detail_command: %w", err))
		}
	}

	if t := v.GetFloat64("end_threshold"); t < 0 {
		errs = append(errs, fmt.Errorf("end_threshold must not be negative: %v", t))
	}

	for _, k := range []string{"request_timeout", "cache_ttl"} {
		if d := v.GetDuration(k); d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive duration, eg: 30s: %v", k, v.Get(k)))
		}
	}

	return errors.Join(errs...)
}
