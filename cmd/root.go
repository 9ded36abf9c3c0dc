/*
Copyright © 2023 Chris Collins 'collins.christopher@gmail.com'

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/clcollins/heroes/pkg/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const cfgFile = "heroes.yaml"
const cfgFilePath = ".config/heroes/"
const envPrefix = "HEROES"

const metricsShutdownTimeout = 5 * time.Second

var debug bool
var baseURL string

// logCloser flushes the log file once the program exits
var logCloser io.Closer

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "heroes",
	Short: "TUI for browsing incidents that need a hero",
	Long: `'heroes' is a TUI application for browsing the incidents
organizations (ONGs) have posted and that are still waiting for
a donation.  The list loads one page at a time as you scroll,
shows the total number of open cases, and opens a detail view
with the organization's contact information for any case.`,
	SilenceUsage: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("debug") {
			log.SetLevel(log.DebugLevel)
		}
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()

		// Validate while logs still go to stderr so problems are visible
		if err := validateConfig(v); err != nil {
			return err
		}

		closer, err := setupLogging(runtime.GOOS)
		if err != nil {
			return err
		}
		logCloser = closer

		ctx := cmd.Context()

		client, cleanup, err := newIncidentClient(ctx, v)
		if err != nil {
			return err
		}
		defer cleanup()

		formatter, err := newFormatter(v)
		if err != nil {
			return err
		}

		stopMetrics, err := startMetricsServer(v.GetString("metrics_addr"))
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := stopMetrics(shutdownCtx); err != nil {
				log.Warn("metrics server shutdown", "error", err)
			}
		}()

		m := tui.InitialModel(ctx, client, tui.Options{
			Formatter:    formatter,
			Launcher:     newLauncher(v),
			EndThreshold: v.GetFloat64("end_threshold"),
		})

		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		_, err = p.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("cmd.rootCmd(): %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if logCloser != nil {
		logCloser.Close() //nolint:errcheck
	}

	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debugging output")
	rootCmd.PersistentFlags().StringVarP(&baseURL, "base-url", "u", "", "Incidents API base URL; overrides `base_url` from the config file")

	cobra.CheckErr(viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")))
	cobra.CheckErr(viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Find home directory.
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)

	// Search config in home directory with name "heroes.yaml"
	viper.AddConfigPath(home + "/" + cfgFilePath)
	viper.SetConfigName(cfgFile)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match, eg: HEROES_BASE_URL

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug("Config file not found", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, "Config file error: "+err.Error())
		}
	}
}
