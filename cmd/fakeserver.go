package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/clcollins/heroes/pkg/api"
	"github.com/clcollins/heroes/pkg/fakeapi"
	"github.com/spf13/cobra"
)

const (
	defaultFakeServerAddr  = "localhost:3333"
	defaultFakeServerCount = 42
	shutdownTimeout        = 5 * time.Second
)

// fakeServerCmd serves generated incidents with the same paging contract as the real API
var fakeServerCmd = &cobra.Command{
	Use:   "fake-server",
	Short: "Serve a fake incidents API for local use",
	Long: `The fake-server command serves a generated set of incidents at
/incidents/available, a page at a time with the X-Total-Count header,
so the TUI can be used without the real API:

  heroes fake-server --count 42 &
  heroes --base-url http://localhost:3333`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		count, _ := cmd.Flags().GetInt("count")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		if count < 0 {
			return fmt.Errorf("--count must not be negative: %d", count)
		}

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("cmd.fakeServerCmd(): %w", err)
		}

		srv := fakeapi.New(api.SampleIncidents(count), pageSize)
		log.Info("Serving fake incidents API", "addr", ln.Addr().String(), "incidents", count, "page_size", pageSize)

		return serveFakeAPI(cmd.Context(), ln, srv.Router())
	},
}

func init() {
	rootCmd.AddCommand(fakeServerCmd)

	fakeServerCmd.Flags().String("addr", defaultFakeServerAddr, "address to listen on")
	fakeServerCmd.Flags().Int("count", defaultFakeServerCount, "number of incidents to serve")
	fakeServerCmd.Flags().Int("page-size", fakeapi.DefaultPageSize, "incidents per page")
}

// serveFakeAPI serves handler on ln until ctx is done, then shuts down gracefully
func serveFakeAPI(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("cmd.serveFakeAPI(): %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("cmd.serveFakeAPI(): %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("cmd.serveFakeAPI(): %w", err)
	}
	return nil
}
