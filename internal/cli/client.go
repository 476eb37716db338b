package cli

import (
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/finch-bank/finch/internal/app/ledger"
	"github.com/finch-bank/finch/internal/app/poller"
	"github.com/finch-bank/finch/internal/infra/remote"
	"github.com/finch-bank/finch/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(clientCmd)
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Run the dashboard sync engine",
	Long: `Run the local engine behind the dashboard: load the ledger from disk,
push the current state to the server, then poll for assistant commands and
replay them through the ledger until interrupted.`,
	RunE: runClient,
}

func runClient(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Client.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	loaded, err := db.LoadLedger()
	if err != nil {
		return err
	}

	rc := remote.NewClient(cfg.Client.ServerURL)
	store := ledger.New(loaded, db, rc)

	// Announce the restored state so the server mirror is warm before the
	// first poll. Failure is not fatal: every later mutation pushes again.
	if err := rc.PushState(ctx, store.Snapshot()); err != nil {
		log.Printf("[client] initial state push failed: %v", err)
	}

	if cfg.Client.MetricsAddr != "" {
		go serveMetrics(cfg.Client.MetricsAddr)
	}

	interval := time.Duration(cfg.Client.PollIntervalSeconds) * time.Second
	log.Printf("[client] polling %s every %s", cfg.Client.ServerURL, interval)

	p := poller.New(rc, store, interval)
	p.Run(ctx)

	log.Printf("[client] stopped")
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("[client] metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[client] metrics server: %v", err)
	}
}
