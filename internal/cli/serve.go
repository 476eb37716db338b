package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/finch-bank/finch/internal/api"
	"github.com/finch-bank/finch/internal/assistant"
	"github.com/finch-bank/finch/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assistant server",
	Long: `Run the backend the dashboard talks to: the chat assistant, the
pending-command queue and the state mirror. Requires GEMINI_API_KEY (or
assistant.api_key in the config) for the assistant; without it the server
still runs but /chat answers with an error message.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mirror := api.NewMirror()
	queue := api.NewQueue()

	var responder api.Responder
	if cfg.Assistant.APIKey != "" {
		agent, err := assistant.New(ctx, cfg.Assistant.APIKey, cfg.Assistant.Model,
			assistant.NewToolbox(queue, mirror))
		if err != nil {
			return err
		}
		responder = agent
		log.Printf("[serve] assistant ready, model %s", cfg.Assistant.Model)
	} else {
		log.Printf("[serve] no API key configured, chat is disabled")
	}

	srv := api.NewServer(mirror, queue, responder)
	srv.EnableMetrics()
	if cfg.API.StaticDir != "" {
		srv.SetStaticDir(cfg.API.StaticDir)
	}

	httpSrv := &http.Server{
		Addr:    cfg.API.ListenAddr(),
		Handler: srv.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("[serve] listening on %s", httpSrv.Addr)
	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("[serve] stopped")
	return nil
}

func loadConfig() (daemon.Config, error) {
	path := configPath
	if path == "" {
		path = daemon.DefaultPath()
	}
	return daemon.Load(path)
}
