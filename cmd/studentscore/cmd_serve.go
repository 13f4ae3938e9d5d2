package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	shttp "studentscore/http"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prediction form over HTTP and WebSocket",
	Long: `Loads the model and feature columns once, then answers POST /api/predict
and the /api/ws/predict form socket until SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides http.port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	cfg := shttp.ServerConfig{
		Port:           a.config.Http.Port,
		Timeout:        a.config.Http.Timeout,
		AllowedOrigins: a.config.Http.AllowedOrigins,
		MaxBodyBytes:   a.config.Http.MaxBodyBytes,
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	server := shttp.NewServer(cfg, a.predictor, a.logger.Named("http"))
	a.watch(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	if err := server.Stop(); err != nil {
		a.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	a.logger.Info("exiting")
	return nil
}
