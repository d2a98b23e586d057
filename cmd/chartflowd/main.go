// chartflowd serves the chart-rendering task API. Every task runs as a flow
// through the embedded workflow engine in the core package.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alt-coder/chartflow/charts"
	"github.com/alt-coder/chartflow/config"
	"github.com/alt-coder/chartflow/llm"
	"github.com/alt-coder/chartflow/llm/openai"
	"github.com/alt-coder/chartflow/logging"
	"github.com/alt-coder/chartflow/server"
	"github.com/alt-coder/chartflow/tasks"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "chartflowd",
		Short:         "Chart-rendering task service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

func serve(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	renderer, err := charts.NewRenderer(cfg.Output.Dir)
	if err != nil {
		return err
	}

	pipelineOpts := []charts.PipelineOption{
		charts.WithLogger(logging.NewFlowLogger(log)),
		charts.WithRenderRetry(cfg.Render.MaxRetries, cfg.Render.RetryWait.Std()),
	}
	if cfg.LLM.APIKey != "" {
		client, err := openai.NewClient(&openai.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
		})
		if err != nil {
			return err
		}
		pipelineOpts = append(pipelineOpts, charts.WithGenerator(llm.NewSpecGenerator(client)))
	}
	pipeline := charts.NewPipeline(renderer, pipelineOpts...)

	store := tasks.NewStore()
	metrics := server.NewMetrics()
	runner := tasks.NewRunner(store, pipeline, log, tasks.WithObserver(metrics.ObserveTask))
	handler := server.NewHandler(store, runner, log)
	router := server.NewRouter(handler, metrics, log)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("output", cfg.Output.Dir))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return runner.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
