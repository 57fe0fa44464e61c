package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"promptd/internal/config"
	"promptd/internal/httpapi"
	"promptd/internal/pipeline"
	"promptd/internal/prompt"
	"promptd/internal/registry"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "promptd",
		Short:         "Streaming generation daemon in front of a local llama.cpp engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	fl := root.Flags()
	fl.StringVarP(&configPath, "config", "c", "", "Config file (.yaml/.json/.toml); flags override file values")
	fl.String("addr", ":8080", "HTTP listen address")
	fl.String("model", "", "Path to the .gguf model file")
	fl.String("template", "", "Template family (llama, llama3, alpaca, chatml, mistral, phi, gemma); default detected from the model filename")
	fl.String("system", "", "System prompt")
	fl.Int("ctx-size", 0, "Engine context length in tokens")
	fl.Int("batch-size", 0, "Engine decode batch size")
	fl.Int("threads", 0, "Engine threads (default: CPU count)")
	fl.Int("gpu-layers", 0, "Layers to offload to GPU")
	fl.Bool("constrained", false, "Constrained environment: force gpu-layers to 0")
	fl.Float64("temperature", 0, "Sampling temperature")
	fl.Int("max-tokens", 0, "Maximum new tokens per generation")
	fl.Int("max-output-bytes", 0, "Hard cap on emitted output bytes (0 = disabled)")
	fl.String("stop", "", "Comma-separated stop sequences (default: template family markers)")
	fl.Int("history-size", 0, "Session window size used for prompt building")
	fl.Bool("session", true, "Enable rolling session memory")
	fl.Int("max-queue-depth", 0, "Queued generations allowed before 429")
	fl.Duration("max-wait", 0, "Maximum wait for a queue/generation slot")
	fl.String("log-level", "", "Log level: debug|info|warn|error")
	fl.String("log-format", "", "Log format: console|json")
	fl.String("cors-origins", "", "Comma-separated allowed CORS origins (empty disables CORS)")
	return root
}

// resolveConfig merges the optional config file with explicit flag overrides.
func resolveConfig(cmd *cobra.Command, configPath string) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	fl := cmd.Flags()
	if fl.Changed("addr") || cfg.Addr == "" {
		cfg.Addr, _ = fl.GetString("addr")
	}
	if fl.Changed("model") {
		cfg.ModelPath, _ = fl.GetString("model")
	}
	if fl.Changed("template") {
		cfg.Template, _ = fl.GetString("template")
	}
	if fl.Changed("system") {
		cfg.SystemPrompt, _ = fl.GetString("system")
	}
	if fl.Changed("ctx-size") {
		cfg.CtxSize, _ = fl.GetInt("ctx-size")
	}
	if fl.Changed("batch-size") {
		cfg.BatchSize, _ = fl.GetInt("batch-size")
	}
	if fl.Changed("threads") {
		cfg.Threads, _ = fl.GetInt("threads")
	}
	if fl.Changed("gpu-layers") {
		cfg.GPULayers, _ = fl.GetInt("gpu-layers")
	}
	if fl.Changed("constrained") {
		cfg.Constrained, _ = fl.GetBool("constrained")
	}
	if fl.Changed("temperature") {
		cfg.Temperature, _ = fl.GetFloat64("temperature")
	}
	if fl.Changed("max-tokens") {
		cfg.MaxTokens, _ = fl.GetInt("max-tokens")
	}
	if fl.Changed("max-output-bytes") {
		cfg.MaxOutputBytes, _ = fl.GetInt("max-output-bytes")
	}
	if fl.Changed("stop") {
		s, _ := fl.GetString("stop")
		cfg.Stop = splitCSV(s)
	}
	if fl.Changed("history-size") {
		cfg.HistorySize, _ = fl.GetInt("history-size")
	}
	if fl.Changed("session") {
		v, _ := fl.GetBool("session")
		cfg.Session = &v
	}
	if fl.Changed("max-queue-depth") {
		cfg.MaxQueueDepth, _ = fl.GetInt("max-queue-depth")
	}
	if fl.Changed("max-wait") {
		d, _ := fl.GetDuration("max-wait")
		cfg.MaxWaitMS = int(d / time.Millisecond)
	}
	if fl.Changed("log-level") {
		cfg.LogLevel, _ = fl.GetString("log-level")
	}
	if fl.Changed("log-format") {
		cfg.LogFormat, _ = fl.GetString("log-format")
	}
	if fl.Changed("cors-origins") {
		s, _ := fl.GetString("cors-origins")
		cfg.CORSOrigins = splitCSV(s)
		cfg.CORSEnabled = len(cfg.CORSOrigins) > 0
	}
	cfg.Normalize()
	if cfg.ModelPath == "" {
		return cfg, fmt.Errorf("no model configured: set --model or model_path in the config file")
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := buildLogger(cfg.LogLevel, cfg.LogFormat)

	mdl, err := registry.ResolveModel(cfg.ModelPath)
	if err != nil {
		return err
	}
	family := prompt.Family(mdl.Family)
	if cfg.Template != "" {
		family, err = prompt.ParseFamily(cfg.Template)
		if err != nil {
			return err
		}
	}

	pipe := pipeline.NewWithConfig(pipeline.Config{
		Model:          mdl,
		Family:         family,
		SystemPrompt:   cfg.SystemPrompt,
		CtxSize:        cfg.CtxSize,
		BatchSize:      cfg.BatchSize,
		Threads:        cfg.Threads,
		GPULayers:      cfg.GPULayers,
		Temperature:    cfg.Temperature,
		TopP:           cfg.TopP,
		TopK:           cfg.TopK,
		MaxTokens:      cfg.MaxTokens,
		MaxOutputBytes: cfg.MaxOutputBytes,
		Stop:           cfg.Stop,
		HistorySize:    cfg.HistorySize,
		SessionEnabled: cfg.SessionEnabled(),
		MaxQueueDepth:  cfg.MaxQueueDepth,
		MaxWait:        time.Duration(cfg.MaxWaitMS) * time.Millisecond,
		Publisher:      zerologPublisher{log: logger},
	})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
		[]string{"GET", "POST", "OPTIONS"}, []string{"Content-Type", "X-Log-Level"})

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(pipe)}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("model", mdl.ID).Str("template", string(family)).Msg("promptd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	case <-ctx.Done():
	}
	cancelBase()
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := pipe.Close(shutCtx); err != nil {
		logger.Error().Err(err).Msg("pipeline drain error")
	}
	return nil
}

// buildLogger constructs the process logger from config.
func buildLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if format == "json" {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}

// zerologPublisher forwards pipeline lifecycle events to the process logger.
type zerologPublisher struct{ log zerolog.Logger }

func (p zerologPublisher) Publish(e pipeline.Event) {
	ev := p.log.Info().Str("event", e.Name).Str("model", e.ModelID)
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("pipeline")
}
