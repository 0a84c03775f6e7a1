package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/telekom/gt-mail-gateway/pkg/api"
	"github.com/telekom/gt-mail-gateway/pkg/cli"
	"github.com/telekom/gt-mail-gateway/pkg/config"
	"github.com/telekom/gt-mail-gateway/pkg/gt"
	"github.com/telekom/gt-mail-gateway/pkg/mail"
	"github.com/telekom/gt-mail-gateway/pkg/metrics"
	"github.com/telekom/gt-mail-gateway/pkg/version"
)

func main() {
	cliConfig := cli.Parse()

	zl := setupLogger(cliConfig.Debug)
	defer func() { _ = zl.Sync() }()
	log := zl.Sugar()
	log.With("version", version.Version, "gitCommit", version.GitCommit).Info("Starting gt mail gateway")
	cliConfig.Print(log)

	cfg, err := config.Load(cliConfig.ConfigPath)
	if err != nil {
		log.Fatalf("Error loading config for mail gateway: %v", err)
	}
	applyOverrides(&cfg, cliConfig)

	if cliConfig.Debug {
		log.Infof("%#v", cfg)
	}

	fetchTimeout, err := cfg.Gastown.FetchTimeoutDuration()
	if err != nil {
		log.Warn(err)
	}
	sendTimeout, err := cfg.Gastown.SendTimeoutDuration()
	if err != nil {
		log.Warn(err)
	}

	runner := gt.NewExecRunner(gt.SettingsFromConfig(cfg.Gastown))
	settings := runner.Settings()
	log.Infow("gt invocation settings",
		"binary", settings.Binary,
		"townRoot", settings.TownRoot,
		"binDir", settings.BinDir,
		"fetchTimeout", fetchTimeout,
		"sendTimeout", sendTimeout)

	if path, err := runner.LookPath(); err != nil {
		log.Warnw("gt binary not found; inbox requests will return no messages until it is installed", "error", err)
	} else {
		log.Infow("Resolved gt binary", "path", path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cliConfig.WatchConfig {
		watcher := config.NewFileWatcher(cliConfig.ConfigPath, log).
			WithDebounce(cli.ParseReloadDebounce(cliConfig.ReloadDebounce, log)).
			WithReloadCallback(func(newCfg config.Config) {
				applyOverrides(&newCfg, cliConfig)
				runner.Update(gt.SettingsFromConfig(newCfg.Gastown))
				metrics.ConfigReloads.Inc()
				s := runner.Settings()
				log.Infow("Updated gt invocation settings", "binary", s.Binary, "townRoot", s.TownRoot, "binDir", s.BinDir)
			})
		if _, err := watcher.Start(ctx); err != nil {
			log.Warnw("Config file watching disabled", "path", cliConfig.ConfigPath, "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	server := api.NewServer(zl, cfg, cliConfig.Debug, gtBinaryCheck(runner), townRootCheck(runner))
	defer server.Close()

	err = server.RegisterAll([]api.APIController{
		mail.NewController(log,
			mail.NewFetcher(runner, fetchTimeout, log),
			mail.NewCommandSender(runner, sendTimeout, log)),
	})
	if err != nil {
		log.Fatalf("Error registering mail controller: %v", err)
	}

	if err := server.Listen(ctx); err != nil {
		log.Errorw("HTTP server failed", "error", err)
		return
	}
	log.Info("Mail gateway stopped")
}

// applyOverrides applies flag overrides on top of the file configuration.
func applyOverrides(cfg *config.Config, cliConfig *cli.Config) {
	if cliConfig.ListenAddress != "" {
		cfg.Server.ListenAddress = cliConfig.ListenAddress
	}
	if cliConfig.GastownPath != "" {
		cfg.Gastown.Path = cliConfig.GastownPath
	}
}

func gtBinaryCheck(runner *gt.ExecRunner) api.ReadinessCheck {
	return func() error {
		_, err := runner.LookPath()
		return err
	}
}

func townRootCheck(runner *gt.ExecRunner) api.ReadinessCheck {
	return func() error {
		root := runner.Settings().TownRoot
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("gastown path %s: %w", root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("gastown path %s is not a directory", root)
		}
		return nil
	}
}

func setupLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	// Disable automatic stacktraces for non-fatal levels to avoid noisy traces in WARN/INFO logs
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	return logger
}
