package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"logkit/pkg/logkit"
	"logkit/pkg/tgnotify"
)

func main() {
	var cfgPath string
	var watch bool
	flag.StringVar(&cfgPath, "config", "", "path to config yaml/json (optional)")
	flag.BoolVar(&watch, "watch", false, "reload logging setup when the config file changes")
	flag.Parse()

	cfg := logkit.Config{
		Level:          "DEBUG",
		Output:         logkit.OutputBoth,
		LogsPath:       "example_logs",
		LogFilename:    "default.log",
		KeywordFilters: []string{"example", "test"},
		AddContext:     true,
		ContextInfo: map[string]string{
			"user_id":    "example_user",
			"session_id": "example_session",
		},
	}
	if cfgPath != "" {
		var err error
		cfg, err = logkit.LoadConfig(cfgPath)
		if err != nil {
			fmt.Println("fatal:", err)
			os.Exit(1)
		}
	}
	cfg.NewNotifier = tgnotify.New

	h, err := logkit.Setup(cfg)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	defer h.Close()
	defer logkit.RecoverPanics()

	log := h.Logger()
	log.Debug().Msg("this is an example debug message")
	log.Info().Msg("this is an example info message")
	log.Warn().Msg("this is an example warning message")
	log.Error().Msg("this is an example error message")
	log.WithLevel(logkit.LevelCritical).Msg("this is an example critical message")

	if watch && cfgPath != "" {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if err := logkit.WatchConfig(ctx, cfgPath, tgnotify.New); err != nil {
			fmt.Println("watch:", err)
		}
	}
}
