package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantgrove/densetrack/internal/analyze"
	"github.com/quantgrove/densetrack/internal/api/binance"
	"github.com/quantgrove/densetrack/internal/api/openai"
	"github.com/quantgrove/densetrack/internal/config"
	"github.com/quantgrove/densetrack/internal/notifier"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfgPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log.Logger = log.Logger.Level(lvl)
	}

	source := binance.NewClient(binance.ClientOptions{
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	scanner := analyze.NewScanner(source, analyze.ScannerOptions{
		TimeframeShort: cfg.TimeframeShort,
		TimeframeLong:  cfg.TimeframeLong,
		CandleLimit:    cfg.CandleLimit,
		Pause:          cfg.Pause(),
	})

	var tg *notifier.TelegramNotifier
	if cfg.TelegramBotToken != "" {
		tg, err = notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("init telegram notifier failed")
		}
		log.Info().Msg("telegram delivery enabled")
	}

	var narrator *openai.Client
	if cfg.Narrate && cfg.OpenAIAPIKey != "" {
		narrator = openai.NewClient(cfg.OpenAIAPIKey)
		log.Info().Msg("setup narration enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One pass at a time. A tick that lands while the previous pass is
	// still running is skipped, not queued.
	var scanning atomic.Bool
	runScan := func() {
		if !scanning.CompareAndSwap(false, true) {
			log.Warn().Msg("previous scan still running, skipping this tick")
			return
		}
		defer scanning.Store(false)

		started := time.Now()
		setups := scanner.ScanUniverse(ctx, cfg.Symbols, func(done, total int) {
			log.Info().Int("done", done).Int("total", total).Msg("scan progress")
		})

		log.Info().Int("symbols", len(cfg.Symbols)).Int("setups", len(setups)).
			Dur("elapsed", time.Since(started)).Msg("scan complete")
		for _, s := range setups {
			log.Info().Str("symbol", s.Symbol).Str("timeframe", s.Timeframe).
				Str("signal", string(s.Signal)).Float64("price", s.Price).
				Float64("stop_loss", s.StopLoss).Float64("take_profit", s.TakeProfit).
				Str("reason", s.Reason).Msg("setup")
		}

		if tg != nil {
			if err := tg.SendScanReport(setups); err != nil {
				log.Error().Err(err).Msg("telegram delivery failed")
			}
		}
		if narrator != nil && len(setups) > 0 {
			narrative := narrator.DescribeSetup(ctx, setups[0])
			log.Info().Str("symbol", setups[0].Symbol).Msg(narrative)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc("@every "+cfg.ScanInterval, runScan); err != nil {
		log.Fatal().Err(err).Msg("register scan job failed")
	}
	c.Start()
	defer c.Stop()

	log.Info().Strs("symbols", cfg.Symbols).Str("interval", cfg.ScanInterval).Msg("densetrack running")
	go runScan()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
}
