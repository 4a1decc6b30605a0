package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"StockOS/internal/notifier"
)

type serveCmd struct {
	syncOnStart bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "runs the periodic sync and the Telegram bot" }
func (*serveCmd) Usage() string {
	return `stockos serve [-sync-on-start]

Runs until interrupted. Prices are synced on the schedule.sync_cron
schedule and a summary is sent on schedule.summary_cron. Telegram
commands (/sync, /summary, /portfolio, /watchlist, /history) are
answered in the configured chat.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.syncOnStart, "sync-on-start", os.Getenv("RUN_ON_START") == "true", "Sync prices once at startup.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log.Println("[INFO] StockOS starting...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := loadConfig()
	if err == nil {
		err = cfg.ValidateTelegram()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	a, err := openApp(ctx, cfg, tn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.sched.RegisterAll(a.cfg.Schedule.SyncCron, a.cfg.Schedule.SummaryCron); err != nil {
		fmt.Fprintf(os.Stderr, "Error: register cron tasks: %v\n", err)
		return subcommands.ExitFailure
	}
	a.sched.Start()
	defer a.sched.Stop()

	go tn.StartPolling(ctx, a.sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if c.syncOnStart {
		log.Println("[INFO] sync-on-start enabled, syncing prices now")
		go a.sched.RunSync(ctx)
	}

	log.Println("[INFO] StockOS is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	return subcommands.ExitSuccess
}
