package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"StockOS/internal/analytics"
	"StockOS/internal/model"
	"StockOS/internal/notifier"
	"StockOS/internal/portfolio"
	"StockOS/internal/quote"
	"StockOS/internal/recorder"
)

// Sender delivers messages to the user.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the periodic sync and summary tasks and answers commands.
type Scheduler struct {
	Cron     *cron.Cron
	Store    *portfolio.Store
	Syncer   *quote.Syncer
	Notifier Sender
	Recorder recorder.Recorder
	Ctx      context.Context
	Now      func() time.Time
}

// NewScheduler creates a new Scheduler. notifier may be nil.
func NewScheduler(ctx context.Context, store *portfolio.Store, syncer *quote.Syncer, notifier Sender, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Store:    store,
		Syncer:   syncer,
		Notifier: notifier,
		Recorder: rec,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// RegisterAll registers the sync and summary tasks.
func (s *Scheduler) RegisterAll(syncCron, summaryCron string) error {
	if _, err := s.Cron.AddFunc(syncCron, s.syncTask); err != nil {
		return fmt.Errorf("register sync task: %w", err)
	}
	if _, err := s.Cron.AddFunc(summaryCron, s.summaryTask); err != nil {
		return fmt.Errorf("register summary task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunSync runs one sync cycle and records it.
func (s *Scheduler) RunSync(ctx context.Context) model.SyncStatus {
	st := s.Syncer.Sync(ctx)
	evt := &recorder.SyncEvent{
		CycleID:   st.CycleID,
		State:     string(st.State),
		At:        st.At,
		Requested: st.Requested,
		Updated:   st.Updated,
		Skipped:   st.Skipped,
	}
	if st.Err != nil {
		evt.Error = st.Err.Error()
	}
	if err := s.Recorder.RecordSync(evt); err != nil {
		log.Printf("[ERROR] record sync: %v", err)
	}
	return st
}

func (s *Scheduler) syncTask() {
	st := s.RunSync(s.Ctx)
	if st.State == model.SyncFailed {
		s.trySend(fmt.Sprintf("❌ %s: %v", notifier.FormatSyncStatus(st), st.Err))
	}
}

func (s *Scheduler) summaryTask() {
	log.Println("[INFO] running summary task")
	s.trySend(s.Summary())
}

// Summary formats the current portfolio aggregates.
func (s *Scheduler) Summary() string {
	return notifier.FormatSummary(analytics.Compute(s.Store.Portfolio()), s.Now())
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "同步行情", "/sync":
		st := s.RunSync(ctx)
		return notifier.FormatSyncStatus(st) + "\n\n" + s.Summary()
	case "查看汇总", "/summary":
		return s.Summary()
	case "查看持仓", "/portfolio":
		return notifier.FormatHoldings(s.Store.Holdings(), s.Now())
	case "关注列表", "/watchlist":
		return notifier.FormatWatchlist(s.Store.Watchlist())
	case "同步记录", "/history":
		return s.history()
	default:
		return "可用命令:\n• 同步行情\n• 查看汇总\n• 查看持仓\n• 关注列表\n• 同步记录"
	}
}

func (s *Scheduler) history() string {
	events, err := s.Recorder.RecentSyncs(5)
	if err != nil {
		log.Printf("[ERROR] read sync history: %v", err)
		return "读取同步记录失败"
	}
	if len(events) == 0 {
		return "暂无同步记录"
	}
	var out string
	for _, e := range events {
		out += fmt.Sprintf("%s %s %d/%d\n", e.At.Format("01-02 15:04"), e.State, e.Updated, e.Requested)
	}
	return out
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Printf("[INFO] %s", text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
