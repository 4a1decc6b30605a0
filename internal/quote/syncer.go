// Package quote derives exchange-qualified quote codes and keeps holding
// prices current from an external quote feed.
package quote

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"StockOS/internal/model"
)

// Book is the holdings store as seen by the syncer.
type Book interface {
	// QuoteCodes returns the distinct non-empty quote codes.
	QuoteCodes() []string
	// Revision returns the current modification counter.
	Revision() uint64
	// ApplyQuotes sets current prices, skipping holdings modified after
	// revision since. It returns the number of holdings updated.
	ApplyQuotes(quotes []model.Quote, since uint64) int
}

// SyncNetworkError wraps a feed transport failure.
type SyncNetworkError struct {
	Codes int
	Err   error
}

func (e *SyncNetworkError) Error() string {
	return fmt.Sprintf("quote feed request for %d code(s) failed: %v", e.Codes, e.Err)
}

func (e *SyncNetworkError) Unwrap() error { return e.Err }

// Syncer runs sync cycles. At most one cycle is outstanding: starting a
// cycle cancels the previous one and discards its result if it arrives
// late.
type Syncer struct {
	Fetcher Fetcher
	Book    Book
	Now     func() time.Time

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewSyncer creates a Syncer.
func NewSyncer(fetcher Fetcher, book Book) *Syncer {
	return &Syncer{Fetcher: fetcher, Book: book, Now: time.Now}
}

// Sync runs one cycle and reports its outcome. It never returns an error:
// transport failures are reported in the status and leave prices untouched.
func (s *Syncer) Sync(ctx context.Context) model.SyncStatus {
	st := model.SyncStatus{CycleID: uuid.NewString()}

	codes := s.Book.QuoteCodes()
	st.Requested = len(codes)
	if len(codes) == 0 {
		log.Printf("[INFO] sync %s: no quote codes to sync", st.CycleID)
		st.State = model.SyncNothing
		st.At = s.Now()
		return st
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	cctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	since := s.Book.Revision()
	s.mu.Unlock()
	defer cancel()

	log.Printf("[INFO] sync %s: requesting %d code(s) from %s", st.CycleID, len(codes), s.Fetcher.Name())
	records, err := s.Fetcher.FetchQuotes(cctx, codes)

	s.mu.Lock()
	defer s.mu.Unlock()
	st.At = s.Now()

	if gen != s.gen {
		log.Printf("[INFO] sync %s: superseded by a newer cycle, result discarded", st.CycleID)
		st.State = model.SyncSuperseded
		return st
	}
	s.cancel = nil

	if err != nil {
		log.Printf("[WARN] sync %s: %v", st.CycleID, err)
		st.State = model.SyncFailed
		st.Err = &SyncNetworkError{Codes: len(codes), Err: err}
		return st
	}

	quotes, skipped := ParseQuotes(records, codes)
	st.Updated = s.Book.ApplyQuotes(quotes, since)
	st.Skipped = skipped
	st.State = model.SyncSynced
	log.Printf("[INFO] sync %s: %d quote(s), %d holding(s) updated, %d skipped",
		st.CycleID, len(quotes), st.Updated, skipped)
	return st
}

// SyncAsync runs Sync in a goroutine and hands the status to done, if set.
func (s *Syncer) SyncAsync(ctx context.Context, done func(model.SyncStatus)) {
	go func() {
		st := s.Sync(ctx)
		if done != nil {
			done(st)
		}
	}()
}
