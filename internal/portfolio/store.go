// Package portfolio owns the holdings collection: it reconciles imports
// into it, applies quote updates and persists it.
package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/gofrs/flock"
	"github.com/shopspring/decimal"

	"StockOS/internal/model"
)

// ErrNotFound is returned when no holding or watchlist entry matches.
var ErrNotFound = errors.New("not found")

// Store is the owner of the portfolio state within a process. Every
// mutation bumps a revision counter; each holding remembers the revision
// of its last change so late quote responses can be told apart from newer
// edits.
//
// A file-backed store treats the state file as the source of truth. The
// file is re-read before every access, and mutations hold an exclusive
// lock on <file>.lock from that read until the new state is written, so
// several processes can share one file without losing each other's
// changes. A mutation is only applied in memory once it has been saved.
type Store struct {
	mu       sync.Mutex
	state    *model.Portfolio
	filePath string
	fileLock *flock.Flock
	rev      uint64
	revs     map[string]uint64
}

// NewStore opens the portfolio stored at filePath. A missing file starts
// an empty portfolio holding initialCash. An empty filePath keeps the
// state in memory only.
func NewStore(filePath string, initialCash decimal.Decimal) (*Store, error) {
	s := NewMemoryStore(model.Portfolio{AvailableCash: initialCash})
	if filePath == "" {
		return s, nil
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	s.filePath = filePath
	s.fileLock = flock.New(filePath + ".lock")
	if err := s.reload(); err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	return s, nil
}

// NewMemoryStore wraps an existing portfolio without persisting it.
func NewMemoryStore(p model.Portfolio) *Store {
	p = p.Clone()
	return &Store{state: &p, revs: make(map[string]uint64)}
}

// Portfolio returns a copy of the whole state.
func (s *Store) Portfolio() model.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Clone()
}

// Holdings returns a copy of the holdings in insertion order.
func (s *Store) Holdings() []model.Holding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.view().Holdings)
}

// Holding returns the holding named name.
func (s *Store) Holding(name string) (model.Holding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.view()
	if i := indexOf(p.Holdings, name); i >= 0 {
		return p.Holdings[i], true
	}
	return model.Holding{}, false
}

// Revision returns the current modification counter.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view()
	return s.rev
}

// QuoteCodes returns the distinct non-empty quote codes in holding order.
func (s *Store) QuoteCodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var codes []string
	for _, h := range s.view().Holdings {
		if h.QuoteCode != "" && !slices.Contains(codes, h.QuoteCode) {
			codes = append(codes, h.QuoteCode)
		}
	}
	return codes
}

// ApplyQuotes sets the current price of every holding whose quote code
// matches, unless the holding changed after revision since. It returns
// the number of holdings updated; nothing is updated if saving fails.
func (s *Store) ApplyQuotes(quotes []model.Quote, since uint64) int {
	if len(quotes) == 0 {
		return 0
	}
	prices := make(map[string]decimal.Decimal, len(quotes))
	for _, q := range quotes {
		prices[q.QuoteCode] = q.Price
	}

	updated := 0
	err := s.update(func(p *model.Portfolio) ([]string, error) {
		updated = 0
		for i := range p.Holdings {
			h := &p.Holdings[i]
			price, ok := prices[h.QuoteCode]
			if !ok || h.QuoteCode == "" {
				continue
			}
			if s.revs[h.Name] > since {
				log.Printf("[INFO] skip stale quote for %q: changed during sync", h.Name)
				continue
			}
			h.CurrentPrice = model.Price(price)
			updated++
		}
		return nil, nil
	})
	if err != nil {
		log.Printf("[ERROR] failed to save portfolio after quote update: %v", err)
		return 0
	}
	return updated
}

// Edit applies a manual change to the named holding and marks it edited.
// The name cannot be changed through Edit.
func (s *Store) Edit(name string, fn func(h *model.Holding)) error {
	return s.update(func(p *model.Portfolio) ([]string, error) {
		i := indexOf(p.Holdings, name)
		if i < 0 {
			return nil, fmt.Errorf("holding %q: %w", name, ErrNotFound)
		}
		h := p.Holdings[i]
		fn(&h)
		h.Name = name
		h.Edited = true
		p.Holdings[i] = h
		return []string{name}, nil
	})
}

// Remove deletes the named holding.
func (s *Store) Remove(name string) error {
	return s.update(func(p *model.Portfolio) ([]string, error) {
		i := indexOf(p.Holdings, name)
		if i < 0 {
			return nil, fmt.Errorf("holding %q: %w", name, ErrNotFound)
		}
		p.Holdings = slices.Delete(p.Holdings, i, i+1)
		return []string{name}, nil
	})
}

// SetCash sets the available cash.
func (s *Store) SetCash(cash decimal.Decimal) error {
	if cash.IsNegative() {
		return fmt.Errorf("cash must not be negative: %s", cash)
	}
	return s.update(func(p *model.Portfolio) ([]string, error) {
		p.AvailableCash = cash
		return nil, nil
	})
}

// Watchlist returns a copy of the watchlist.
func (s *Store) Watchlist() []model.WatchItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.view().Watchlist)
}

// AddWatch appends a watchlist entry.
func (s *Store) AddWatch(item model.WatchItem) error {
	return s.update(func(p *model.Portfolio) ([]string, error) {
		p.Watchlist = append(p.Watchlist, item)
		return nil, nil
	})
}

// UpdateWatch replaces the watchlist entry at index.
func (s *Store) UpdateWatch(index int, item model.WatchItem) error {
	return s.update(func(p *model.Portfolio) ([]string, error) {
		if index < 0 || index >= len(p.Watchlist) {
			return nil, fmt.Errorf("watchlist entry %d: %w", index, ErrNotFound)
		}
		p.Watchlist[index] = item
		return nil, nil
	})
}

// RemoveWatch deletes the watchlist entry at index.
func (s *Store) RemoveWatch(index int) error {
	return s.update(func(p *model.Portfolio) ([]string, error) {
		if index < 0 || index >= len(p.Watchlist) {
			return nil, fmt.Errorf("watchlist entry %d: %w", index, ErrNotFound)
		}
		p.Watchlist = slices.Delete(p.Watchlist, index, index+1)
		return nil, nil
	})
}

// update runs fn on a copy of the freshest state and commits the copy once
// it is saved. fn returns the names of the holdings it changed.
func (s *Store) update(fn func(p *model.Portfolio) ([]string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fileLock != nil {
		if err := s.fileLock.Lock(); err != nil {
			return fmt.Errorf("lock portfolio: %w", err)
		}
		defer s.fileLock.Unlock()
	}
	if err := s.reload(); err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}

	next := s.state.Clone()
	touched, err := fn(&next)
	if err != nil {
		return err
	}
	if s.filePath != "" {
		if err := SaveState(s.filePath, &next); err != nil {
			return fmt.Errorf("save portfolio: %w", err)
		}
	}
	s.state = &next
	for _, name := range touched {
		s.touch(name)
	}
	return nil
}

// view returns the current state, re-read from the file when possible.
func (s *Store) view() *model.Portfolio {
	if err := s.reload(); err != nil {
		log.Printf("[WARN] reload portfolio, using cached state: %v", err)
	}
	return s.state
}

// reload replaces the in-memory state with the state file. Holdings that
// another process added or changed are touched, so quotes requested
// before the change skip them.
func (s *Store) reload() error {
	if s.filePath == "" {
		return nil
	}
	p, err := LoadState(s.filePath, s.state.AvailableCash)
	if err != nil {
		return err
	}
	for _, h := range p.Holdings {
		if i := indexOf(s.state.Holdings, h.Name); i < 0 || !sameHolding(s.state.Holdings[i], h) {
			s.touch(h.Name)
		}
	}
	s.state = p
	return nil
}

func (s *Store) touch(name string) {
	s.rev++
	s.revs[name] = s.rev
}

func indexOf(holdings []model.Holding, name string) int {
	return slices.IndexFunc(holdings, func(h model.Holding) bool { return h.Name == name })
}

func sameHolding(a, b model.Holding) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}
