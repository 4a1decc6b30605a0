package quote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/simplifiedchinese"

	"StockOS/internal/model"
)

func TestDeriveCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"600519", "sh600519"},
		{"688981", "sh688981"},
		{"000001", "sz000001"},
		{"300750", "sz300750"},
		{"002594", "sz002594"},
		{"00700", ""},
		{"0700.HK", ""},
		{"830799", ""},
		{"430047", ""},
		{"6005190", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DeriveCode(tt.code); got != tt.want {
			t.Errorf("DeriveCode(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

const feedBody = `v_sh600519="1~贵州茅台~600519~1476.00~1470.00~1468.00";
v_sz000001="51~平安银行~000001~11.32~11.20";
v_sz300750="51~宁德时代~300750~--~250.00";
v_pv_none_match="1";
`

func TestParseFeedAndQuotes(t *testing.T) {
	records := ParseFeed(feedBody)
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	codes := []string{"sh600519", "sz000001", "sz300750", "sz002594"}
	quotes, skipped := ParseQuotes(records, codes)
	if skipped != 2 {
		t.Errorf("expected 2 skipped (unparseable + missing), got %d", skipped)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if quotes[0].QuoteCode != "sh600519" || !quotes[0].Price.Equal(decimal.RequireFromString("1476")) {
		t.Errorf("unexpected quote: %+v", quotes[0])
	}
	if quotes[1].QuoteCode != "sz000001" || quotes[1].Price.String() != "11.32" {
		t.Errorf("unexpected quote: %+v", quotes[1])
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		rec  string
		want string
		ok   bool
	}{
		{"1~a~b~12.5", "12.5", true},
		{"1~a~b~ 0.00 ~x", "0", true},
		{"1~a~b", "0", false},
		{"1~a~b~NaN", "0", false},
		{"1~a~b~-3", "0", false},
		{"", "0", false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.rec)
		if ok != tt.ok || !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParsePrice(%q) = %v, %v; want %v, %v", tt.rec, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTencentFetcher(t *testing.T) {
	var gotPath, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("r")
		body, _ := simplifiedchinese.GBK.NewEncoder().String(feedBody)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewTencentFetcher(srv.URL, "", time.Second)
	records, err := f.FetchQuotes(context.Background(), []string{"sh600519", "sz000001"})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/q=sh600519,sz000001" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotToken == "" {
		t.Error("expected cache-busting token")
	}
	if !strings.HasPrefix(records["sh600519"], "1~贵州茅台~") {
		t.Errorf("record not decoded from GBK: %q", records["sh600519"])
	}
}

func TestTencentFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewTencentFetcher(srv.URL, "", time.Second)
	if _, err := f.FetchQuotes(context.Background(), []string{"sh600519"}); err == nil {
		t.Fatal("expected error for 502")
	}
}

// fakeBook is an in-memory Book keyed by quote code.
type fakeBook struct {
	mu     sync.Mutex
	prices map[string]float64
	revs   map[string]uint64
	rev    uint64
}

func newFakeBook(prices map[string]float64) *fakeBook {
	return &fakeBook{prices: prices, revs: map[string]uint64{}}
}

func (b *fakeBook) QuoteCodes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var codes []string
	for c := range b.prices {
		codes = append(codes, c)
	}
	return codes
}

func (b *fakeBook) Revision() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rev
}

func (b *fakeBook) edit(code string, price float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rev++
	b.revs[code] = b.rev
	b.prices[code] = price
}

func (b *fakeBook) ApplyQuotes(quotes []model.Quote, since uint64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, q := range quotes {
		if _, ok := b.prices[q.QuoteCode]; !ok || b.revs[q.QuoteCode] > since {
			continue
		}
		b.prices[q.QuoteCode] = q.Price.InexactFloat64()
		n++
	}
	return n
}

func (b *fakeBook) price(code string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.prices[code]
}

func TestSyncer_MissingCodeLeavesPriceUnchanged(t *testing.T) {
	book := newFakeBook(map[string]float64{"sh600519": 1500, "sz000001": 10})
	fetcher := &MockFetcher{Records: map[string]string{"sh600519": "1~贵州茅台~600519~1476.00"}}
	st := NewSyncer(fetcher, book).Sync(context.Background())

	if st.State != model.SyncSynced {
		t.Fatalf("expected synced, got %s (%v)", st.State, st.Err)
	}
	if st.Requested != 2 || st.Updated != 1 || st.Skipped != 1 {
		t.Errorf("unexpected counts: %+v", st)
	}
	if book.price("sh600519") != 1476 {
		t.Errorf("expected updated price, got %v", book.price("sh600519"))
	}
	if book.price("sz000001") != 10 {
		t.Errorf("expected untouched price, got %v", book.price("sz000001"))
	}
	if st.CycleID == "" || st.At.IsZero() {
		t.Error("expected cycle id and timestamp")
	}
}

func TestSyncer_NothingToSync(t *testing.T) {
	fetcher := &MockFetcher{}
	st := NewSyncer(fetcher, newFakeBook(map[string]float64{})).Sync(context.Background())
	if st.State != model.SyncNothing {
		t.Errorf("expected nothing_to_sync, got %s", st.State)
	}
	if fetcher.Calls != 0 {
		t.Errorf("expected no request, got %d", fetcher.Calls)
	}
}

func TestSyncer_NetworkFailure(t *testing.T) {
	book := newFakeBook(map[string]float64{"sh600519": 1500})
	st := NewSyncer(&MockFetcher{Err: errors.New("dial tcp: timeout")}, book).Sync(context.Background())
	if st.State != model.SyncFailed {
		t.Fatalf("expected failed, got %s", st.State)
	}
	var netErr *SyncNetworkError
	if !errors.As(st.Err, &netErr) || netErr.Codes != 1 {
		t.Errorf("expected SyncNetworkError, got %v", st.Err)
	}
	if book.price("sh600519") != 1500 {
		t.Error("failed sync must not change prices")
	}
}

func TestSyncer_SkipsHoldingsEditedDuringCycle(t *testing.T) {
	book := newFakeBook(map[string]float64{"sh600519": 1500, "sz000001": 10})
	fetcher := &hookFetcher{
		records: map[string]string{"sh600519": "1~a~b~1476", "sz000001": "1~a~b~11"},
		before:  func() { book.edit("sz000001", 12) },
	}
	st := NewSyncer(fetcher, book).Sync(context.Background())
	if st.Updated != 1 {
		t.Errorf("expected 1 update, got %d", st.Updated)
	}
	if book.price("sz000001") != 12 {
		t.Errorf("interim edit overwritten: %v", book.price("sz000001"))
	}
}

// hookFetcher runs before while the request is in flight.
type hookFetcher struct {
	records map[string]string
	before  func()
}

func (h *hookFetcher) Name() string { return "hook" }

func (h *hookFetcher) FetchQuotes(context.Context, []string) (map[string]string, error) {
	h.before()
	return h.records, nil
}

// gateFetcher blocks its first call until that call's context is
// cancelled, then returns stale records anyway.
type gateFetcher struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
}

func (g *gateFetcher) Name() string { return "gate" }

func (g *gateFetcher) FetchQuotes(ctx context.Context, _ []string) (map[string]string, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()
	if n == 1 {
		close(g.started)
		<-ctx.Done()
		return map[string]string{"sh600519": "1~a~b~1000"}, nil
	}
	return map[string]string{"sh600519": "1~a~b~1476"}, nil
}

func TestSyncer_NewCycleSupersedesPending(t *testing.T) {
	book := newFakeBook(map[string]float64{"sh600519": 1500})
	fetcher := &gateFetcher{started: make(chan struct{})}
	s := NewSyncer(fetcher, book)

	first := make(chan model.SyncStatus)
	s.SyncAsync(context.Background(), func(st model.SyncStatus) { first <- st })
	<-fetcher.started

	second := s.Sync(context.Background())
	if second.State != model.SyncSynced {
		t.Fatalf("expected second cycle synced, got %s", second.State)
	}

	select {
	case st := <-first:
		if st.State != model.SyncSuperseded {
			t.Errorf("expected first cycle superseded, got %s", st.State)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle was not cancelled")
	}
	if book.price("sh600519") != 1476 {
		t.Errorf("stale response applied: %v", book.price("sh600519"))
	}
}

func TestSyncer_SyncAsyncDeliversStatus(t *testing.T) {
	book := newFakeBook(map[string]float64{"sz300750": 180})
	fetcher := &MockFetcher{Records: map[string]string{"sz300750": "51~宁德时代~300750~201.50"}}

	done := make(chan model.SyncStatus, 1)
	NewSyncer(fetcher, book).SyncAsync(context.Background(), func(st model.SyncStatus) { done <- st })

	select {
	case st := <-done:
		if st.State != model.SyncSynced || st.Updated != 1 {
			t.Errorf("unexpected status: %+v", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async sync")
	}
	if book.price("sz300750") != 201.5 {
		t.Errorf("expected 201.5, got %v", book.price("sz300750"))
	}
}
