package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"StockOS/internal/model"
)

func amount(s string) decimal.NullDecimal { return model.Price(decimal.RequireFromString(s)) }

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(amount("1234.5")); !strings.Contains(got, "1,234.50") {
		t.Errorf("expected grouped amount, got %q", got)
	}
	if got := FormatMoney(amount("0.125")); !strings.Contains(got, "0.13") {
		t.Errorf("expected rounding to the fen, got %q", got)
	}
	if got := FormatMoney(decimal.NullDecimal{}); got != "--" {
		t.Errorf("expected -- for unknown amount, got %q", got)
	}
	if got := FormatSigned(amount("10")); !strings.HasPrefix(got, "+") {
		t.Errorf("expected explicit plus sign, got %q", got)
	}
	if got := FormatSigned(decimal.NullDecimal{}); got != "--" {
		t.Errorf("expected -- for unknown profit, got %q", got)
	}
}

func TestProfitPercent_ZeroBuyPrice(t *testing.T) {
	if _, ok := ProfitPercent(model.Holding{BuyPrice: amount("0"), CurrentPrice: amount("10")}); ok {
		t.Error("zero buy price must not yield a percentage")
	}
	if _, ok := ProfitPercent(model.Holding{CurrentPrice: amount("10")}); ok {
		t.Error("unknown buy price must not yield a percentage")
	}
	pct, ok := ProfitPercent(model.Holding{BuyPrice: amount("320.5"), CurrentPrice: amount("412")})
	if !ok || pct.StringFixed(2) != "28.55" {
		t.Errorf("unexpected percentage %v", pct)
	}
}

func TestFormatHolding(t *testing.T) {
	h := model.Holding{
		Name: "美团", Code: "03690", BuyDate: "2025-03-10",
		BuyPrice: amount("150"), CurrentPrice: amount("120"), Quantity: decimal.RequireFromString("300"),
	}
	out := FormatHolding(h, time.Date(2025, 3, 14, 12, 0, 0, 0, time.Local))
	for _, want := range []string{"-9,000.00", "(-20.00%)", "买入价: 150.00", "数量: 300", "持有 5 天"} {
		if !strings.Contains(out, want) {
			t.Errorf("holding card missing %q:\n%s", want, out)
		}
	}
}

func TestHoldingDays(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.Local)
	if got := HoldingDays("2024-03-15", now); got != 6 {
		t.Errorf("expected 6 days (rounded up), got %d", got)
	}
	if got := HoldingDays("bogus", now); got != 0 {
		t.Errorf("expected 0 for bad date, got %d", got)
	}
}

func TestFormatSummary(t *testing.T) {
	sum := model.Summary{
		TotalAssets:      amount("662000"),
		TotalMarketValue: amount("412000"),
		AvailableCash:    decimal.RequireFromString("250000"),
		TotalProfit:      amount("91500"),
		Industries:       []model.IndustryProfit{{Industry: "互联网服务", Profit: amount("91500")}, {Industry: "白酒", Profit: amount("-2400")}},
	}
	out := FormatSummary(sum, time.Date(2025, 3, 14, 15, 30, 0, 0, time.Local))
	for _, want := range []string{"2025-03-14 15:30", "662,000.00", "互联网服务: +", "白酒: -2,400.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSyncStatus(t *testing.T) {
	at := time.Date(2025, 3, 14, 10, 5, 0, 0, time.Local)
	if got := FormatSyncStatus(model.SyncStatus{State: model.SyncSynced, At: at, Updated: 2, Requested: 3}); got != "同步成功: 10:05:00 (更新 2/3)" {
		t.Errorf("unexpected status %q", got)
	}
	if got := FormatSyncStatus(model.SyncStatus{State: model.SyncFailed}); !strings.Contains(got, "同步失败") {
		t.Errorf("unexpected status %q", got)
	}
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken/sendMessage" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "")
	tn.APIURL = srv.URL
	if err := tn.Send(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	if got["chat_id"] != "42" || got["text"] != "hello" || got["parse_mode"] != "HTML" {
		t.Errorf("unexpected payload: %v", got)
	}
}

func TestTelegramNotifier_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "")
	tn.APIURL = srv.URL
	if err := tn.SendWithRetry(context.Background(), "hello", 0); err == nil {
		t.Fatal("expected error")
	}
}
