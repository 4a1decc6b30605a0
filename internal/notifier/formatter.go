package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"StockOS/internal/model"
)

// Currency is the ISO code used for all amounts.
const Currency = money.CNY

// FormatMoney renders an amount in Currency, rounded to the fen. An
// unknown amount renders as "--".
func FormatMoney(v decimal.NullDecimal) string {
	if !v.Valid {
		return "--"
	}
	return money.New(v.Decimal.Shift(2).Round(0).IntPart(), Currency).Display()
}

// FormatSigned renders a profit with an explicit sign.
func FormatSigned(v decimal.NullDecimal) string {
	if v.Valid && !v.Decimal.IsNegative() {
		return "+" + FormatMoney(v)
	}
	return FormatMoney(v)
}

var hundred = decimal.NewFromInt(100)

// ProfitPercent returns the return on cost in percent. ok is false when
// the buy price is zero or unknown.
func ProfitPercent(h model.Holding) (pct decimal.Decimal, ok bool) {
	if !h.BuyPrice.Valid || !h.CurrentPrice.Valid || h.BuyPrice.Decimal.IsZero() {
		return decimal.Zero, false
	}
	return h.CurrentPrice.Decimal.Sub(h.BuyPrice.Decimal).Div(h.BuyPrice.Decimal).Mul(hundred), true
}

// HoldingDays returns the whole days between buyDate and now, rounded up.
func HoldingDays(buyDate string, now time.Time) int {
	d, err := time.ParseInLocation(time.DateOnly, buyDate, now.Location())
	if err != nil {
		return 0
	}
	diff := now.Sub(d)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// FormatSummary formats the portfolio dashboard.
func FormatSummary(sum model.Summary, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>持仓总览</b> | %s\n\n", now.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("总资产: %s\n", FormatMoney(sum.TotalAssets)))
	b.WriteString(fmt.Sprintf("持仓市值: %s\n", FormatMoney(sum.TotalMarketValue)))
	b.WriteString(fmt.Sprintf("可用现金: %s\n", FormatMoney(model.Price(sum.AvailableCash))))
	b.WriteString(fmt.Sprintf("持仓盈亏: %s\n", FormatSigned(sum.TotalProfit)))

	if len(sum.Industries) > 0 {
		b.WriteString("\n🏭 <b>行业盈亏:</b>\n")
		for _, ip := range sum.Industries {
			b.WriteString(fmt.Sprintf("  %s: %s\n", ip.Industry, FormatSigned(ip.Profit)))
		}
	}
	return b.String()
}

// FormatHolding formats one holding card.
func FormatHolding(h model.Holding, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> %s | 📅 持有 %d 天\n", h.Name, h.Code, HoldingDays(h.BuyDate, now)))
	pct := "--"
	if p, ok := ProfitPercent(h); ok {
		pct = p.StringFixed(2) + "%"
		if !p.IsNegative() {
			pct = "+" + pct
		}
	}
	b.WriteString(fmt.Sprintf("持仓盈亏: %s (%s)\n", FormatSigned(h.Profit()), pct))
	b.WriteString(fmt.Sprintf("买入价: %s | 现价: %s | 数量: %s\n", price(h.BuyPrice), price(h.CurrentPrice), h.Quantity))
	b.WriteString(fmt.Sprintf("核心机制: %s (%s)\n", h.MechanismText, h.Rationale))
	b.WriteString(fmt.Sprintf("买入逻辑: %s\n", h.Reasoning))
	b.WriteString(fmt.Sprintf("预期卖出: %s\n", h.TargetPrice))
	b.WriteString(fmt.Sprintf("触发器: %s\n", h.Triggers))
	return b.String()
}

// FormatHoldings formats every holding card.
func FormatHoldings(holdings []model.Holding, now time.Time) string {
	if len(holdings) == 0 {
		return "暂无持仓"
	}
	cards := make([]string, len(holdings))
	for i, h := range holdings {
		cards[i] = FormatHolding(h, now)
	}
	return strings.Join(cards, "\n")
}

// FormatImportResult reports a successful import.
func FormatImportResult(added, updated, warnings int, overwritten []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("✅ 成功加载 %d 只股票数据 (新增 %d, 更新 %d)\n", added+updated, added, updated))
	if warnings > 0 {
		b.WriteString(fmt.Sprintf("⚠️ %d 个单元格无法解析，已使用默认值\n", warnings))
	}
	if len(overwritten) > 0 {
		b.WriteString(fmt.Sprintf("⚠️ 以下持仓的手动编辑内容已被覆盖: %s\n", strings.Join(overwritten, ", ")))
	}
	b.WriteString("部分自动导入的股票需要您补充核心机制和逻辑。")
	return b.String()
}

// FormatSyncStatus renders a sync status line.
func FormatSyncStatus(st model.SyncStatus) string {
	switch st.State {
	case model.SyncSynced:
		return fmt.Sprintf("同步成功: %s (更新 %d/%d)", st.At.Format("15:04:05"), st.Updated, st.Requested)
	case model.SyncNothing:
		return "无同步代码"
	case model.SyncSuperseded:
		return "同步已被新的请求取代"
	default:
		return "同步失败 (网络联通性问题)"
	}
}

// FormatWatchlist renders the watchlist.
func FormatWatchlist(items []model.WatchItem) string {
	if len(items) == 0 {
		return "关注列表为空"
	}
	var b strings.Builder
	b.WriteString("👀 <b>关注列表</b>\n")
	for i, w := range items {
		b.WriteString(fmt.Sprintf("%d. %s | %s | %s | %s\n", i, w.Name, w.Reason, w.Signal, w.Budget))
	}
	return b.String()
}

func price(v decimal.NullDecimal) string {
	if !v.Valid {
		return "--"
	}
	return v.Decimal.StringFixed(2)
}
