package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"StockOS/internal/importer"
	"StockOS/internal/model"
	"StockOS/internal/notifier"
	"StockOS/internal/portfolio"
	"StockOS/internal/quote"
)

type importCmd struct {
	noSync bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "imports a broker holdings export" }
func (*importCmd) Usage() string {
	return `stockos import [-no-sync] <file>

Reads a holdings export (tab, comma or semicolon separated, UTF-8 or
GB2312/GBK), matches its headers to holding fields and merges the rows
into the portfolio by security name. Existing holdings with the same name
are replaced. Prices are synced afterwards unless -no-sync is given.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noSync, "no-sync", false, "Do not sync prices after the import.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one file")
		return subcommands.ExitUsageError
	}
	path := f.Arg(0)
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	a, err := openApp(ctx, cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	rep, err := a.sched.Import(filepath.Base(path), raw, cfg.Synonyms())
	if err != nil {
		printImportError(err)
		return subcommands.ExitFailure
	}
	fmt.Println(notifier.FormatImportResult(rep.Merge.Added, rep.Merge.Updated, len(rep.Parse.Warnings), rep.Merge.OverwrittenEdited))

	if !c.noSync {
		fmt.Println(notifier.FormatSyncStatus(a.sched.RunSync(ctx)))
	}
	return subcommands.ExitSuccess
}

func printImportError(err error) {
	var (
		empty  *importer.EmptyInputError
		schema *importer.SchemaRecognitionError
		none   *importer.NoValidRowsError
	)
	switch {
	case errors.As(err, &empty):
		fmt.Fprintf(os.Stderr, "文件似乎为空或只有一行。内容预览: %s\n", empty.Preview)
	case errors.As(err, &schema):
		fmt.Fprintf(os.Stderr, "识别失败！未能找到关键列（如'证券名称'、'成本价'）。\n识别出的表头是: %s\n", strings.Join(schema.Headers, " | "))
	case errors.As(err, &none):
		fmt.Fprintf(os.Stderr, "未能在文件中解析出有效的股票数据 (%d 行)。\n", none.DataRows)
	default:
		fmt.Fprintf(os.Stderr, "导入失败，持仓未保存: %v\n", err)
	}
}

type syncCmd struct{}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "syncs current prices from the quote feed" }
func (*syncCmd) Usage() string {
	return `stockos sync

Requests the latest price of every holding with a Shanghai or Shenzhen
security code and updates its current price.
`
}

func (*syncCmd) SetFlags(*flag.FlagSet) {}

func (*syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openDefaultApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	st := a.sched.RunSync(ctx)
	fmt.Println(notifier.FormatSyncStatus(st))
	if st.State == model.SyncFailed {
		fmt.Fprintf(os.Stderr, "Error: %v\n", st.Err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	holdings bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "prints portfolio totals and profit by industry" }
func (*summaryCmd) Usage() string {
	return `stockos summary [-holdings]

Prints total assets, market value, cash, profit and profit per industry.
With -holdings every holding card is printed as well.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.holdings, "holdings", false, "Also print every holding.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openDefaultApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	fmt.Println(a.sched.Summary())
	if c.holdings {
		fmt.Println(notifier.FormatHoldings(a.store.Holdings(), time.Now()))
	}
	return subcommands.ExitSuccess
}

type watchCmd struct {
	name, reason, signal, budget string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "lists, adds, changes or removes watchlist entries" }
func (*watchCmd) Usage() string {
	return `stockos watch ls
stockos watch add [-reason r] [-signal s] [-budget b] <name>
stockos watch set [-name n] [-reason r] [-signal s] [-budget b] <index>
stockos watch rm <index>

set only changes the fields given as flags.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "New name of the entry (set only).")
	f.StringVar(&c.reason, "reason", "", "Why the security is watched.")
	f.StringVar(&c.signal, "signal", "", "The signal being waited for.")
	f.StringVar(&c.budget, "budget", "", "Budget reserved for the position.")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return subcommands.ExitUsageError
	}
	a, err := openDefaultApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	switch f.Arg(0) {
	case "ls":
	case "add":
		if f.NArg() != 2 {
			return subcommands.ExitUsageError
		}
		err = a.store.AddWatch(model.WatchItem{Name: f.Arg(1), Reason: c.reason, Signal: c.signal, Budget: c.budget})
	case "set":
		if f.NArg() != 2 {
			return subcommands.ExitUsageError
		}
		err = c.set(a, f)
	case "rm":
		if f.NArg() != 2 {
			return subcommands.ExitUsageError
		}
		var idx int
		if idx, err = strconv.Atoi(f.Arg(1)); err == nil {
			err = a.store.RemoveWatch(idx)
		}
	default:
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(notifier.FormatWatchlist(a.store.Watchlist()))
	return subcommands.ExitSuccess
}

func (c *watchCmd) set(a *app, f *flag.FlagSet) error {
	idx, err := strconv.Atoi(f.Arg(1))
	if err != nil {
		return err
	}
	items := a.store.Watchlist()
	if idx < 0 || idx >= len(items) {
		return fmt.Errorf("watchlist entry %d: %w", idx, portfolio.ErrNotFound)
	}
	item := items[idx]
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			item.Name = c.name
		case "reason":
			item.Reason = c.reason
		case "signal":
			item.Signal = c.signal
		case "budget":
			item.Budget = c.budget
		}
	})
	return a.store.UpdateWatch(idx, item)
}

type editCmd struct {
	code, industry, mechanism, mechanismText, rationale, reasoning, target, triggers, cost, price, quantity, buyDate string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edits a holding by name" }
func (*editCmd) Usage() string {
	return `stockos edit [flags] <name>

Changes the fields given as flags and marks the holding as edited. A later
import of the same name replaces it and reports the overwrite.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "Security code; the quote code is derived from it.")
	f.StringVar(&c.industry, "industry", "", "Industry.")
	f.StringVar(&c.mechanism, "mechanism", "", "Mechanism key.")
	f.StringVar(&c.mechanismText, "mechanism-text", "", "Mechanism description.")
	f.StringVar(&c.rationale, "rationale", "", "Rationale.")
	f.StringVar(&c.reasoning, "reasoning", "", "Buy reasoning.")
	f.StringVar(&c.target, "target", "", "Target sell price or condition.")
	f.StringVar(&c.triggers, "triggers", "", "Sell triggers.")
	f.StringVar(&c.cost, "cost", "", "Buy price.")
	f.StringVar(&c.price, "price", "", "Current price.")
	f.StringVar(&c.quantity, "quantity", "", "Quantity.")
	f.StringVar(&c.buyDate, "buy-date", "", "Buy date (YYYY-MM-DD).")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || f.NFlag() == 0 {
		return subcommands.ExitUsageError
	}
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	numbers := make(map[string]decimal.Decimal)
	for name, raw := range map[string]string{"cost": c.cost, "price": c.price, "quantity": c.quantity} {
		if !set[name] {
			continue
		}
		v, ok := importer.ParseNumber(raw)
		if !ok || v.IsNegative() {
			fmt.Fprintf(os.Stderr, "Error: -%s: invalid amount %q\n", name, raw)
			return subcommands.ExitUsageError
		}
		numbers[name] = v
	}
	if set["buy-date"] {
		if _, err := time.Parse(time.DateOnly, c.buyDate); err != nil {
			fmt.Fprintf(os.Stderr, "Error: -buy-date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	a, err := openDefaultApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	name := f.Arg(0)
	err = a.store.Edit(name, func(h *model.Holding) {
		texts := map[string]*string{
			"industry": &h.Industry, "mechanism": &h.Mechanism, "mechanism-text": &h.MechanismText,
			"rationale": &h.Rationale, "reasoning": &h.Reasoning, "target": &h.TargetPrice,
			"triggers": &h.Triggers, "buy-date": &h.BuyDate,
		}
		values := map[string]string{
			"industry": c.industry, "mechanism": c.mechanism, "mechanism-text": c.mechanismText,
			"rationale": c.rationale, "reasoning": c.reasoning, "target": c.target,
			"triggers": c.triggers, "buy-date": c.buyDate,
		}
		for flagName, dst := range texts {
			if set[flagName] {
				*dst = values[flagName]
			}
		}
		if set["code"] {
			h.Code = c.code
			h.QuoteCode = quote.DeriveCode(c.code)
		}
		if v, ok := numbers["cost"]; ok {
			h.BuyPrice = model.Price(v)
		}
		if v, ok := numbers["price"]; ok {
			h.CurrentPrice = model.Price(v)
		}
		if v, ok := numbers["quantity"]; ok {
			h.Quantity = v
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	h, _ := a.store.Holding(name)
	fmt.Println(notifier.FormatHolding(h, time.Now()))
	return subcommands.ExitSuccess
}

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "removes a holding by name" }
func (*rmCmd) Usage() string {
	return `stockos rm <name>
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (*rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return subcommands.ExitUsageError
	}
	a, err := openDefaultApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.store.Remove(f.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("已删除 %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}

type cashCmd struct{}

func (*cashCmd) Name() string     { return "cash" }
func (*cashCmd) Synopsis() string { return "shows or sets the available cash" }
func (*cashCmd) Usage() string {
	return `stockos cash [amount]
`
}

func (*cashCmd) SetFlags(*flag.FlagSet) {}

func (*cashCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		return subcommands.ExitUsageError
	}
	a, err := openDefaultApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if f.NArg() == 1 {
		v, ok := importer.ParseNumber(f.Arg(0))
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: invalid amount %q\n", f.Arg(0))
			return subcommands.ExitUsageError
		}
		if err := a.store.SetCash(v); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	fmt.Printf("可用现金: %s\n", notifier.FormatMoney(model.Price(a.store.Portfolio().AvailableCash)))
	return subcommands.ExitSuccess
}

func openDefaultApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openApp(ctx, cfg, nil)
}
