package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a latest-price observation for one quote code.
type Quote struct {
	QuoteCode string
	Price     decimal.Decimal
}

// SyncState is the outcome of one sync cycle.
type SyncState string

const (
	SyncSynced     SyncState = "synced"
	SyncNothing    SyncState = "nothing_to_sync"
	SyncFailed     SyncState = "failed"
	SyncSuperseded SyncState = "superseded"
)

// SyncStatus reports a sync cycle to the caller. Err is set only when
// State is SyncFailed.
type SyncStatus struct {
	CycleID   string
	State     SyncState
	At        time.Time
	Requested int
	Updated   int
	Skipped   int
	Err       error
}
