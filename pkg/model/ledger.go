package model

import "time"

// SentNotification is one row of the dedupe ledger. Its existence for a key
// is the sole gate preventing a session notification from being re-sent.
// Rows are created once, never mutated and removed by the retention sweep.
type SentNotification struct {
	Key            string
	Category       Category
	EventKey       string
	SessionType    SessionType
	GpName         string
	MinutesBefore  int
	RecipientCount int
	SuccessCount   int
	FailureCount   int
	CreatedAt      time.Time
}

// LedgerRetention is how long ledger rows are kept before the sweep
// removes them.
const LedgerRetention = 7 * 24 * time.Hour
