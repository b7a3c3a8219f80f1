package model

import (
	"time"

	"github.com/google/uuid"
)

// SyncCursor marks how far the ledger has been scanned for one custodial
// address. CursorValue is the opaque pagination token returned by the ledger
// query API; nil means the start of history.
type SyncCursor struct {
	ID                 uuid.UUID  `db:"id"`
	Network            Network    `db:"network"`
	Address            string     `db:"address"`
	CursorValue        *string    `db:"cursor_value"`
	CheckpointSequence int64      `db:"checkpoint_sequence"`
	PagesProcessed     int64      `db:"pages_processed"`
	Version            int64      `db:"version"`
	LastSyncedAt       *time.Time `db:"last_synced_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// CursorValueOrEmpty is a logging helper.
func (c *SyncCursor) CursorValueOrEmpty() string {
	if c == nil || c.CursorValue == nil {
		return ""
	}
	return *c.CursorValue
}
