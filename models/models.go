package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account holding virtual cash.
type User struct {
	ID       uint            `gorm:"primaryKey"`
	Username string          `gorm:"uniqueIndex;not null"`
	Hash     string          `gorm:"not null"`
	Cash     decimal.Decimal `gorm:"type:numeric;not null"`
}

// Purchase is one row of the append-only ledger. A sale is recorded as a
// negative-share row; existing rows are never updated.
type Purchase struct {
	TxnID        uint            `gorm:"primaryKey;column:txn_id"`
	Symbol       string          `gorm:"not null;index:idx_purchases_user_symbol,priority:2"`
	Shares       int64           `gorm:"not null"`
	Price        decimal.Decimal `gorm:"type:numeric;not null"`
	TransactedOn time.Time       `gorm:"autoCreateTime"`
	UserID       uint            `gorm:"not null;index:idx_purchases_user_symbol,priority:1"`
}

// Holding is a derived per-symbol position. It is computed from the
// ledger, never stored.
type Holding struct {
	Symbol string
	Shares int64
}
