package models

import (
	"time"

	"gorm.io/gorm"

	"trade-journal-go/internal/economics"
)

// Status tracks whether a trade is still open or has been exited.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Trade represents a single journaled trade record in the database.
// Charges, GrossPNL and NetPNL are derived values; they are recomputed
// from the price/quantity fields on every lifecycle transition and are
// never written independently.
type Trade struct {
	gorm.Model
	OwnerID    uint                 `gorm:"index;not null" json:"owner_id"`
	OpenedAt   time.Time            `gorm:"index;not null" json:"opened_at"`
	Symbol     string               `gorm:"not null" json:"symbol"`
	Direction  economics.Direction  `gorm:"not null" json:"direction"`
	Instrument economics.Instrument `gorm:"not null;default:EQUITY" json:"instrument"`

	EntryPrice  float64  `json:"entry_price"`
	ExitPrice   *float64 `json:"exit_price,omitempty"`
	StopLoss    float64  `json:"stop_loss"`
	TargetPrice float64  `json:"target_price"`
	Quantity    int64    `json:"quantity"`
	Status      Status   `gorm:"index;not null" json:"status"`

	Charges  economics.ChargeBreakdown `gorm:"embedded;embeddedPrefix:charge_" json:"charges"`
	GrossPNL float64                   `json:"gross_pnl"`
	NetPNL   float64                   `json:"net_pnl"`

	// Annotation fields, used only for filtering and aggregation.
	SetupType       string `json:"setup_type"`
	MarketCondition string `json:"market_condition"`
	PsychologyState string `json:"psychology_state"`
	Notes           string `json:"notes"`

	Attachments []Attachment `gorm:"constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// IsClosed reports whether the trade has been exited.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}
