package models

import "gorm.io/gorm"

// Attachment is a screenshot taken at entry or exit. The bytes live on
// disk under Path; the row only records ownership and kind.
type Attachment struct {
	gorm.Model
	TradeID uint   `gorm:"index;not null" json:"trade_id"`
	Kind    string `gorm:"not null" json:"kind"` // "entry" or "exit"
	Path    string `gorm:"not null" json:"path"`
}
