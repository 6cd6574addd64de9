package models

import "time"

// ScheduledTransaction is a future-dated intent. It does not affect
// the budget unless later realized as an ordinary transaction; it
// exists so the reminder dispatcher can notify the user ahead of the
// scheduled date. Notified transitions false to true at most once and
// is never reset.
type ScheduledTransaction struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Category    Category        `gorm:"not null" json:"category"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Note        string          `json:"note,omitempty"`
	ScheduledAt time.Time       `gorm:"not null;index" json:"scheduled_at"`
	Notified    bool            `gorm:"not null;default:false" json:"notified"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
