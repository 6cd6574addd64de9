package models

// User represents the user model in the database
type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `json:"name"`
	// PhoneNumber is the E.164 destination for SMS reminders.
	// Empty means the user has not opted into reminders yet.
	PhoneNumber      string `json:"phone_number,omitempty"`
	IsActive         bool   `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string `gorm:"size:64" json:"-"`

	Transactions          []Transaction          `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	ScheduledTransactions []ScheduledTransaction `gorm:"foreignKey:UserID" json:"scheduled_transactions,omitempty"`
}
