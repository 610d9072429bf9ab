package domain

// User is an account identified by a digits-only phone number.
type User struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"not null"`
	Phone string `gorm:"not null;uniqueIndex"`
}
