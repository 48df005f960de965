package model

// User is an account that can log in and own locations.
type User struct {
	Base
	Name     *string `gorm:"size:256" json:"name"`
	Email    *string `gorm:"uniqueIndex;size:256" json:"email"`
	Password *string `gorm:"size:256" json:"-"` // bcrypt hash
}
