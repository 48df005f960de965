package model

// Location is a physical site owned by the user who created it.
type Location struct {
	Base
	Name    string `gorm:"size:256;not null" json:"name"`
	Address string `gorm:"size:512;not null" json:"address"`
	Phone   string `gorm:"size:64;not null" json:"phone"`
	UserID  string `gorm:"index;size:24;not null" json:"userId"`
}
