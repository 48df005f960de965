package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Image references a file stored on the media host. ID is the key used for
// remote deletion.
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Value stores the image as a JSON document.
func (i Image) Value() (driver.Value, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads the JSON document written by Value.
func (i *Image) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = Image{}
		return nil
	case []byte:
		return json.Unmarshal(v, i)
	case string:
		return json.Unmarshal([]byte(v), i)
	default:
		return fmt.Errorf("model: cannot scan %T into Image", src)
	}
}

// GormDBDataType picks jsonb on postgres and text elsewhere.
func (Image) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

// Device is a terminal deployed at a location.
type Device struct {
	Base
	SerialNumber string `gorm:"uniqueIndex;size:36;not null" json:"serialNumber"`
	Type         string `gorm:"size:64;not null" json:"type"`
	Status       string `gorm:"size:64;not null" json:"status"`
	Image        *Image `json:"image,omitempty"`
	LocationID   string `gorm:"index;size:24;not null" json:"locationId"`
}
