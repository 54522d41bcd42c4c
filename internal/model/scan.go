package model

import (
	"database/sql/driver"
	"encoding/json"
)

// StringArray is a custom type for persisting string slices as JSON text
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Preferences holds the user-supplied generation preferences attached to a scan.
type Preferences struct {
	MealType             string      `json:"mealType"`
	ExtraIngredientsText string      `json:"extraIngredientsText"`
	NutritionGoals       StringArray `gorm:"type:text" json:"nutritionGoals"`
	TimeLimit            string      `json:"timeLimit"`
	Difficulty           string      `json:"difficulty"`
	Equipment            StringArray `gorm:"type:text" json:"equipment"`
}

// Scan is the persisted record of one analyzed photo: the encoded image is
// retained so the same photo can be regenerated later.
type Scan struct {
	ID          string      `gorm:"primaryKey;size:64" json:"id"`
	DeviceID    string      `gorm:"index;size:128" json:"deviceId"`
	CreatedMs   int64       `json:"createdMs"`
	UpdatedMs   int64       `json:"updatedMs,omitempty"`
	Preferences Preferences `gorm:"embedded" json:"preferences"`
	ImageBase64 string      `gorm:"type:text" json:"-"`
	RegenCount  int         `json:"regenCount"`
}
