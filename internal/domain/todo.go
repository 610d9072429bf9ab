package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Enhancement status values. A todo starts pending and is moved exactly once
// to done or failed by the background enhancement worker.
const (
	EnhancementPending = "pending"
	EnhancementDone    = "done"
	EnhancementFailed  = "failed"
)

// Todo source values.
const (
	SourceApp         = "app"
	SourceExternalAPI = "external_api"
)

type Todo struct {
	ID                uint   `gorm:"primaryKey"`
	UserID            uint   `gorm:"not null;index"`
	Title             string `gorm:"not null"`
	Description       *string
	IsCompleted       bool `gorm:"not null;default:false"`
	CreatedAt         time.Time
	CompletedAt       *time.Time
	EnhancedTitle     *string
	Steps             StringList `gorm:"type:text"`
	EnhancementStatus string     `gorm:"not null;default:pending"`
	Source            string     `gorm:"not null;default:app"`
}

// StringList stores an ordered list of strings as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
	return json.Unmarshal(data, (*[]string)(l))
}
