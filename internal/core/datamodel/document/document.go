package document

import "time"

// Collection is the row holding one JSON document per collection.
type Collection struct {
	Name      string    `gorm:"column:collection;primaryKey;size:64"`
	Data      string    `gorm:"column:data;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Collection) TableName() string {
	return "collections"
}
