package models

// Item is a shareable object listed by its owner.
type Item struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name;not null"`
	Description string `gorm:"column:description;not null"`
	Available   bool   `gorm:"column:available;not null"`
	OwnerID     int64  `gorm:"column:owner_id;not null;index:idx_items_owner_id"`
	RequestID   *int64 `gorm:"column:request_id;index:idx_items_request_id"`
}

func (Item) TableName() string { return "items" }
