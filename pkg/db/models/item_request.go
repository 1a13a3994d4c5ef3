package models

import "time"

// ItemRequest records a user's interest in an item that is not listed yet.
type ItemRequest struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Description string    `gorm:"column:description;not null"`
	RequestorID int64     `gorm:"column:requestor_id;not null;index:idx_item_requests_requestor"`
	Created     time.Time `gorm:"column:created;not null"`
}

func (ItemRequest) TableName() string { return "item_requests" }
