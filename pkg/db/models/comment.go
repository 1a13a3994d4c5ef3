package models

import "time"

type Comment struct {
	ID       int64     `gorm:"column:id;primaryKey"`
	Text     string    `gorm:"column:text;not null"`
	ItemID   int64     `gorm:"column:item_id;not null;index:idx_comments_item_id"`
	AuthorID int64     `gorm:"column:author_id;not null"`
	Created  time.Time `gorm:"column:created;not null"`
}

func (Comment) TableName() string { return "comments" }
