package models

import (
	"time"

	"github.com/angelmondragon/shareit-backend/pkg/enums"
)

// Booking reserves an item for [Start, End].
type Booking struct {
	ID       int64               `gorm:"column:id;primaryKey"`
	Start    time.Time           `gorm:"column:start_date;not null;index:idx_bookings_item_start,priority:2;index:idx_bookings_booker_start,priority:2"`
	End      time.Time           `gorm:"column:end_date;not null"`
	ItemID   int64               `gorm:"column:item_id;not null;index:idx_bookings_item_start,priority:1"`
	BookerID int64               `gorm:"column:booker_id;not null;index:idx_bookings_booker_start,priority:1"`
	Status   enums.BookingStatus `gorm:"column:status;type:text;not null"`
}

func (Booking) TableName() string { return "bookings" }
