package bookings

import (
	"github.com/angelmondragon/shareit-backend/pkg/enums"
	"github.com/angelmondragon/shareit-backend/pkg/types"
)

// BookingDTO is the booking view returned by every booking endpoint.
type BookingDTO struct {
	ID     int64               `json:"id"`
	Start  types.Timestamp     `json:"start"`
	End    types.Timestamp     `json:"end"`
	Status enums.BookingStatus `json:"status"`
	Item   ItemRef             `json:"item"`
	Booker UserRef             `json:"booker"`
}

// ItemRef names the booked item.
type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserRef names the booker.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateBookingInput is the payload for reserving an item.
// Start and End are nil when absent from the request. ID is ignored.
type CreateBookingInput struct {
	ID     *int64           `json:"id"`
	ItemID int64            `json:"itemId" validate:"required,gt=0"`
	Start  *types.Timestamp `json:"start"`
	End    *types.Timestamp `json:"end"`
}

func (r Row) toDTO() BookingDTO {
	return BookingDTO{
		ID:     r.ID,
		Start:  types.NewTimestamp(r.Start),
		End:    types.NewTimestamp(r.End),
		Status: r.Status,
		Item:   ItemRef{ID: r.ItemID, Name: r.ItemName},
		Booker: UserRef{ID: r.BookerID, Name: r.BookerName},
	}
}

func toDTOs(rows []Row) []BookingDTO {
	out := make([]BookingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDTO())
	}
	return out
}
