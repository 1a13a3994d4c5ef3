package items

import (
	"github.com/angelmondragon/shareit-backend/internal/comments"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	"github.com/angelmondragon/shareit-backend/pkg/enums"
	"github.com/angelmondragon/shareit-backend/pkg/types"
)

// ItemDTO is the plain view of a catalog item.
type ItemDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

// BookingSummary is the compact booking shown inside an item view.
type BookingSummary struct {
	ID       int64               `json:"id"`
	Start    types.Timestamp     `json:"start"`
	End      types.Timestamp     `json:"end"`
	ItemID   int64               `json:"itemId"`
	BookerID int64               `json:"bookerId"`
	Status   enums.BookingStatus `json:"status"`
}

// ItemWithBookingsDTO augments an item with its owner-visible bookings and comments.
type ItemWithBookingsDTO struct {
	ItemDTO
	LastBooking *BookingSummary       `json:"lastBooking"`
	NextBooking *BookingSummary       `json:"nextBooking"`
	Comments    []comments.CommentDTO `json:"comments"`
}

// CreateItemInput is the payload for listing a new item. ID is ignored.
type CreateItemInput struct {
	ID          *int64 `json:"id"`
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

// UpdateItemInput carries a partial update; nil fields are left unchanged.
// ID and RequestID are ignored: neither the id nor the answered request can change.
type UpdateItemInput struct {
	ID          *int64  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	RequestID   *int64  `json:"requestId"`
}

// FromModel maps a persisted item into its DTO.
func FromModel(m *models.Item) ItemDTO {
	return ItemDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Available:   m.Available,
		RequestID:   m.RequestID,
	}
}

// FromModels maps a slice of items, preserving order.
func FromModels(rows []models.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

func summarize(b models.Booking) *BookingSummary {
	return &BookingSummary{
		ID:       b.ID,
		Start:    types.NewTimestamp(b.Start),
		End:      types.NewTimestamp(b.End),
		ItemID:   b.ItemID,
		BookerID: b.BookerID,
		Status:   b.Status,
	}
}

func (in CreateItemInput) toModel(ownerID int64) *models.Item {
	available := false
	if in.Available != nil {
		available = *in.Available
	}
	return &models.Item{
		Name:        in.Name,
		Description: in.Description,
		Available:   available,
		OwnerID:     ownerID,
		RequestID:   in.RequestID,
	}
}
