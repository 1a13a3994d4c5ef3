package requests

import (
	"github.com/angelmondragon/shareit-backend/internal/items"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	"github.com/angelmondragon/shareit-backend/pkg/types"
)

// RequestDTO is an item request together with the items listed in answer to it.
type RequestDTO struct {
	ID          int64           `json:"id"`
	RequesterID int64           `json:"requesterId"`
	Description string          `json:"description"`
	Created     types.Timestamp `json:"created"`
	Items       []items.ItemDTO `json:"items"`
}

// CreateRequestInput is the payload for asking for an unlisted item.
type CreateRequestInput struct {
	Description string `json:"description" validate:"notblank,max=200"`
}

func toDTO(m *models.ItemRequest, answers []models.Item) RequestDTO {
	return RequestDTO{
		ID:          m.ID,
		RequesterID: m.RequestorID,
		Description: m.Description,
		Created:     types.NewTimestamp(m.Created),
		Items:       items.FromModels(answers),
	}
}
