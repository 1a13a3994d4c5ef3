package comments

import (
	"github.com/angelmondragon/shareit-backend/pkg/types"
)

// CommentDTO is the public view of a comment.
type CommentDTO struct {
	ID         int64           `json:"id"`
	Text       string          `json:"text"`
	AuthorName string          `json:"authorName"`
	Created    types.Timestamp `json:"created"`
}

// CreateCommentInput is the payload for commenting on an item.
type CreateCommentInput struct {
	Text string `json:"text" validate:"notblank"`
}

func (r Row) toDTO() CommentDTO {
	return CommentDTO{
		ID:         r.ID,
		Text:       r.Text,
		AuthorName: r.AuthorName,
		Created:    types.NewTimestamp(r.Created),
	}
}
