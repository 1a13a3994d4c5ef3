package comments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/shareit-backend/pkg/db"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shareit-backend/pkg/errors"
	"github.com/angelmondragon/shareit-backend/pkg/logger"
)

// Service manages post-rental feedback on items.
type Service interface {
	Create(ctx context.Context, itemID, authorID int64, input CreateCommentInput) (*CommentDTO, error)
	ListByItemIDs(ctx context.Context, itemIDs []int64) (map[int64][]CommentDTO, error)
}

// ServiceParams wires the comment service.
type ServiceParams struct {
	Repo   Repository
	Tx     db.TxRunner
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	repo Repository
	tx   db.TxRunner
	logg *logger.Logger
	now  func() time.Time
}

// NewService validates the params and builds the comment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("comments repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo: params.Repo,
		tx:   params.Tx,
		logg: params.Logger,
		now:  params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, itemID, authorID int64, input CreateCommentInput) (*CommentDTO, error) {
	var out *CommentDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindItem(ctx, itemID); err != nil {
			return notFoundOr(err, pkgerrors.CodeItemNotFound, fmt.Sprintf("item %d not found", itemID), "load item")
		}
		author, err := repo.FindUser(ctx, authorID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeUserNotFound, fmt.Sprintf("user %d not found", authorID), "load author")
		}

		now := s.now()
		ok, err := repo.HasCompletedBooking(ctx, itemID, authorID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check completed booking")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeCommentNotAllowed, "user has no completed booking of this item")
		}

		comment := &models.Comment{
			Text:     input.Text,
			ItemID:   itemID,
			AuthorID: authorID,
			Created:  now,
		}
		if err := repo.Create(ctx, comment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
		}
		dto := Row{Comment: *comment, AuthorName: author.Name}.toDTO()
		out = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"item_id": itemID, "comment_id": out.ID})
	s.logg.Info(ctx, "comment.created")
	return out, nil
}

// ListByItemIDs groups comments by item id; items without comments are absent from the map.
func (s *service) ListByItemIDs(ctx context.Context, itemIDs []int64) (map[int64][]CommentDTO, error) {
	rows, err := s.repo.ListByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	grouped := make(map[int64][]CommentDTO, len(itemIDs))
	for _, row := range rows {
		grouped[row.ItemID] = append(grouped[row.ItemID], row.toDTO())
	}
	return grouped, nil
}

func notFoundOr(err error, code pkgerrors.Code, msg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(code, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
