package items

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/shareit-backend/internal/comments"
	"github.com/angelmondragon/shareit-backend/pkg/db"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shareit-backend/pkg/errors"
	"github.com/angelmondragon/shareit-backend/pkg/logger"
	"github.com/angelmondragon/shareit-backend/pkg/pagination"
)

// BookingLookup fetches APPROVED bookings of items owned by ownerID, ordered by start DESC.
type BookingLookup interface {
	ListLastApproved(ctx context.Context, itemIDs []int64, ownerID int64, now time.Time) ([]models.Booking, error)
	ListNextApproved(ctx context.Context, itemIDs []int64, ownerID int64, now time.Time) ([]models.Booking, error)
}

// CommentLookup groups comments by item id.
type CommentLookup interface {
	ListByItemIDs(ctx context.Context, itemIDs []int64) (map[int64][]comments.CommentDTO, error)
}

// Service exposes catalog operations.
type Service interface {
	Create(ctx context.Context, ownerID int64, input CreateItemInput) (*ItemDTO, error)
	Update(ctx context.Context, itemID, ownerID int64, input UpdateItemInput) (*ItemDTO, error)
	Get(ctx context.Context, itemID, userID int64) (*ItemWithBookingsDTO, error)
	ListByOwner(ctx context.Context, ownerID int64, params pagination.Params) ([]ItemWithBookingsDTO, error)
	Search(ctx context.Context, text string, params pagination.Params) ([]ItemDTO, error)
}

// ServiceParams wires the catalog service.
type ServiceParams struct {
	Repo     Repository
	Tx       db.TxRunner
	Bookings BookingLookup
	Comments CommentLookup
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	tx       db.TxRunner
	bookings BookingLookup
	comments CommentLookup
	logg     *logger.Logger
	now      func() time.Time
}

// NewService validates the params and builds the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking lookup required")
	}
	if params.Comments == nil {
		return nil, fmt.Errorf("comment lookup required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		bookings: params.Bookings,
		comments: params.Comments,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, ownerID int64, input CreateItemInput) (*ItemDTO, error) {
	item := input.toModel(ownerID)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.UserExists(ctx, ownerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check owner")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeUserNotFound, fmt.Sprintf("user %d not found", ownerID))
		}
		if input.RequestID != nil {
			ok, err := repo.RequestExists(ctx, *input.RequestID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check item request")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeRequestNotFound, fmt.Sprintf("item request %d not found", *input.RequestID))
			}
		}
		if err := repo.Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "item_id", item.ID), "item.created")
	dto := FromModel(item)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, itemID, ownerID int64, input UpdateItemInput) (*ItemDTO, error) {
	var out *ItemDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := loadItem(ctx, repo, itemID)
		if err != nil {
			return err
		}
		if item.OwnerID != ownerID {
			return pkgerrors.New(pkgerrors.CodeNotItemOwner, fmt.Sprintf("user %d does not own item %d", ownerID, itemID))
		}
		if input.Name != nil {
			item.Name = *input.Name
		}
		if input.Description != nil {
			item.Description = *input.Description
		}
		if input.Available != nil {
			item.Available = *input.Available
		}
		if err := repo.Save(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
		}
		dto := FromModel(item)
		out = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, itemID, userID int64) (*ItemWithBookingsDTO, error) {
	item, err := loadItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	views, err := s.augment(ctx, userID, []models.Item{*item})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID int64, params pagination.Params) ([]ItemWithBookingsDTO, error) {
	rows, err := s.repo.ListByOwner(ctx, ownerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner items")
	}
	return s.augment(ctx, ownerID, rows)
}

// Search returns an empty page for blank text without touching the store.
func (s *service) Search(ctx context.Context, text string, params pagination.Params) ([]ItemDTO, error) {
	if strings.TrimSpace(text) == "" {
		return []ItemDTO{}, nil
	}
	rows, err := s.repo.Search(ctx, text, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search items")
	}
	return FromModels(rows), nil
}

// augment attaches last/next bookings and comments using one query each.
// Bookings are only visible when userID owns the item.
func (s *service) augment(ctx context.Context, userID int64, rows []models.Item) ([]ItemWithBookingsDTO, error) {
	out := make([]ItemWithBookingsDTO, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}

	now := s.now()
	lastRows, err := s.bookings.ListLastApproved(ctx, ids, userID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last bookings")
	}
	nextRows, err := s.bookings.ListNextApproved(ctx, ids, userID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load next bookings")
	}
	commentsByItem, err := s.comments.ListByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	last := make(map[int64]*BookingSummary, len(lastRows))
	for _, b := range lastRows {
		// rows arrive start DESC: keep the first one seen
		if _, seen := last[b.ItemID]; !seen {
			last[b.ItemID] = summarize(b)
		}
	}
	next := make(map[int64]*BookingSummary, len(nextRows))
	for _, b := range nextRows {
		// rows arrive start DESC: the last one seen wins, which is the earliest future start
		next[b.ItemID] = summarize(b)
	}

	for i := range rows {
		view := ItemWithBookingsDTO{
			ItemDTO:     FromModel(&rows[i]),
			LastBooking: last[rows[i].ID],
			NextBooking: next[rows[i].ID],
			Comments:    commentsByItem[rows[i].ID],
		}
		if view.Comments == nil {
			view.Comments = []comments.CommentDTO{}
		}
		out = append(out, view)
	}
	return out, nil
}

func loadItem(ctx context.Context, repo Repository, id int64) (*models.Item, error) {
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeItemNotFound, fmt.Sprintf("item %d not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}
