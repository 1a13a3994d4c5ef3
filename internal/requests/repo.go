package requests

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/shareit-backend/internal/repo"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	"github.com/angelmondragon/shareit-backend/pkg/pagination"
)

// Repository defines persistence operations for item requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.ItemRequest) error
	FindByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListByRequestor(ctx context.Context, requestorID int64) ([]models.ItemRequest, error)
	ListOthers(ctx context.Context, requestorID int64, params pagination.Params) ([]models.ItemRequest, error)
	ItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]models.Item, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository binds a requests repository to the GORM connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return NewRepository(tx)
}

func (r *repository) Create(ctx context.Context, request *models.ItemRequest) error {
	return r.DB(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var request models.ItemRequest
	if err := r.DB(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByRequestor returns the user's own requests, newest first.
func (r *repository) ListByRequestor(ctx context.Context, requestorID int64) ([]models.ItemRequest, error) {
	var rows []models.ItemRequest
	err := r.DB(ctx).
		Where("requestor_id = ?", requestorID).
		Order("created DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListOthers pages through requests made by anyone except requestorID, newest first.
func (r *repository) ListOthers(ctx context.Context, requestorID int64, params pagination.Params) ([]models.ItemRequest, error) {
	var rows []models.ItemRequest
	err := r.DB(ctx).
		Where("requestor_id <> ?", requestorID).
		Order("created DESC").
		Order("id DESC").
		Scopes(repo.Page(params)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ItemsByRequestIDs loads every item listed in answer to one of the requests.
func (r *repository) ItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]models.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	var rows []models.Item
	err := r.DB(ctx).
		Where("request_id IN ?", requestIDs).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
