package items

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/shareit-backend/internal/repo"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	"github.com/angelmondragon/shareit-backend/pkg/pagination"
)

// Repository defines persistence operations for the item catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id int64) (*models.Item, error)
	Save(ctx context.Context, item *models.Item) error
	ListByOwner(ctx context.Context, ownerID int64, params pagination.Params) ([]models.Item, error)
	Search(ctx context.Context, text string, params pagination.Params) ([]models.Item, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	RequestExists(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository binds an item repository to the GORM connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return NewRepository(tx)
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	return r.DB(ctx).Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	return r.FindItem(ctx, id)
}

func (r *repository) Save(ctx context.Context, item *models.Item) error {
	return r.DB(ctx).Save(item).Error
}

// ListByOwner returns the owner's items ordered by id.
func (r *repository) ListByOwner(ctx context.Context, ownerID int64, params pagination.Params) ([]models.Item, error) {
	var rows []models.Item
	err := r.DB(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Scopes(repo.Page(params)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Search matches available items whose name or description contains text, ignoring case.
func (r *repository) Search(ctx context.Context, text string, params pagination.Params) ([]models.Item, error) {
	pattern := "%" + strings.ToLower(text) + "%"
	var rows []models.Item
	err := r.DB(ctx).
		Where("available = ?", true).
		Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern).
		Order("id ASC").
		Scopes(repo.Page(params)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) RequestExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.ItemRequest{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
