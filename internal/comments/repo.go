package comments

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/shareit-backend/internal/repo"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
)

// Row is a comment joined with its author's name.
type Row struct {
	models.Comment
	AuthorName string `gorm:"column:author_name"`
}

// Repository defines persistence operations for item comments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, comment *models.Comment) error
	ListByItemIDs(ctx context.Context, itemIDs []int64) ([]Row, error)
	HasCompletedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)
	FindItem(ctx context.Context, id int64) (*models.Item, error)
	FindUser(ctx context.Context, id int64) (*models.User, error)
}

type repository struct {
	repo.Base
}

// NewRepository binds a comments repository to the GORM connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return NewRepository(tx)
}

func (r *repository) Create(ctx context.Context, comment *models.Comment) error {
	return r.DB(ctx).Create(comment).Error
}

// ListByItemIDs returns comments of the given items in id order.
func (r *repository) ListByItemIDs(ctx context.Context, itemIDs []int64) ([]Row, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var rows []Row
	err := r.DB(ctx).
		Table("comments").
		Select("comments.*, users.name AS author_name").
		Joins("JOIN users ON users.id = comments.author_id").
		Where("comments.item_id IN ?", itemIDs).
		Order("comments.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// HasCompletedBooking reports whether bookerID has a booking of itemID that ended before now.
func (r *repository) HasCompletedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Booking{}).
		Where("item_id = ? AND booker_id = ? AND end_date < ?", itemID, bookerID, now).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
