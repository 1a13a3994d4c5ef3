package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	"github.com/angelmondragon/shareit-backend/pkg/pagination"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Conn exposes the raw connection so repositories can rebind to a transaction.
func (b Base) Conn() *gorm.DB {
	return b.db
}

// UserExists reports whether a user row with the id is stored.
func (b Base) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := b.DB(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindUser loads a user by id; gorm.ErrRecordNotFound when absent.
func (b Base) FindUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := b.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindItem loads an item by id; gorm.ErrRecordNotFound when absent.
func (b Base) FindItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := b.DB(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Page is a GORM scope applying offset pagination.
func Page(p pagination.Params) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Offset(p.Offset()).Limit(p.Limit())
	}
}
