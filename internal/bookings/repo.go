package bookings

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/shareit-backend/internal/repo"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	"github.com/angelmondragon/shareit-backend/pkg/enums"
	"github.com/angelmondragon/shareit-backend/pkg/pagination"
)

// Row is a booking joined with the item and booker fields its view needs.
type Row struct {
	models.Booking
	ItemName   string `gorm:"column:item_name"`
	OwnerID    int64  `gorm:"column:owner_id"`
	BookerName string `gorm:"column:booker_name"`
}

// Repository defines persistence operations for bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id int64) (*Row, error)
	UpdateStatusIfWaiting(ctx context.Context, id int64, status enums.BookingStatus) (bool, error)
	ListForBooker(ctx context.Context, bookerID int64, state enums.BookingState, now time.Time, params pagination.Params) ([]Row, error)
	ListForOwner(ctx context.Context, ownerID int64, state enums.BookingState, now time.Time, params pagination.Params) ([]Row, error)
	ListLastApproved(ctx context.Context, itemIDs []int64, ownerID int64, now time.Time) ([]models.Booking, error)
	ListNextApproved(ctx context.Context, itemIDs []int64, ownerID int64, now time.Time) ([]models.Booking, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	FindUser(ctx context.Context, id int64) (*models.User, error)
	FindItem(ctx context.Context, id int64) (*models.Item, error)
}

type repository struct {
	repo.Base
}

// NewRepository binds a bookings repository to the GORM connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return NewRepository(tx)
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	return r.DB(ctx).Create(booking).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Row, error) {
	var row Row
	res := r.rows(ctx).Where("bookings.id = ?", id).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// UpdateStatusIfWaiting moves a WAITING booking to status; false means it was no longer WAITING.
func (r *repository) UpdateStatusIfWaiting(ctx context.Context, id int64, status enums.BookingStatus) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, enums.BookingStatusWaiting).
		UpdateColumn("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListForBooker(ctx context.Context, bookerID int64, state enums.BookingState, now time.Time, params pagination.Params) ([]Row, error) {
	return r.list(r.rows(ctx).Where("bookings.booker_id = ?", bookerID), state, now, params)
}

func (r *repository) ListForOwner(ctx context.Context, ownerID int64, state enums.BookingState, now time.Time, params pagination.Params) ([]Row, error) {
	return r.list(r.rows(ctx).Where("items.owner_id = ?", ownerID), state, now, params)
}

// ListLastApproved returns APPROVED bookings that started at or before now, start DESC.
func (r *repository) ListLastApproved(ctx context.Context, itemIDs []int64, ownerID int64, now time.Time) ([]models.Booking, error) {
	return r.approved(ctx, itemIDs, ownerID, "bookings.start_date <= ?", now)
}

// ListNextApproved returns APPROVED bookings starting after now, start DESC.
func (r *repository) ListNextApproved(ctx context.Context, itemIDs []int64, ownerID int64, now time.Time) ([]models.Booking, error) {
	return r.approved(ctx, itemIDs, ownerID, "bookings.start_date > ?", now)
}

func (r *repository) approved(ctx context.Context, itemIDs []int64, ownerID int64, startCond string, now time.Time) ([]models.Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var rows []models.Booking
	err := r.DB(ctx).
		Model(&models.Booking{}).
		Select("bookings.*").
		Joins("JOIN items ON items.id = bookings.item_id").
		Where("bookings.item_id IN ?", itemIDs).
		Where("bookings.status = ?", enums.BookingStatusApproved).
		Where("items.owner_id = ?", ownerID).
		Where(startCond, now).
		Order("bookings.start_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) rows(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Table("bookings").
		Select("bookings.*, items.name AS item_name, items.owner_id AS owner_id, users.name AS booker_name").
		Joins("JOIN items ON items.id = bookings.item_id").
		Joins("JOIN users ON users.id = bookings.booker_id")
}

func (r *repository) list(q *gorm.DB, state enums.BookingState, now time.Time, params pagination.Params) ([]Row, error) {
	var rows []Row
	err := q.
		Scopes(stateFilter(state, now)).
		Order("bookings.start_date DESC").
		Scopes(repo.Page(params)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// stateFilter narrows a booking query to one listing state.
func stateFilter(state enums.BookingState, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		switch state {
		case enums.BookingStateCurrent:
			return q.Where("bookings.start_date <= ? AND bookings.end_date >= ?", now, now)
		case enums.BookingStatePast:
			return q.Where("bookings.end_date < ?", now)
		case enums.BookingStateFuture:
			return q.Where("bookings.start_date > ?", now)
		case enums.BookingStateWaiting, enums.BookingStateRejected:
			status, _ := state.Status()
			return q.Where("bookings.status = ?", status)
		default:
			return q
		}
	}
}
