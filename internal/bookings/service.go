package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/shareit-backend/pkg/db"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	"github.com/angelmondragon/shareit-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shareit-backend/pkg/errors"
	"github.com/angelmondragon/shareit-backend/pkg/logger"
	"github.com/angelmondragon/shareit-backend/pkg/pagination"
)

// Recorder receives booking lifecycle events; *metrics.BookingMetrics implements it.
type Recorder interface {
	IncCreated()
	IncDecision(status enums.BookingStatus)
}

// Service exposes the booking lifecycle and booking listings.
type Service interface {
	Create(ctx context.Context, bookerID int64, input CreateBookingInput) (*BookingDTO, error)
	Decide(ctx context.Context, bookingID, ownerID int64, approved bool) (*BookingDTO, error)
	Get(ctx context.Context, bookingID, userID int64) (*BookingDTO, error)
	ListForBooker(ctx context.Context, userID int64, state string, params pagination.Params) ([]BookingDTO, error)
	ListForOwner(ctx context.Context, userID int64, state string, params pagination.Params) ([]BookingDTO, error)
}

// ServiceParams wires the booking service.
type ServiceParams struct {
	Repo     Repository
	Tx       db.TxRunner
	Recorder Recorder
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	tx       db.TxRunner
	recorder Recorder
	logg     *logger.Logger
	now      func() time.Time
}

type nopRecorder struct{}

func (nopRecorder) IncCreated() {}

func (nopRecorder) IncDecision(enums.BookingStatus) {}

// NewService validates the params and builds the booking service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Recorder == nil {
		params.Recorder = nopRecorder{}
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
		recorder: params.Recorder,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, bookerID int64, input CreateBookingInput) (*BookingDTO, error) {
	if input.Start == nil || input.End == nil || !input.Start.Before(input.End.Time) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRange, "booking start must be before end")
	}

	var out *BookingDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeItemNotFound, fmt.Sprintf("item %d not found", input.ItemID), "load item")
		}
		booker, err := repo.FindUser(ctx, bookerID)
		if err != nil {
			return notFoundOr(err, pkgerrors.CodeUserNotFound, fmt.Sprintf("user %d not found", bookerID), "load booker")
		}
		if !item.Available {
			return pkgerrors.New(pkgerrors.CodeItemNotAvailable, fmt.Sprintf("item %d is not available", item.ID))
		}
		if item.OwnerID == bookerID {
			return pkgerrors.New(pkgerrors.CodeSelfBooking, "owner cannot book own item")
		}

		booking := &models.Booking{
			Start:    input.Start.UTC(),
			End:      input.End.UTC(),
			ItemID:   item.ID,
			BookerID: booker.ID,
			Status:   enums.BookingStatusWaiting,
		}
		if err := repo.Create(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
		}
		dto := Row{Booking: *booking, ItemName: item.Name, OwnerID: item.OwnerID, BookerName: booker.Name}.toDTO()
		out = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.IncCreated()
	ctx = s.logg.WithFields(ctx, map[string]any{"booking_id": out.ID, "item_id": out.Item.ID})
	s.logg.Info(ctx, "booking.created")
	return out, nil
}

func (s *service) Decide(ctx context.Context, bookingID, ownerID int64, approved bool) (*BookingDTO, error) {
	target := enums.Decide(approved)

	var out *BookingDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureUser(ctx, repo, ownerID); err != nil {
			return err
		}
		row, err := loadBooking(ctx, repo, bookingID)
		if err != nil {
			return err
		}
		if row.Status != enums.BookingStatusWaiting {
			return alreadyFinal(row.Status)
		}
		if row.OwnerID != ownerID {
			return pkgerrors.New(pkgerrors.CodeNotItemOwner, fmt.Sprintf("user %d does not own the booked item", ownerID))
		}

		updated, err := repo.UpdateStatusIfWaiting(ctx, row.ID, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
		}
		if !updated {
			return alreadyFinal(row.Status)
		}
		row.Status = target
		dto := row.toDTO()
		out = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.IncDecision(target)
	ctx = s.logg.WithFields(ctx, map[string]any{"booking_id": bookingID, "status": target.String()})
	s.logg.Info(ctx, "booking.decided")
	return out, nil
}

func (s *service) Get(ctx context.Context, bookingID, userID int64) (*BookingDTO, error) {
	row, err := loadBooking(ctx, s.repo, bookingID)
	if err != nil {
		return nil, err
	}
	if row.OwnerID != userID && row.BookerID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeAccessDenied, fmt.Sprintf("user %d cannot view booking %d", userID, bookingID))
	}
	dto := row.toDTO()
	return &dto, nil
}

func (s *service) ListForBooker(ctx context.Context, userID int64, state string, params pagination.Params) ([]BookingDTO, error) {
	return s.list(ctx, userID, state, params, s.repo.ListForBooker)
}

func (s *service) ListForOwner(ctx context.Context, userID int64, state string, params pagination.Params) ([]BookingDTO, error) {
	return s.list(ctx, userID, state, params, s.repo.ListForOwner)
}

type listFunc func(ctx context.Context, userID int64, state enums.BookingState, now time.Time, params pagination.Params) ([]Row, error)

// list parses the state before touching the store.
func (s *service) list(ctx context.Context, userID int64, raw string, params pagination.Params, fetch listFunc) ([]BookingDTO, error) {
	state, err := enums.ParseBookingState(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownState, "Unknown state: "+raw)
	}
	if err := ensureUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	rows, err := fetch(ctx, userID, state, s.now(), params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return toDTOs(rows), nil
}

func ensureUser(ctx context.Context, repo Repository, id int64) error {
	ok, err := repo.UserExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUserNotFound, fmt.Sprintf("user %d not found", id))
	}
	return nil
}

func loadBooking(ctx context.Context, repo Repository, id int64) (*Row, error) {
	row, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, pkgerrors.CodeBookingNotFound, fmt.Sprintf("booking %d not found", id), "load booking")
	}
	return row, nil
}

func alreadyFinal(status enums.BookingStatus) error {
	return pkgerrors.New(pkgerrors.CodeStatusAlreadyFinal, "booking status already decided").
		WithDetails(map[string]string{"status": status.String()})
}

func notFoundOr(err error, code pkgerrors.Code, msg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(code, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
