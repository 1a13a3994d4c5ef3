package requests

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
	"github.com/angelmondragon/shareit-backend/pkg/pagination"
)

// Service exposes the request-for-item operations.
type Service interface {
	Create(ctx context.Context, requestorID int64, input CreateRequestInput) (*RequestDTO, error)
	ListOwn(ctx context.Context, userID int64) ([]RequestDTO, error)
	ListOthers(ctx context.Context, userID int64, params pagination.Params) ([]RequestDTO, error)
	Get(ctx context.Context, userID, requestID int64) (*RequestDTO, error)
}

// ServiceParams wires the request service.
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

// NewService validates the params and builds the request service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("requests repository required")
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

func (s *service) Create(ctx context.Context, requestorID int64, input CreateRequestInput) (*RequestDTO, error) {
	request := &models.ItemRequest{
		Description: input.Description,
		RequestorID: requestorID,
		Created:     s.now(),
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureUser(ctx, repo, requestorID); err != nil {
			return err
		}
		if err := repo.Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "request_id", request.ID), "item_request.created")
	dto := toDTO(request, nil)
	return &dto, nil
}

func (s *service) ListOwn(ctx context.Context, userID int64) ([]RequestDTO, error) {
	if err := ensureUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByRequestor(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list own requests")
	}
	return s.withItems(ctx, rows)
}

func (s *service) ListOthers(ctx context.Context, userID int64, params pagination.Params) ([]RequestDTO, error) {
	rows, err := s.repo.ListOthers(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}
	return s.withItems(ctx, rows)
}

func (s *service) Get(ctx context.Context, userID, requestID int64) (*RequestDTO, error) {
	if err := ensureUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeRequestNotFound, fmt.Sprintf("item request %d not found", requestID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item request")
	}
	answers, err := s.repo.ItemsByRequestIDs(ctx, []int64{request.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request items")
	}
	dto := toDTO(request, answers)
	return &dto, nil
}

// withItems attaches answering items to every request with a single lookup.
func (s *service) withItems(ctx context.Context, rows []models.ItemRequest) ([]RequestDTO, error) {
	out := make([]RequestDTO, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	answers, err := s.repo.ItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request items")
	}
	byRequest := make(map[int64][]models.Item, len(rows))
	for _, item := range answers {
		if item.RequestID != nil {
			byRequest[*item.RequestID] = append(byRequest[*item.RequestID], item)
		}
	}
	for i := range rows {
		out = append(out, toDTO(&rows[i], byRequest[rows[i].ID]))
	}
	return out, nil
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
