package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/shareit-backend/pkg/db"
	"github.com/angelmondragon/shareit-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shareit-backend/pkg/errors"
	"github.com/angelmondragon/shareit-backend/pkg/logger"
)

const emailConstraint = "uq_users_email"

// Service exposes user registration and profile operations.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	List(ctx context.Context) ([]UserDTO, error)
	Get(ctx context.Context, id int64) (*UserDTO, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo Repository
	tx   db.TxRunner
	logg *logger.Logger
}

// NewService builds a user service with the provided repository.
func NewService(repo Repository, tx db.TxRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	input.Email = strings.TrimSpace(input.Email)
	user := input.toModel()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureEmailFree(ctx, repo, user.Email, 0); err != nil {
			return err
		}
		if err := repo.Create(ctx, user); err != nil {
			return translateWriteErr(err, "create user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "created_user_id", user.ID), "user.created")
	dto := FromModel(user)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := loadUser(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(user)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateUserInput) (*UserDTO, error) {
	var updated *UserDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user, err := loadUser(ctx, repo, id)
		if err != nil {
			return err
		}
		if input.Name != nil {
			user.Name = *input.Name
		}
		if input.Email != nil {
			email := strings.TrimSpace(*input.Email)
			if email != user.Email {
				if err := ensureEmailFree(ctx, repo, email, user.ID); err != nil {
					return err
				}
				user.Email = email
			}
		}
		if err := repo.Save(ctx, user); err != nil {
			return translateWriteErr(err, "update user")
		}
		dto := FromModel(user)
		updated = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeUserNotFound, fmt.Sprintf("user %d not found", id))
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "deleted_user_id", id), "user.deleted")
	return nil
}

func (s *service) Exists(ctx context.Context, id int64) (bool, error) {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user")
	}
	return ok, nil
}

func loadUser(ctx context.Context, repo Repository, id int64) (*models.User, error) {
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUserNotFound, fmt.Sprintf("user %d not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

// ensureEmailFree fails when email belongs to a user other than selfID.
func ensureEmailFree(ctx context.Context, repo Repository, email string, selfID int64) error {
	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup email")
	case existing.ID != selfID:
		return duplicateEmail(email)
	}
	return nil
}

func translateWriteErr(err error, op string) error {
	if db.IsUniqueViolation(err, emailConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeDuplicateEmail, err, "email already registered")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func duplicateEmail(email string) error {
	return pkgerrors.New(pkgerrors.CodeDuplicateEmail, "email already registered").
		WithDetails(map[string]string{"email": email})
}
