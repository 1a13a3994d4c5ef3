package routes

import (
	"fmt"
	"time"

	"github.com/angelmondragon/shareit-backend/internal/bookings"
	"github.com/angelmondragon/shareit-backend/internal/comments"
	"github.com/angelmondragon/shareit-backend/internal/items"
	"github.com/angelmondragon/shareit-backend/internal/requests"
	"github.com/angelmondragon/shareit-backend/internal/users"
	"github.com/angelmondragon/shareit-backend/pkg/db"
	"github.com/angelmondragon/shareit-backend/pkg/logger"
)

// NewServices wires repositories and services over one database client.
// A nil now uses the wall clock in UTC.
func NewServices(client *db.Client, logg *logger.Logger, recorder bookings.Recorder, now func() time.Time) (Services, error) {
	if client == nil {
		return Services{}, fmt.Errorf("database client required")
	}
	conn := client.DB()

	userService, err := users.NewService(users.NewRepository(conn), client, logg)
	if err != nil {
		return Services{}, fmt.Errorf("users service: %w", err)
	}

	commentService, err := comments.NewService(comments.ServiceParams{
		Repo:   comments.NewRepository(conn),
		Tx:     client,
		Logger: logg,
		Now:    now,
	})
	if err != nil {
		return Services{}, fmt.Errorf("comments service: %w", err)
	}

	bookingRepo := bookings.NewRepository(conn)
	itemService, err := items.NewService(items.ServiceParams{
		Repo:     items.NewRepository(conn),
		Tx:       client,
		Bookings: bookingRepo,
		Comments: commentService,
		Logger:   logg,
		Now:      now,
	})
	if err != nil {
		return Services{}, fmt.Errorf("items service: %w", err)
	}

	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:     bookingRepo,
		Tx:       client,
		Recorder: recorder,
		Logger:   logg,
		Now:      now,
	})
	if err != nil {
		return Services{}, fmt.Errorf("bookings service: %w", err)
	}

	requestService, err := requests.NewService(requests.ServiceParams{
		Repo:   requests.NewRepository(conn),
		Tx:     client,
		Logger: logg,
		Now:    now,
	})
	if err != nil {
		return Services{}, fmt.Errorf("requests service: %w", err)
	}

	return Services{
		Users:    userService,
		Items:    itemService,
		Comments: commentService,
		Bookings: bookingService,
		Requests: requestService,
	}, nil
}
