package bookings

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shareit-backend/api/middleware"
	internalbookings "github.com/angelmondragon/shareit-backend/internal/bookings"
	pkgerrors "github.com/angelmondragon/shareit-backend/pkg/errors"
	"github.com/angelmondragon/shareit-backend/pkg/logger"
	"github.com/angelmondragon/shareit-backend/pkg/pagination"
)

type stubBookingService struct {
	create     func(ctx context.Context, bookerID int64, input internalbookings.CreateBookingInput) (*internalbookings.BookingDTO, error)
	decide     func(ctx context.Context, bookingID, ownerID int64, approved bool) (*internalbookings.BookingDTO, error)
	listBooker func(ctx context.Context, userID int64, state string, params pagination.Params) ([]internalbookings.BookingDTO, error)
	listOwner  func(ctx context.Context, userID int64, state string, params pagination.Params) ([]internalbookings.BookingDTO, error)
}

func (s *stubBookingService) Create(ctx context.Context, bookerID int64, input internalbookings.CreateBookingInput) (*internalbookings.BookingDTO, error) {
	return s.create(ctx, bookerID, input)
}

func (s *stubBookingService) Decide(ctx context.Context, bookingID, ownerID int64, approved bool) (*internalbookings.BookingDTO, error) {
	return s.decide(ctx, bookingID, ownerID, approved)
}

func (s *stubBookingService) Get(ctx context.Context, bookingID, userID int64) (*internalbookings.BookingDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeAccessDenied, "booking not visible to user")
}

func (s *stubBookingService) ListForBooker(ctx context.Context, userID int64, state string, params pagination.Params) ([]internalbookings.BookingDTO, error) {
	return s.listBooker(ctx, userID, state, params)
}

func (s *stubBookingService) ListForOwner(ctx context.Context, userID int64, state string, params pagination.Params) ([]internalbookings.BookingDTO, error) {
	return s.listOwner(ctx, userID, state, params)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func asCaller(req *http.Request, userID int64, bookingID string) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID)
	rc := chi.NewRouteContext()
	if bookingID != "" {
		rc.URLParams.Add(bookingIDParam, bookingID)
	}
	return req.WithContext(context.WithValue(ctx, chi.RouteCtxKey, rc))
}

func TestCreateBookingPassesCaller(t *testing.T) {
	var gotBooker int64
	svc := &stubBookingService{create: func(ctx context.Context, bookerID int64, input internalbookings.CreateBookingInput) (*internalbookings.BookingDTO, error) {
		gotBooker = bookerID
		if input.ItemID != 3 || input.Start == nil || input.End == nil {
			t.Fatalf("unexpected input %+v", input)
		}
		return &internalbookings.BookingDTO{ID: 10, Status: "WAITING"}, nil
	}}

	body := `{"itemId":3,"start":"2026-06-01T10:00:00","end":"2026-06-02T10:00:00"}`
	req := asCaller(httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)), 8, "")
	rec := httptest.NewRecorder()
	Create(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotBooker != 8 {
		t.Fatalf("expected booker 8, got %d", gotBooker)
	}
}

func TestCreateBookingWithoutCaller(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"itemId":3}`))
	rec := httptest.NewRecorder()
	Create(&stubBookingService{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDecideRequiresApprovedFlag(t *testing.T) {
	var gotApproved bool
	svc := &stubBookingService{decide: func(ctx context.Context, bookingID, ownerID int64, approved bool) (*internalbookings.BookingDTO, error) {
		gotApproved = approved
		if bookingID != 4 || ownerID != 1 {
			t.Fatalf("unexpected ids %d %d", bookingID, ownerID)
		}
		return &internalbookings.BookingDTO{ID: bookingID, Status: "APPROVED"}, nil
	}}

	req := asCaller(httptest.NewRequest(http.MethodPatch, "/bookings/4?approved=true", nil), 1, "4")
	rec := httptest.NewRecorder()
	Decide(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !gotApproved {
		t.Fatalf("expected approval, got %d %v", rec.Code, gotApproved)
	}

	req = asCaller(httptest.NewRequest(http.MethodPatch, "/bookings/4", nil), 1, "4")
	rec = httptest.NewRecorder()
	Decide(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without approved, got %d", rec.Code)
	}
}

func TestGetBookingHidesFromStrangers(t *testing.T) {
	req := asCaller(httptest.NewRequest(http.MethodGet, "/bookings/4", nil), 99, "4")
	rec := httptest.NewRecorder()
	Get(&stubBookingService{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	if payload.Error != string(pkgerrors.CodeAccessDenied) {
		t.Fatalf("unexpected code %s", payload.Error)
	}
}

func TestListDefaultsAndErrors(t *testing.T) {
	svc := &stubBookingService{
		listBooker: func(ctx context.Context, userID int64, state string, params pagination.Params) ([]internalbookings.BookingDTO, error) {
			if state != "ALL" || params.From != 0 || params.Size != pagination.DefaultSize {
				t.Fatalf("unexpected defaults %s %+v", state, params)
			}
			return []internalbookings.BookingDTO{}, nil
		},
		listOwner: func(ctx context.Context, userID int64, state string, params pagination.Params) ([]internalbookings.BookingDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUnknownState, "Unknown state: "+state)
		},
	}

	req := asCaller(httptest.NewRequest(http.MethodGet, "/bookings", nil), 1, "")
	rec := httptest.NewRecorder()
	List(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %d %s", rec.Code, rec.Body.String())
	}

	req = asCaller(httptest.NewRequest(http.MethodGet, "/bookings/owner?state=UNSUPPORTED", nil), 1, "")
	rec = httptest.NewRecorder()
	ListOwner(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var payload struct {
		Error       string `json:"error"`
		Description string `json:"description"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	if payload.Error != string(pkgerrors.CodeUnknownState) || payload.Description != "Unknown state: UNSUPPORTED" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	req = asCaller(httptest.NewRequest(http.MethodGet, "/bookings?from=-1", nil), 1, "")
	rec = httptest.NewRecorder()
	List(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative from, got %d", rec.Code)
	}
}
