package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ema-residences/rental-system/internal/api/middleware"
	"github.com/ema-residences/rental-system/internal/core/domain"
	"github.com/ema-residences/rental-system/internal/core/ports"
)

type stubReservationService struct {
	createFn     func(ctx context.Context, in ports.CreateReservationInput) (*ports.ReservationView, error)
	transitionFn func(ctx context.Context, id string, next domain.ReservationStatus, requester domain.Identity) (*ports.ReservationView, error)
	statsFn      func(ctx context.Context, owner domain.UserID) (*ports.OwnerStats, error)
}

func (s *stubReservationService) Create(ctx context.Context, in ports.CreateReservationInput) (*ports.ReservationView, error) {
	return s.createFn(ctx, in)
}

func (s *stubReservationService) TransitionStatus(ctx context.Context, id string, next domain.ReservationStatus, requester domain.Identity) (*ports.ReservationView, error) {
	return s.transitionFn(ctx, id, next, requester)
}

func (s *stubReservationService) GetByID(context.Context, string, domain.Identity) (*ports.ReservationView, error) {
	return nil, domain.ErrReservationNotFound
}

func (s *stubReservationService) Delete(context.Context, string, domain.Identity) error {
	return domain.ErrReservationNotFound
}

func (s *stubReservationService) ListForOwner(context.Context, domain.UserID) ([]ports.ReservationView, error) {
	return []ports.ReservationView{}, nil
}

func (s *stubReservationService) ListForClient(context.Context, domain.UserID) ([]ports.ReservationView, error) {
	return []ports.ReservationView{}, nil
}

func (s *stubReservationService) OwnerStatistics(ctx context.Context, owner domain.UserID) (*ports.OwnerStats, error) {
	return s.statsFn(ctx, owner)
}

var clientIdentity = domain.Identity{ID: "user-1", Role: domain.RoleClient}

func newReservationContext(method, target, body string, identity *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		c.Set(middleware.ContextIdentity, *identity)
	}
	return c, rec
}

func TestReservationHandler_Create(t *testing.T) {
	stub := &stubReservationService{
		createFn: func(_ context.Context, in ports.CreateReservationInput) (*ports.ReservationView, error) {
			if in.ResidenceID != "res-1" {
				t.Fatalf("residence id = %q", in.ResidenceID)
			}
			if in.Requester.ID != clientIdentity.ID {
				t.Fatalf("requester = %+v", in.Requester)
			}
			if !in.StartDate.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("start date = %v", in.StartDate)
			}
			if in.IdempotencyKey != "once-42" {
				t.Fatalf("idempotency key = %q", in.IdempotencyKey)
			}
			return &ports.ReservationView{ID: "rsv-1", Status: domain.StatusPending, TotalPrice: 40000}, nil
		},
	}
	handler := NewReservationHandler(stub)

	c, rec := newReservationContext(http.MethodPost, "/api/reservations",
		`{"residence_id":"res-1","start_date":"2026-10-01","end_date":"2026-10-03"}`, &clientIdentity)
	c.Request().Header.Set("Idempotency-Key", "once-42")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != string(domain.StatusPending) {
		t.Errorf("status = %v, want %q", resp["status"], domain.StatusPending)
	}
}

func TestReservationHandler_Create_RFC3339Dates(t *testing.T) {
	var gotStart time.Time
	stub := &stubReservationService{
		createFn: func(_ context.Context, in ports.CreateReservationInput) (*ports.ReservationView, error) {
			gotStart = in.StartDate
			return &ports.ReservationView{ID: "rsv-1"}, nil
		},
	}
	handler := NewReservationHandler(stub)

	c, _ := newReservationContext(http.MethodPost, "/api/reservations",
		`{"residence_id":"res-1","start_date":"2026-10-01T15:00:00Z","end_date":"2026-10-03T11:00:00Z"}`, &clientIdentity)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !gotStart.Equal(time.Date(2026, 10, 1, 15, 0, 0, 0, time.UTC)) {
		t.Errorf("start date = %v, want full timestamp preserved", gotStart)
	}
}

func TestReservationHandler_Create_BadDate(t *testing.T) {
	stub := &stubReservationService{
		createFn: func(context.Context, ports.CreateReservationInput) (*ports.ReservationView, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewReservationHandler(stub)

	c, _ := newReservationContext(http.MethodPost, "/api/reservations",
		`{"residence_id":"res-1","start_date":"01/10/2026","end_date":"2026-10-03"}`, &clientIdentity)

	err := handler.Create(c)
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestReservationHandler_Create_MissingIdentity(t *testing.T) {
	stub := &stubReservationService{
		createFn: func(context.Context, ports.CreateReservationInput) (*ports.ReservationView, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewReservationHandler(stub)

	c, _ := newReservationContext(http.MethodPost, "/api/reservations",
		`{"residence_id":"res-1","start_date":"2026-10-01","end_date":"2026-10-03"}`, nil)

	err := handler.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 HTTPError", err)
	}
}

func TestReservationHandler_TransitionStatus(t *testing.T) {
	owner := domain.Identity{ID: "owner-1", Role: domain.RoleOwner}
	stub := &stubReservationService{
		transitionFn: func(_ context.Context, id string, next domain.ReservationStatus, requester domain.Identity) (*ports.ReservationView, error) {
			if id != "rsv-1" || next != domain.StatusConfirmed || requester.ID != owner.ID {
				t.Fatalf("unexpected args: %s %s %+v", id, next, requester)
			}
			return &ports.ReservationView{ID: id, Status: next}, nil
		},
	}
	handler := NewReservationHandler(stub)

	c, rec := newReservationContext(http.MethodPatch, "/api/reservations/rsv-1/status",
		`{"status":"confirmée"}`, &owner)
	c.SetParamNames("id")
	c.SetParamValues("rsv-1")

	if err := handler.TransitionStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReservationHandler_OwnerStats(t *testing.T) {
	owner := domain.Identity{ID: "owner-1", Role: domain.RoleOwner}
	stub := &stubReservationService{
		statsFn: func(_ context.Context, id domain.UserID) (*ports.OwnerStats, error) {
			if id != owner.ID {
				t.Fatalf("owner id = %q", id)
			}
			return &ports.OwnerStats{
				TotalReservations:     3,
				ConfirmedReservations: 1,
				PendingReservations:   1,
				CancelledReservations: 1,
				TotalRevenue:          40000,
			}, nil
		},
	}
	handler := NewReservationHandler(stub)

	c, rec := newReservationContext(http.MethodGet, "/api/reservations/stats/owner", "", &owner)

	if err := handler.OwnerStats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"totalReservations", "confirmedReservations", "pendingReservations", "cancelledReservations", "totalRevenue"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("response missing %q: %v", key, resp)
		}
	}
}
