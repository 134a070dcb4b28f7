package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/myhometech/backend/internal/model"
)

// fakeStore is an in-memory RequestStore. beforeApply, when set, runs just
// before the version check in ApplyTransition so tests can interleave a
// competing write.
type fakeStore struct {
	mu          sync.Mutex
	seq         uint64
	rows        map[uint64]model.ServiceRequest
	beforeApply func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[uint64]model.ServiceRequest)}
}

func (s *fakeStore) Insert(_ context.Context, req *model.ServiceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	req.ID = s.seq
	s.rows[req.ID] = *req
	return nil
}

func (s *fakeStore) FindByID(_ context.Context, id uint64) (model.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.rows[id]
	if !ok {
		return model.ServiceRequest{}, sql.ErrNoRows
	}
	return req, nil
}

func (s *fakeStore) FindPending(_ context.Context, now time.Time) ([]model.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ServiceRequest, 0)
	for _, req := range s.rows {
		if req.Status != model.StatusPending {
			continue
		}
		if req.ExpiresAt == nil || !req.ExpiresAt.After(now) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (s *fakeStore) FindByClient(_ context.Context, clientID uint64) ([]model.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ServiceRequest, 0)
	for _, req := range s.rows {
		if req.ClientID == clientID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *fakeStore) FindByTechnician(_ context.Context, technicianID uint64) ([]model.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ServiceRequest, 0)
	for _, req := range s.rows {
		if req.TechnicianID != nil && *req.TechnicianID == technicianID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *fakeStore) ApplyTransition(_ context.Context, req *model.ServiceRequest, expectedVersion uint64) (bool, error) {
	if s.beforeApply != nil {
		s.beforeApply()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.rows[req.ID]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	req.Version = expectedVersion + 1
	s.rows[req.ID] = *req
	return true, nil
}

// seed stores a row directly, bypassing Create, so tests can build
// arbitrary states including expired or in_progress rows.
func (s *fakeStore) seed(req model.ServiceRequest) model.ServiceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID == 0 {
		s.seq++
		req.ID = s.seq
	}
	s.rows[req.ID] = req
	return req
}

func newLifecycle(t *testing.T) (*RequestLifecycle, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewRequestLifecycle(store, 60), store
}

func createPending(t *testing.T, l *RequestLifecycle, clientID uint64) model.ServiceRequest {
	t.Helper()
	req, err := l.Create(context.Background(), clientID, CreateInput{
		ApplianceID:      7,
		Description:      "washing machine leaks",
		ClientPriceCents: 5000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return req
}

func TestCreate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		l, _ := newLifecycle(t)
		req := createPending(t, l, 1)

		if req.ID == 0 {
			t.Fatal("expected generated id")
		}
		if req.Status != model.StatusPending {
			t.Fatalf("status = %s, want pending", req.Status)
		}
		if req.TechnicianID != nil || req.TechnicianPriceCents != nil {
			t.Fatal("new request must not carry technician fields")
		}
		if req.ExpiresAt == nil {
			t.Fatal("expected expiry to be set")
		}
		if got := req.ExpiresAt.Sub(req.CreatedAt); got != 60*time.Minute {
			t.Fatalf("expiry window = %s, want 60m", got)
		}
	})

	t.Run("explicit validity window", func(t *testing.T) {
		l, _ := newLifecycle(t)
		req, err := l.Create(context.Background(), 1, CreateInput{
			ApplianceID:      7,
			Description:      "oven does not heat",
			ClientPriceCents: 9000,
			ValidMinutes:     15,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if got := req.ExpiresAt.Sub(req.CreatedAt); got != 15*time.Minute {
			t.Fatalf("expiry window = %s, want 15m", got)
		}
	})

	t.Run("negative window falls back to default", func(t *testing.T) {
		l, _ := newLifecycle(t)
		req, err := l.Create(context.Background(), 1, CreateInput{
			ApplianceID:      7,
			Description:      "fridge too warm",
			ClientPriceCents: 3000,
			ValidMinutes:     -5,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if got := req.ExpiresAt.Sub(req.CreatedAt); got != 60*time.Minute {
			t.Fatalf("expiry window = %s, want 60m", got)
		}
	})
}

func TestFindPending(t *testing.T) {
	l, store := newLifecycle(t)

	fresh := createPending(t, l, 1)

	past := time.Now().UTC().Add(-time.Minute)
	store.seed(model.ServiceRequest{
		ClientID:         1,
		Description:      "expired",
		ClientPriceCents: 100,
		Status:           model.StatusPending,
		CreatedAt:        past.Add(-time.Hour),
		ExpiresAt:        &past,
	})
	store.seed(model.ServiceRequest{
		ClientID:         2,
		Description:      "already cancelled",
		ClientPriceCents: 100,
		Status:           model.StatusCancelled,
	})

	out, err := l.FindPending(context.Background())
	if err != nil {
		t.Fatalf("FindPending: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d pending requests, want 1", len(out))
	}
	if out[0].ID != fresh.ID {
		t.Fatalf("pending pool returned id %d, want %d", out[0].ID, fresh.ID)
	}
}

func TestExpiredRequestStaysMutable(t *testing.T) {
	// Expiry only hides a request from the pool; the lifecycle never checks
	// it, so an expired pending request can still be accepted directly.
	l, store := newLifecycle(t)
	past := time.Now().UTC().Add(-time.Minute)
	seeded := store.seed(model.ServiceRequest{
		ClientID:         1,
		Description:      "expired but alive",
		ClientPriceCents: 4000,
		Status:           model.StatusPending,
		CreatedAt:        past.Add(-time.Hour),
		ExpiresAt:        &past,
	})

	req, err := l.Accept(context.Background(), seeded.ID, 1)
	if err != nil {
		t.Fatalf("Accept on expired request: %v", err)
	}
	if req.Status != model.StatusAccepted {
		t.Fatalf("status = %s, want accepted", req.Status)
	}
}

func TestOfferPrice(t *testing.T) {
	t.Run("pending to offered", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)

		req, err := l.OfferPrice(context.Background(), created.ID, 42, 7500)
		if err != nil {
			t.Fatalf("OfferPrice: %v", err)
		}
		if req.Status != model.StatusOffered {
			t.Fatalf("status = %s, want offered", req.Status)
		}
		if req.TechnicianID == nil || *req.TechnicianID != 42 {
			t.Fatalf("technician id = %v, want 42", req.TechnicianID)
		}
		if req.TechnicianPriceCents == nil || *req.TechnicianPriceCents != 7500 {
			t.Fatalf("technician price = %v, want 7500", req.TechnicianPriceCents)
		}
		if req.ClientPriceCents != 5000 {
			t.Fatalf("client price mutated to %d", req.ClientPriceCents)
		}
	})

	t.Run("rejects non-pending", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		if _, err := l.OfferPrice(context.Background(), created.ID, 42, 7500); err != nil {
			t.Fatalf("first offer: %v", err)
		}
		_, err := l.OfferPrice(context.Background(), created.ID, 43, 6000)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("second offer err = %v, want ErrInvalidStatus", err)
		}

		// The failed offer must leave the stored row untouched.
		req, err := l.GetByID(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if req.Status != model.StatusOffered {
			t.Fatalf("status = %s, want offered", req.Status)
		}
		if req.TechnicianID == nil || *req.TechnicianID != 42 {
			t.Fatalf("technician id = %v, want the first offerer 42", req.TechnicianID)
		}
		if req.TechnicianPriceCents == nil || *req.TechnicianPriceCents != 7500 {
			t.Fatalf("technician price = %v, want the first offer 7500", req.TechnicianPriceCents)
		}
	})

	t.Run("missing request", func(t *testing.T) {
		l, _ := newLifecycle(t)
		_, err := l.OfferPrice(context.Background(), 999, 42, 7500)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestAccept(t *testing.T) {
	t.Run("from offered", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		if _, err := l.OfferPrice(context.Background(), created.ID, 42, 7500); err != nil {
			t.Fatalf("OfferPrice: %v", err)
		}
		req, err := l.Accept(context.Background(), created.ID, 1)
		if err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if req.Status != model.StatusAccepted {
			t.Fatalf("status = %s, want accepted", req.Status)
		}
		if req.AcceptedAt == nil {
			t.Fatal("accepted_at not stamped")
		}
		// The counter-offer survives acceptance.
		if req.TechnicianPriceCents == nil || *req.TechnicianPriceCents != 7500 {
			t.Fatalf("technician price = %v, want 7500", req.TechnicianPriceCents)
		}
	})

	t.Run("straight from pending", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		req, err := l.Accept(context.Background(), created.ID, 1)
		if err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if req.Status != model.StatusAccepted {
			t.Fatalf("status = %s, want accepted", req.Status)
		}
		if req.TechnicianID != nil {
			t.Fatal("accepting from pending must not invent a technician")
		}
	})

	t.Run("wrong client", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		_, err := l.Accept(context.Background(), created.ID, 2)
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("err = %v, want ErrNotOwner", err)
		}
	})

	t.Run("already accepted", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		if _, err := l.Accept(context.Background(), created.ID, 1); err != nil {
			t.Fatalf("first accept: %v", err)
		}
		_, err := l.Accept(context.Background(), created.ID, 1)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("second accept err = %v, want ErrInvalidStatus", err)
		}
	})
}

func TestSchedule(t *testing.T) {
	setup := func(t *testing.T) (*RequestLifecycle, model.ServiceRequest) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		if _, err := l.OfferPrice(context.Background(), created.ID, 42, 7500); err != nil {
			t.Fatalf("OfferPrice: %v", err)
		}
		if _, err := l.Accept(context.Background(), created.ID, 1); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		return l, created
	}

	t.Run("by bound technician", func(t *testing.T) {
		l, created := setup(t)
		at := time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC)
		req, err := l.Schedule(context.Background(), created.ID, 42, at)
		if err != nil {
			t.Fatalf("Schedule: %v", err)
		}
		if req.Status != model.StatusScheduled {
			t.Fatalf("status = %s, want scheduled", req.Status)
		}
		if req.ScheduledAt == nil || !req.ScheduledAt.Equal(at) {
			t.Fatalf("scheduled_at = %v, want %v", req.ScheduledAt, at)
		}
	})

	t.Run("by another technician", func(t *testing.T) {
		l, created := setup(t)
		_, err := l.Schedule(context.Background(), created.ID, 99, time.Now().UTC())
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("err = %v, want ErrNotOwner", err)
		}
	})

	t.Run("before acceptance", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		_, err := l.Schedule(context.Background(), created.ID, 42, time.Now().UTC())
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("err = %v, want ErrInvalidStatus", err)
		}
	})
}

func TestAcceptByTechnician(t *testing.T) {
	t.Run("pending straight to scheduled", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		req, err := l.AcceptByTechnician(context.Background(), created.ID, 42)
		if err != nil {
			t.Fatalf("AcceptByTechnician: %v", err)
		}
		if req.Status != model.StatusScheduled {
			t.Fatalf("status = %s, want scheduled", req.Status)
		}
		if req.TechnicianID == nil || *req.TechnicianID != 42 {
			t.Fatalf("technician id = %v, want 42", req.TechnicianID)
		}
		if req.AcceptedAt == nil || req.ScheduledAt == nil {
			t.Fatal("both timestamps must be stamped")
		}
		if !req.AcceptedAt.Equal(*req.ScheduledAt) {
			t.Fatalf("accepted_at %v != scheduled_at %v", req.AcceptedAt, req.ScheduledAt)
		}
		if req.TechnicianPriceCents != nil {
			t.Fatal("direct acceptance settles at the client price, no counter-offer")
		}
	})

	t.Run("rejected after offer", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		if _, err := l.OfferPrice(context.Background(), created.ID, 42, 7500); err != nil {
			t.Fatalf("OfferPrice: %v", err)
		}
		_, err := l.AcceptByTechnician(context.Background(), created.ID, 43)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("err = %v, want ErrInvalidStatus", err)
		}
	})
}

func TestCompleteByClient(t *testing.T) {
	scheduled := func(t *testing.T) (*RequestLifecycle, model.ServiceRequest) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		if _, err := l.AcceptByTechnician(context.Background(), created.ID, 42); err != nil {
			t.Fatalf("AcceptByTechnician: %v", err)
		}
		return l, created
	}

	t.Run("from scheduled", func(t *testing.T) {
		l, created := scheduled(t)
		req, err := l.CompleteByClient(context.Background(), created.ID, 1)
		if err != nil {
			t.Fatalf("CompleteByClient: %v", err)
		}
		if req.Status != model.StatusCompleted {
			t.Fatalf("status = %s, want completed", req.Status)
		}
		if req.CompletedAt == nil {
			t.Fatal("completed_at not stamped")
		}
	})

	t.Run("from in_progress", func(t *testing.T) {
		l, store := newLifecycle(t)
		seeded := store.seed(model.ServiceRequest{
			ClientID:         1,
			Description:      "seeded in progress",
			ClientPriceCents: 2000,
			Status:           model.StatusInProgress,
		})
		req, err := l.CompleteByClient(context.Background(), seeded.ID, 1)
		if err != nil {
			t.Fatalf("CompleteByClient: %v", err)
		}
		if req.Status != model.StatusCompleted {
			t.Fatalf("status = %s, want completed", req.Status)
		}
	})

	t.Run("wrong client", func(t *testing.T) {
		l, created := scheduled(t)
		_, err := l.CompleteByClient(context.Background(), created.ID, 2)
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("err = %v, want ErrNotOwner", err)
		}
	})

	t.Run("from accepted", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		if _, err := l.Accept(context.Background(), created.ID, 1); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		_, err := l.CompleteByClient(context.Background(), created.ID, 1)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("err = %v, want ErrInvalidStatus", err)
		}
	})
}

func TestRejectByTechnician(t *testing.T) {
	t.Run("pending to cancelled", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		req, err := l.RejectByTechnician(context.Background(), created.ID, 42)
		if err != nil {
			t.Fatalf("RejectByTechnician: %v", err)
		}
		if req.Status != model.StatusCancelled {
			t.Fatalf("status = %s, want cancelled", req.Status)
		}
		if req.CancelledAt == nil {
			t.Fatal("cancelled_at not stamped")
		}
		if req.TechnicianID == nil || *req.TechnicianID != 42 {
			t.Fatalf("rejecting technician not recorded: %v", req.TechnicianID)
		}

		// The rejection shows up in the technician's history.
		hist, err := l.ListByTechnician(context.Background(), 42)
		if err != nil {
			t.Fatalf("ListByTechnician: %v", err)
		}
		if len(hist) != 1 || hist[0].ID != created.ID {
			t.Fatalf("history = %v, want the rejected request", hist)
		}
	})

	t.Run("not pending", func(t *testing.T) {
		l, _ := newLifecycle(t)
		created := createPending(t, l, 1)
		if _, err := l.Accept(context.Background(), created.ID, 1); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		_, err := l.RejectByTechnician(context.Background(), created.ID, 42)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("err = %v, want ErrInvalidStatus", err)
		}
	})
}

func TestConcurrentTransitionLosesWithConflict(t *testing.T) {
	l, store := newLifecycle(t)
	created := createPending(t, l, 1)

	// While technician 42's offer is in flight, technician 99 sneaks in a
	// rejection. 42's version check must then fail.
	raced := false
	store.beforeApply = func() {
		if raced {
			return
		}
		raced = true
		hook := store.beforeApply
		store.beforeApply = nil
		if _, err := l.RejectByTechnician(context.Background(), created.ID, 99); err != nil {
			t.Fatalf("competing reject: %v", err)
		}
		store.beforeApply = hook
	}

	_, err := l.OfferPrice(context.Background(), created.ID, 42, 7500)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	req, err := l.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if req.Status != model.StatusCancelled {
		t.Fatalf("status = %s, want cancelled (the competing write must stand)", req.Status)
	}
}

func TestFullNegotiationFlow(t *testing.T) {
	l, _ := newLifecycle(t)
	ctx := context.Background()

	created := createPending(t, l, 10)

	pool, err := l.FindPending(ctx)
	if err != nil || len(pool) != 1 {
		t.Fatalf("pool = %v (err %v), want 1 entry", pool, err)
	}

	if _, err := l.OfferPrice(ctx, created.ID, 55, 6500); err != nil {
		t.Fatalf("OfferPrice: %v", err)
	}
	if _, err := l.Accept(ctx, created.ID, 10); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	at := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	if _, err := l.Schedule(ctx, created.ID, 55, at); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	req, err := l.CompleteByClient(ctx, created.ID, 10)
	if err != nil {
		t.Fatalf("CompleteByClient: %v", err)
	}

	if req.Status != model.StatusCompleted {
		t.Fatalf("final status = %s, want completed", req.Status)
	}
	if req.AcceptedAt == nil || req.ScheduledAt == nil || req.CompletedAt == nil {
		t.Fatal("lifecycle timestamps missing")
	}
	if req.Version != 4 {
		t.Fatalf("version = %d, want 4 (one per transition)", req.Version)
	}

	// An offered-then-completed request no longer appears in the pool.
	pool, err = l.FindPending(ctx)
	if err != nil || len(pool) != 0 {
		t.Fatalf("pool after completion = %v (err %v), want empty", pool, err)
	}
}
