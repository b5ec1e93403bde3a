package bids

import (
	"context"
	"sync"
	"testing"
	"time"

	"gigflow/models"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with the same conditional-update
// semantics as the Mongo implementation: status guards are checked and
// applied under one lock, so a CAS miss surfaces as the conflict error.
type memStore struct {
	mu    sync.Mutex
	gigs  map[string]*models.Gig
	bids  map[string]*models.Bid
	users map[string]*models.UserSummary
}

func newMemStore() *memStore {
	return &memStore{
		gigs:  make(map[string]*models.Gig),
		bids:  make(map[string]*models.Bid),
		users: make(map[string]*models.UserSummary),
	}
}

func (m *memStore) WithTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memStore) GetGig(_ context.Context, gigID string) (*models.Gig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gig, ok := m.gigs[gigID]
	if !ok {
		return nil, ErrGigNotFound
	}
	cp := *gig
	return &cp, nil
}

func (m *memStore) GetBid(_ context.Context, bidID string) (*models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bid, ok := m.bids[bidID]
	if !ok {
		return nil, ErrBidNotFound
	}
	cp := *bid
	return &cp, nil
}

func (m *memStore) HasBid(_ context.Context, gigID, freelancerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bids {
		if b.GigID == gigID && b.FreelancerID == freelancerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) InsertBid(_ context.Context, bid *models.Bid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bids {
		if b.GigID == bid.GigID && b.FreelancerID == bid.FreelancerID {
			return ErrAlreadyBid
		}
	}
	cp := *bid
	m.bids[bid.BidID] = &cp
	return nil
}

func (m *memStore) AssignGigIfOpen(_ context.Context, gigID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	gig, ok := m.gigs[gigID]
	if !ok || gig.Status != models.GigStatusOpen {
		return ErrGigAssigned
	}
	gig.Status = models.GigStatusAssigned
	return nil
}

func (m *memStore) MarkBidHiredIfPending(_ context.Context, bidID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bid, ok := m.bids[bidID]
	if !ok || bid.Status != models.BidStatusPending {
		return ErrBidProcessed
	}
	bid.Status = models.BidStatusHired
	return nil
}

func (m *memStore) RejectOtherPendingBids(_ context.Context, gigID, hiredBidID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bids {
		if b.GigID == gigID && b.BidID != hiredBidID && b.Status == models.BidStatusPending {
			b.Status = models.BidStatusRejected
			n++
		}
	}
	return n, nil
}

func (m *memStore) BidsByGig(_ context.Context, gigID string) ([]models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bid
	for _, b := range m.bids {
		if b.GigID == gigID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) BidsByFreelancer(_ context.Context, freelancerID string) ([]models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bid
	for _, b := range m.bids {
		if b.FreelancerID == freelancerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) RejectedBids(_ context.Context, gigID, excludeBidID string) ([]models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bid
	for _, b := range m.bids {
		if b.GigID == gigID && b.BidID != excludeBidID && b.Status == models.BidStatusRejected {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) UserSummary(_ context.Context, userID string) (*models.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrBidNotFound
}

// notifyRecorder records emitted notifications by type and recipient.
type notifyRecorder struct {
	mu       sync.Mutex
	newBids  []string // gig owner ids
	hired    []string // freelancer ids
	rejected []string // freelancer ids
}

func (n *notifyRecorder) NewBid(gig *models.Gig, _ *models.Bid, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newBids = append(n.newBids, gig.OwnerID)
}

func (n *notifyRecorder) Hired(_ *models.Gig, bid *models.Bid) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hired = append(n.hired, bid.FreelancerID)
}

func (n *notifyRecorder) Rejected(_ *models.Gig, bid *models.Bid) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, bid.FreelancerID)
}

func seedGig(store *memStore, gigID, ownerID string, status string) {
	store.gigs[gigID] = &models.Gig{
		GigID:     gigID,
		Title:     "Build a landing page",
		Budget:    500,
		OwnerID:   ownerID,
		Status:    status,
		CreatedAt: time.Now(),
	}
	store.users[ownerID] = &models.UserSummary{UserID: ownerID, Name: "Owner", Email: ownerID + "@example.com"}
}

func seedBid(store *memStore, bidID, gigID, freelancerID, status string) {
	store.bids[bidID] = &models.Bid{
		BidID:        bidID,
		GigID:        gigID,
		FreelancerID: freelancerID,
		Message:      "I can do this",
		Price:        100,
		Status:       status,
		CreatedAt:    time.Now(),
	}
	store.users[freelancerID] = &models.UserSummary{UserID: freelancerID, Name: "Freelancer " + freelancerID}
}

func TestSubmitBid(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(*memStore)
		gigID        string
		freelancerID string
		message      string
		price        float64
		wantErr      error
	}{
		{
			name:         "valid_bid",
			setup:        func(s *memStore) { seedGig(s, "g1", "owner1", models.GigStatusOpen) },
			gigID:        "g1",
			freelancerID: "f1",
			message:      "I can do this",
			price:        100,
		},
		{
			name:         "gig_missing",
			setup:        func(s *memStore) {},
			gigID:        "nope",
			freelancerID: "f1",
			message:      "hello",
			price:        100,
			wantErr:      ErrGigNotFound,
		},
		{
			name:         "gig_closed",
			setup:        func(s *memStore) { seedGig(s, "g1", "owner1", models.GigStatusAssigned) },
			gigID:        "g1",
			freelancerID: "f1",
			message:      "hello",
			price:        100,
			wantErr:      ErrGigClosed,
		},
		{
			name:         "self_bid",
			setup:        func(s *memStore) { seedGig(s, "g1", "owner1", models.GigStatusOpen) },
			gigID:        "g1",
			freelancerID: "owner1",
			message:      "hello",
			price:        100,
			wantErr:      ErrSelfBid,
		},
		{
			name: "duplicate_bid",
			setup: func(s *memStore) {
				seedGig(s, "g1", "owner1", models.GigStatusOpen)
				seedBid(s, "b1", "g1", "f1", models.BidStatusPending)
			},
			gigID:        "g1",
			freelancerID: "f1",
			message:      "again",
			price:        120,
			wantErr:      ErrAlreadyBid,
		},
		{
			name:         "empty_message",
			setup:        func(s *memStore) { seedGig(s, "g1", "owner1", models.GigStatusOpen) },
			gigID:        "g1",
			freelancerID: "f1",
			message:      "   ",
			price:        100,
			wantErr:      ErrInvalidInput,
		},
		{
			// a bid must always reference a real freelancer; an empty
			// caller id never reaches the store
			name:         "empty_freelancer",
			setup:        func(s *memStore) { seedGig(s, "g1", "owner1", models.GigStatusOpen) },
			gigID:        "g1",
			freelancerID: "",
			message:      "anonymous work",
			price:        100,
			wantErr:      ErrInvalidInput,
		},
		{
			name:         "non_positive_price",
			setup:        func(s *memStore) { seedGig(s, "g1", "owner1", models.GigStatusOpen) },
			gigID:        "g1",
			freelancerID: "f1",
			message:      "hello",
			price:        0,
			wantErr:      ErrInvalidInput,
		},
		{
			// the server deliberately does not cap price at the gig
			// budget; pricing above budget is allowed
			name:         "price_above_budget_accepted",
			setup:        func(s *memStore) { seedGig(s, "g1", "owner1", models.GigStatusOpen) },
			gigID:        "g1",
			freelancerID: "f1",
			message:      "premium work",
			price:        9000,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			tc.setup(store)
			store.users[tc.freelancerID] = &models.UserSummary{UserID: tc.freelancerID, Name: "F"}
			rec := &notifyRecorder{}
			engine := NewEngine(store, rec)

			bid, err := engine.SubmitBid(context.Background(), tc.gigID, tc.freelancerID, tc.message, tc.price)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, models.BidStatusPending, bid.Status)
			require.NotEmpty(t, bid.BidID)
			require.Equal(t, tc.freelancerID, bid.FreelancerID)
			require.Equal(t, []string{"owner1"}, rec.newBids)
		})
	}
}

func TestSubmitBidFailureCreatesNothing(t *testing.T) {
	store := newMemStore()
	seedGig(store, "g1", "owner1", models.GigStatusAssigned)
	engine := NewEngine(store, &notifyRecorder{})

	_, err := engine.SubmitBid(context.Background(), "g1", "f1", "late to the party", 50)
	require.ErrorIs(t, err, ErrGigClosed)
	require.Empty(t, store.bids)

	_, err = engine.SubmitBid(context.Background(), "g1", "", "no identity", 50)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Empty(t, store.bids)
}

func TestHire(t *testing.T) {
	store := newMemStore()
	seedGig(store, "g1", "owner1", models.GigStatusOpen)
	seedBid(store, "b1", "g1", "f1", models.BidStatusPending)
	seedBid(store, "b2", "g1", "f2", models.BidStatusPending)
	rec := &notifyRecorder{}
	engine := NewEngine(store, rec)

	result, err := engine.Hire(context.Background(), "b1", "owner1")
	require.NoError(t, err)
	require.Equal(t, models.GigStatusAssigned, result.Gig.Status)
	require.Equal(t, models.BidStatusHired, result.Bid.Status)
	require.EqualValues(t, 1, result.Rejected)

	require.Equal(t, models.BidStatusHired, store.bids["b1"].Status)
	require.Equal(t, models.BidStatusRejected, store.bids["b2"].Status)
	require.Equal(t, models.GigStatusAssigned, store.gigs["g1"].Status)

	require.Equal(t, []string{"f1"}, rec.hired)
	require.Equal(t, []string{"f2"}, rec.rejected)
}

func TestHireErrors(t *testing.T) {
	store := newMemStore()
	seedGig(store, "g1", "owner1", models.GigStatusOpen)
	seedBid(store, "b1", "g1", "f1", models.BidStatusPending)
	engine := NewEngine(store, &notifyRecorder{})

	_, err := engine.Hire(context.Background(), "nope", "owner1")
	require.ErrorIs(t, err, ErrBidNotFound)

	_, err = engine.Hire(context.Background(), "b1", "someone-else")
	require.ErrorIs(t, err, ErrNotOwner)

	// nothing moved
	require.Equal(t, models.GigStatusOpen, store.gigs["g1"].Status)
	require.Equal(t, models.BidStatusPending, store.bids["b1"].Status)
}

func TestHireTwiceConflicts(t *testing.T) {
	store := newMemStore()
	seedGig(store, "g1", "owner1", models.GigStatusOpen)
	seedBid(store, "b1", "g1", "f1", models.BidStatusPending)
	seedBid(store, "b2", "g1", "f2", models.BidStatusPending)
	engine := NewEngine(store, &notifyRecorder{})

	_, err := engine.Hire(context.Background(), "b1", "owner1")
	require.NoError(t, err)

	_, err = engine.Hire(context.Background(), "b2", "owner1")
	require.ErrorIs(t, err, ErrGigAssigned)

	// state unchanged by the losing call
	require.Equal(t, models.BidStatusHired, store.bids["b1"].Status)
	require.Equal(t, models.BidStatusRejected, store.bids["b2"].Status)
}

// Exactly one of N concurrent hire calls on the same gig may commit;
// the rest fail with a conflict and no bid stays pending.
func TestHireConcurrent(t *testing.T) {
	const n = 16

	store := newMemStore()
	seedGig(store, "g1", "owner1", models.GigStatusOpen)
	bidIDs := make([]string, n)
	for i := 0; i < n; i++ {
		bidIDs[i] = "b" + string(rune('a'+i))
		seedBid(store, bidIDs[i], "g1", "f"+string(rune('a'+i)), models.BidStatusPending)
	}
	engine := NewEngine(store, &notifyRecorder{})

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Hire(context.Background(), bidIDs[i], "owner1")
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case err == ErrGigAssigned || err == ErrBidProcessed:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, n-1, conflicts)

	var hired, pending int
	for _, b := range store.bids {
		switch b.Status {
		case models.BidStatusHired:
			hired++
		case models.BidStatusPending:
			pending++
		}
	}
	require.Equal(t, 1, hired)
	require.Zero(t, pending, "no bid may stay pending on an assigned gig")
	require.Equal(t, models.GigStatusAssigned, store.gigs["g1"].Status)
}

func TestListForGigOwnerOnly(t *testing.T) {
	store := newMemStore()
	seedGig(store, "g1", "owner1", models.GigStatusOpen)
	seedBid(store, "b1", "g1", "f1", models.BidStatusPending)
	engine := NewEngine(store, &notifyRecorder{})

	out, err := engine.ListForGig(context.Background(), "g1", "owner1")
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = engine.ListForGig(context.Background(), "g1", "f1")
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = engine.ListForGig(context.Background(), "missing", "owner1")
	require.ErrorIs(t, err, ErrGigNotFound)
}
