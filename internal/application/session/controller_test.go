package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/application/store"
	"github.com/finance-tracker/client/internal/domain/entity"
)

// fakeProvider lets tests drive identity callbacks by hand.
type fakeProvider struct {
	mu       sync.Mutex
	current  *entity.Identity
	callback adapter.IdentityCallback
}

type fakeSubscription struct{}

func (fakeSubscription) Unsubscribe() {}

func (p *fakeProvider) SignUp(ctx context.Context, email, password string) (*entity.Identity, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) SignInWithProvider(ctx context.Context, provider, assertion string) (*entity.Identity, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.emit(nil)
	return nil
}

func (p *fakeProvider) OnIdentityChange(callback adapter.IdentityCallback) adapter.Subscription {
	p.mu.Lock()
	p.callback = callback
	current := p.current
	p.mu.Unlock()
	callback(current)
	return fakeSubscription{}
}

func (p *fakeProvider) CurrentIdentity() *entity.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *fakeProvider) emit(identity *entity.Identity) {
	p.mu.Lock()
	p.current = identity
	callback := p.callback
	p.mu.Unlock()
	if callback != nil {
		callback(identity)
	}
}

// fakeUserRepo serves profiles and can hold fetches open on a gate.
type fakeUserRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*entity.UserProfile
	findErr  error
	gate     chan struct{}
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: map[uuid.UUID]*entity.UserProfile{}}
}

func (r *fakeUserRepo) FindByUID(ctx context.Context, uid uuid.UUID) (*entity.UserProfile, error) {
	r.mu.Lock()
	gate := r.gate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.profiles[uid], nil
}

func (r *fakeUserRepo) Upsert(ctx context.Context, uid uuid.UUID, profile *entity.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[uid] = profile
	return nil
}

// fakeTransactionRepo backs the transaction store in these tests.
type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID][]*entity.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: map[uuid.UUID][]*entity.Transaction{}}
}

func (r *fakeTransactionRepo) Save(ctx context.Context, transaction *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[transaction.UserID] = append(r.transactions[transaction.UserID], transaction)
	return nil
}

func (r *fakeTransactionRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transactions[userID], nil
}

func eventually(t *testing.T, condition func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(message)
}

func decimalFromString(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	amount, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", value, err)
	}
	return amount
}

func newTestIdentity() *entity.Identity {
	return &entity.Identity{
		UID:      uuid.New(),
		Email:    "user@example.com",
		Provider: "password",
	}
}

func TestControllerLifecycle(t *testing.T) {
	t.Run("starts unknown and goes anonymous on a nil first callback", func(t *testing.T) {
		provider := &fakeProvider{}
		users := newFakeUserRepo()
		txStore := store.NewTransactionStore(newFakeTransactionRepo())

		controller := NewController(provider, users, txStore)
		if snapshot := controller.Snapshot(); snapshot.State != StateUnknown || !snapshot.Loading {
			t.Fatalf("expected unknown/loading before start, got %+v", snapshot)
		}

		controller.Start(context.Background())
		defer controller.Close()

		snapshot := controller.Snapshot()
		if snapshot.State != StateAnonymous {
			t.Errorf("expected anonymous state, got %s", snapshot.State)
		}
		if snapshot.Loading {
			t.Error("expected loading cleared")
		}
		if snapshot.CurrentUser != nil || snapshot.UserData != nil {
			t.Error("expected no identity data")
		}
	})

	t.Run("sign-in loads profile and populates the store", func(t *testing.T) {
		identity := newTestIdentity()
		provider := &fakeProvider{}
		users := newFakeUserRepo()
		profile := entity.NewUserProfile(identity.Email, "Test User")
		users.profiles[identity.UID] = profile

		txRepo := newFakeTransactionRepo()
		txRepo.transactions[identity.UID] = []*entity.Transaction{
			entity.NewTransaction(identity.UID, entity.TransactionTypeIncome,
				"salary", decimalFromString(t, "100"), "Other", time.Now()),
		}
		txStore := store.NewTransactionStore(txRepo)

		controller := NewController(provider, users, txStore)
		controller.Start(context.Background())
		defer controller.Close()

		provider.emit(identity)

		snapshot := controller.Snapshot()
		if snapshot.State != StateAuthenticated {
			t.Fatalf("expected authenticated state, got %s", snapshot.State)
		}
		if snapshot.CurrentUser == nil || snapshot.CurrentUser.UID != identity.UID {
			t.Fatal("expected the signed-in identity")
		}

		eventually(t, func() bool {
			s := controller.Snapshot()
			return !s.Loading && s.UserData != nil
		}, "session data never finished loading")

		if got := controller.Snapshot().UserData.DisplayName; got != "Test User" {
			t.Errorf("expected profile display name, got %q", got)
		}
		eventually(t, func() bool {
			return len(txStore.Snapshot().Transactions) == 1
		}, "store was never populated")
	})

	t.Run("profile fetch failure does not block transaction population", func(t *testing.T) {
		identity := newTestIdentity()
		provider := &fakeProvider{}
		users := newFakeUserRepo()
		users.findErr = errors.New("profile unavailable")

		txRepo := newFakeTransactionRepo()
		txRepo.transactions[identity.UID] = []*entity.Transaction{
			entity.NewTransaction(identity.UID, entity.TransactionTypeExpense,
				"rent", decimalFromString(t, "50"), "Housing", time.Now()),
		}
		txStore := store.NewTransactionStore(txRepo)

		controller := NewController(provider, users, txStore)
		controller.Start(context.Background())
		defer controller.Close()

		provider.emit(identity)

		eventually(t, func() bool {
			return !controller.Snapshot().Loading
		}, "loading never cleared")

		snapshot := controller.Snapshot()
		if snapshot.Err == nil {
			t.Error("expected the profile error to be recorded")
		}
		if snapshot.UserData != nil {
			t.Error("expected no profile data")
		}
		if len(txStore.Snapshot().Transactions) != 1 {
			t.Error("expected the store to be populated despite the profile failure")
		}
	})

	t.Run("sign-out clears the session and the store", func(t *testing.T) {
		identity := newTestIdentity()
		provider := &fakeProvider{}
		users := newFakeUserRepo()
		users.profiles[identity.UID] = entity.NewUserProfile(identity.Email, "")

		txRepo := newFakeTransactionRepo()
		txRepo.transactions[identity.UID] = []*entity.Transaction{
			entity.NewTransaction(identity.UID, entity.TransactionTypeIncome,
				"salary", decimalFromString(t, "100"), "Other", time.Now()),
		}
		txStore := store.NewTransactionStore(txRepo)

		controller := NewController(provider, users, txStore)
		controller.Start(context.Background())
		defer controller.Close()

		provider.emit(identity)
		eventually(t, func() bool {
			return !controller.Snapshot().Loading
		}, "session data never finished loading")

		provider.emit(nil)

		snapshot := controller.Snapshot()
		if snapshot.State != StateAnonymous {
			t.Errorf("expected anonymous state, got %s", snapshot.State)
		}
		if snapshot.CurrentUser != nil || snapshot.UserData != nil {
			t.Error("expected identity data cleared")
		}

		storeSnapshot := txStore.Snapshot()
		if len(storeSnapshot.Transactions) != 0 {
			t.Error("expected the store cleared on sign-out")
		}
		if storeSnapshot.UserID != uuid.Nil {
			t.Error("expected the store to drop its owner")
		}
	})

	t.Run("fetch results for a superseded identity are discarded", func(t *testing.T) {
		identity := newTestIdentity()
		provider := &fakeProvider{}
		users := newFakeUserRepo()
		users.profiles[identity.UID] = entity.NewUserProfile(identity.Email, "Stale User")
		users.gate = make(chan struct{})

		txStore := store.NewTransactionStore(newFakeTransactionRepo())

		controller := NewController(provider, users, txStore)
		controller.Start(context.Background())
		defer controller.Close()

		// The profile fetch for this sign-in blocks on the gate.
		provider.emit(identity)
		// Sign-out supersedes it before the fetch resolves.
		provider.emit(nil)
		close(users.gate)

		// Give the stale fetch time to resolve, then check it changed nothing.
		time.Sleep(50 * time.Millisecond)

		snapshot := controller.Snapshot()
		if snapshot.State != StateAnonymous {
			t.Errorf("expected anonymous state, got %s", snapshot.State)
		}
		if snapshot.UserData != nil {
			t.Error("stale profile fetch must not populate the session")
		}
		if snapshot.Loading {
			t.Error("expected loading cleared by the sign-out")
		}
	})
}
