// Package session tracks the current authenticated identity and drives the
// transaction store's lifecycle.
package session

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/application/store"
	"github.com/finance-tracker/client/internal/domain/entity"
)

// State is the session controller's lifecycle state.
type State string

const (
	// StateUnknown is the initial state before the first identity callback.
	StateUnknown State = "unknown"
	// StateAuthenticated means a signed-in identity is current.
	StateAuthenticated State = "authenticated"
	// StateAnonymous means no identity is signed in.
	StateAnonymous State = "anonymous"
)

// Snapshot is the read view of the session consumed by the presentation layer.
type Snapshot struct {
	State       State
	CurrentUser *entity.Identity
	UserData    *entity.UserProfile
	Loading     bool
	Err         error
}

// Controller subscribes to the identity provider and owns the session state.
// Each identity callback is authoritative: it fully supersedes the previous
// one. Fetches issued for an older identity are generation-tagged and their
// results discarded once a newer callback has arrived.
//
// The controller is the process's single entry point for identity changes;
// its subscription stays active until Close.
type Controller struct {
	provider adapter.IdentityProvider
	users    adapter.UserRepository
	txStore  *store.TransactionStore

	mu          sync.Mutex
	generation  uint64
	state       State
	currentUser *entity.Identity
	userData    *entity.UserProfile
	loading     bool
	err         error

	ctx          context.Context
	cancel       context.CancelFunc
	subscription adapter.Subscription
	wg           sync.WaitGroup
}

// NewController creates a session controller. Call Start to begin observing
// identity changes.
func NewController(
	provider adapter.IdentityProvider,
	users adapter.UserRepository,
	txStore *store.TransactionStore,
) *Controller {
	return &Controller{
		provider: provider,
		users:    users,
		txStore:  txStore,
		state:    StateUnknown,
		loading:  true,
	}
}

// Start subscribes to the identity provider. The subscription delivers the
// current identity immediately, so the controller leaves StateUnknown on the
// first callback.
func (c *Controller) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.subscription = c.provider.OnIdentityChange(c.handleIdentityChange)
}

// Close unsubscribes from the identity provider and waits for in-flight
// fetches to settle. The controller must not be restarted after Close.
func (c *Controller) Close() {
	if c.subscription != nil {
		c.subscription.Unsubscribe()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Snapshot returns a consistent copy of the session's public state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		State:       c.state,
		CurrentUser: c.currentUser,
		UserData:    c.userData,
		Loading:     c.loading,
		Err:         c.err,
	}
}

// handleIdentityChange processes one identity callback. The synchronous part
// swaps the session state and bumps the generation; dependent fetches run in
// the background and commit only while their generation is still current.
func (c *Controller) handleIdentityChange(identity *entity.Identity) {
	c.mu.Lock()
	c.generation++
	generation := c.generation

	if identity == nil {
		c.state = StateAnonymous
		c.currentUser = nil
		c.userData = nil
		c.loading = false
		c.err = nil
		c.mu.Unlock()

		c.txStore.Clear()
		slog.Debug("Session cleared on sign-out")
		return
	}

	c.state = StateAuthenticated
	c.currentUser = identity
	c.userData = nil
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	c.wg.Add(1)
	go c.fetchSessionData(generation, identity)
}

// fetchSessionData loads the profile document and populates the transaction
// store for a newly signed-in identity. The two fetches run in parallel and
// fail independently: a profile error does not block the transaction
// population, and vice versa. Loading clears only after both settle.
func (c *Controller) fetchSessionData(generation uint64, identity *entity.Identity) {
	defer c.wg.Done()

	group, ctx := errgroup.WithContext(c.ctx)

	group.Go(func() error {
		profile, err := c.users.FindByUID(ctx, identity.UID)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != generation {
			return nil
		}
		if err != nil {
			c.err = err
			slog.Warn("Failed to fetch user profile", "uid", identity.UID, "error", err)
			return nil
		}
		c.userData = profile
		return nil
	})

	group.Go(func() error {
		// Skip the populate entirely if a newer identity callback has already
		// arrived; starting it would revive a store the newer callback owns.
		c.mu.Lock()
		stale := c.generation != generation
		c.mu.Unlock()
		if stale {
			return nil
		}

		// The store applies its own generation guard; a stale populate is
		// discarded inside the store. Its error surfaces via the store
		// snapshot, not the session.
		if err := c.txStore.Populate(ctx, identity.UID); err != nil {
			slog.Warn("Failed to populate transactions", "uid", identity.UID, "error", err)
		}
		return nil
	})

	_ = group.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return
	}
	c.loading = false
}
