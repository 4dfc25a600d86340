// Package orchestrator drives the signed-in session: it owns the identity
// lifecycle and decides, on every view or identity change, which dashboard
// load or discovery run to dispatch.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/karthik/placementhub/internal/discovery"
	"github.com/karthik/placementhub/internal/identity"
	"github.com/karthik/placementhub/internal/portal"
	"github.com/karthik/placementhub/internal/throttle"
	"github.com/karthik/placementhub/internal/types"
)

// View is the active portal view. Only the dashboard view dispatches loads.
type View string

const (
	ViewDashboard     View = "dashboard"
	ViewOpportunities View = "opportunities"
	ViewApplications  View = "applications"
	ViewProfile       View = "profile"
)

// ErrSignedOut is returned by operations that require a signed-in identity.
var ErrSignedOut = errors.New("not signed in")

// Authenticator is the portal login collaborator.
type Authenticator interface {
	Login(ctx context.Context, req types.LoginRequest) (*portal.Session, error)
}

// Loader is a role dashboard loader the orchestrator can dispatch to and
// invalidate at sign-out.
type Loader interface {
	Role() types.Role
	Load(ctx context.Context, identity types.Identity) error
	Invalidate()
}

// Orchestrator is the session state machine: SignedOut, or SignedIn with an
// identity and an active view. All dispatches it starts are asynchronous;
// completions for a superseded session are discarded.
type Orchestrator struct {
	auth       Authenticator
	store      identity.Store
	throttle   *throttle.Controller
	aggregator *discovery.Aggregator
	loaders    map[types.Role]Loader

	mu       sync.Mutex
	identity *types.Identity
	view     View
	epoch    uint64
	lastKey  string

	wg  sync.WaitGroup
	now func() time.Time
}

// New creates an orchestrator in the SignedOut state.
func New(auth Authenticator, store identity.Store, throttler *throttle.Controller, aggregator *discovery.Aggregator, loaders ...Loader) *Orchestrator {
	byRole := make(map[types.Role]Loader, len(loaders))
	for _, l := range loaders {
		byRole[l.Role()] = l
	}
	return &Orchestrator{
		auth:       auth,
		store:      store,
		throttle:   throttler,
		aggregator: aggregator,
		loaders:    byRole,
		now:        time.Now,
	}
}

// Identity returns the signed-in identity, or nil when signed out.
func (o *Orchestrator) Identity() *types.Identity {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.identity == nil {
		return nil
	}
	id := *o.identity
	return &id
}

// View returns the active view. Meaningless when signed out.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// Restore loads a previously persisted identity and, when one exists, enters
// SignedIn on the dashboard view. A load failure degrades to SignedOut.
func (o *Orchestrator) Restore(ctx context.Context) (*types.Identity, error) {
	stored, err := o.store.Load()
	if err != nil {
		log.Printf("session restore failed, starting signed out: %v", err)
		return nil, nil
	}
	if stored == nil {
		return nil, nil
	}
	stored.ApplyDefaults()

	o.mu.Lock()
	o.identity = stored
	o.view = ViewDashboard
	o.mu.Unlock()

	o.evaluate(ctx)
	id := *stored
	return &id, nil
}

// SignIn authenticates against the portal, normalizes the returned identity,
// persists it, and enters the dashboard view.
func (o *Orchestrator) SignIn(ctx context.Context, req types.LoginRequest) (*types.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, err := o.auth.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	id := session.Identity
	id.ApplyDefaults()

	if err := o.store.Save(id, session.AccessToken); err != nil {
		// Persistence failure is non-fatal: the session just won't survive
		// the process.
		log.Printf("failed to persist session: %v", err)
	}

	o.mu.Lock()
	o.identity = &id
	o.view = ViewDashboard
	o.epoch++
	o.lastKey = ""
	o.mu.Unlock()

	// Replacing an identity supersedes the previous one's in-flight loads and
	// discovery results, exactly as sign-out does. Invalidation advances each
	// loader's generation so a load dispatched for the old identity is
	// discarded at commit even when both identities share a role.
	for _, l := range o.loaders {
		l.Invalidate()
	}
	o.aggregator.Reset()

	o.evaluate(ctx)
	out := id
	return &out, nil
}

// SignOut clears the persisted identity and drops all per-identity state:
// every dashboard loader is invalidated and discovery results are discarded.
func (o *Orchestrator) SignOut() error {
	o.mu.Lock()
	o.identity = nil
	o.view = ""
	o.epoch++
	o.lastKey = ""
	o.mu.Unlock()

	for _, l := range o.loaders {
		l.Invalidate()
	}
	o.aggregator.Reset()

	if err := o.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SetView switches the active view and re-evaluates dispatch. A no-op when
// signed out.
func (o *Orchestrator) SetView(ctx context.Context, view View) {
	o.mu.Lock()
	if o.identity == nil {
		o.mu.Unlock()
		return
	}
	o.view = view
	o.mu.Unlock()

	o.evaluate(ctx)
}

// dispatchKey identifies one dispatch decision. Re-evaluation is keyed on
// (email, role, view, discovery-in-flight): the same key never dispatches
// twice in a row.
func (o *Orchestrator) dispatchKey(id types.Identity, view View, inFlight bool) string {
	return fmt.Sprintf("%s|%s|%s|%t", id.Email, id.Role, view, inFlight)
}

// evaluate recomputes the dispatch decision for the current session state.
func (o *Orchestrator) evaluate(ctx context.Context) {
	o.mu.Lock()
	if o.identity == nil || o.view != ViewDashboard {
		// Leaving the dashboard resets the key so returning to it
		// re-evaluates.
		o.lastKey = ""
		o.mu.Unlock()
		return
	}
	id := *o.identity
	epoch := o.epoch
	inFlight := o.aggregator.InFlight()

	key := o.dispatchKey(id, o.view, inFlight)
	if key == o.lastKey {
		o.mu.Unlock()
		return
	}
	o.lastKey = key
	o.mu.Unlock()

	if id.Role == types.RoleStudent {
		o.dispatchDiscovery(ctx, id, epoch, inFlight)
		return
	}
	o.dispatchLoad(ctx, id, epoch)
}

// dispatchDiscovery runs the student path: throttle gate, then one async
// discovery run. An in-flight run suppresses re-entry; the throttle marker is
// written before the crawl starts so rapid view changes cannot burst.
func (o *Orchestrator) dispatchDiscovery(ctx context.Context, id types.Identity, epoch uint64, inFlight bool) {
	if inFlight {
		return
	}
	if !o.throttle.TryTrigger(o.now()) {
		return
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if _, _, err := o.aggregator.Discover(ctx, id); err != nil && !errors.Is(err, discovery.ErrDiscoveryInFlight) {
			log.Printf("discovery failed for %s: %v", id.Email, err)
		}
		// Completion flips the in-flight bit, which is part of the dispatch
		// key, so the decision is re-evaluated.
		if o.sessionCurrent(epoch) {
			o.evaluate(ctx)
		}
	}()
}

// dispatchLoad runs the non-student path: the matching role loader, async.
func (o *Orchestrator) dispatchLoad(ctx context.Context, id types.Identity, epoch uint64) {
	loader, ok := o.loaders[id.Role]
	if !ok {
		log.Printf("no dashboard loader for role %s", id.Role)
		return
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if !o.sessionCurrent(epoch) {
			return
		}
		if err := loader.Load(ctx, id); err != nil {
			log.Printf("%s dashboard load failed for %s: %v", id.Role, id.Email, err)
		}
	}()
}

// sessionCurrent reports whether the session that started a dispatch is still
// the active one. Completions from superseded sessions are discarded.
func (o *Orchestrator) sessionCurrent(epoch uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.identity != nil && o.epoch == epoch
}

// Merged returns the merged opportunity view for the signed-in identity:
// static catalog entries followed by discovered ones, plus the live ID set
// and the boosted count.
func (o *Orchestrator) Merged(staticSet []types.Opportunity) ([]types.Opportunity, map[string]bool, int, error) {
	o.mu.Lock()
	signedIn := o.identity != nil
	o.mu.Unlock()
	if !signedIn {
		return nil, nil, 0, ErrSignedOut
	}

	discovered, _ := o.aggregator.Results()
	merged := discovery.MergedView(staticSet, discovered)
	return merged, discovery.LiveIDs(discovered), discovery.BoostedCount(discovered), nil
}

// Flush waits for all in-flight dispatches to settle. Used by tests and by
// the CLI before exit.
func (o *Orchestrator) Flush() {
	o.wg.Wait()
}
