package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/karthik/placementhub/internal/dashboard"
	"github.com/karthik/placementhub/internal/discovery"
	"github.com/karthik/placementhub/internal/portal"
	"github.com/karthik/placementhub/internal/throttle"
	"github.com/karthik/placementhub/internal/types"
)

type fakeAuth struct {
	session *portal.Session
	err     error
}

func (a *fakeAuth) Login(_ context.Context, _ types.LoginRequest) (*portal.Session, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.session, nil
}

type memStore struct {
	mu       sync.Mutex
	identity *types.Identity
	token    string
	cleared  bool
}

func (s *memStore) Load() (*types.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil, nil
	}
	id := *s.identity
	return &id, nil
}

func (s *memStore) Save(identity types.Identity, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &identity
	s.token = accessToken
	s.cleared = false
	return nil
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.token = ""
	s.cleared = true
	return nil
}

type fakeLoader struct {
	mu          sync.Mutex
	role        types.Role
	loads       []string
	invalidated bool
}

func (l *fakeLoader) Role() types.Role { return l.role }

func (l *fakeLoader) Load(_ context.Context, identity types.Identity) error {
	if identity.Role != l.role {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads = append(l.loads, identity.Email)
	return nil
}

func (l *fakeLoader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalidated = true
}

func (l *fakeLoader) loadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.loads)
}

type countingCrawler struct {
	mu    sync.Mutex
	calls int
	opps  []types.Opportunity
	err   error
}

func (c *countingCrawler) Discover(_ context.Context, _ types.Identity) ([]types.Opportunity, *types.CrawlMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, nil, c.err
	}
	return c.opps, nil, nil
}

func (c *countingCrawler) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func studentSession() *portal.Session {
	return &portal.Session{
		Identity:    types.Identity{ID: "u-1", Email: "priya@kongu.edu", Role: types.RoleStudent},
		AccessToken: "token-123",
	}
}

func newTestOrchestrator(auth Authenticator, crawler discovery.Crawler, loaders ...Loader) (*Orchestrator, *memStore) {
	store := &memStore{}
	ctrl := throttle.NewController(&throttle.MemoryMarker{})
	agg := discovery.NewAggregator(crawler)
	return New(auth, store, ctrl, agg, loaders...), store
}

func TestSignInValidatesRequest(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeAuth{}, &countingCrawler{})

	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "not-an-email", Password: "pw"}); err == nil {
		t.Fatal("expected validation error")
	}
	if o.Identity() != nil {
		t.Error("failed sign-in left an identity behind")
	}
}

func TestSignInNormalizesAndPersists(t *testing.T) {
	auth := &fakeAuth{session: &portal.Session{
		Identity:    types.Identity{ID: "u-1", Email: "priya@kongu.edu"},
		AccessToken: "token-123",
	}}
	o, store := newTestOrchestrator(auth, &countingCrawler{})

	id, err := o.SignIn(context.Background(), types.LoginRequest{Email: "priya@kongu.edu", Password: "pw"})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	o.Flush()

	if id.Role != types.RoleStudent {
		t.Errorf("missing role not defaulted to student, got %s", id.Role)
	}
	if id.Department != types.DefaultDepartment {
		t.Errorf("department = %q", id.Department)
	}
	if len(id.Skills) == 0 {
		t.Error("skills not defaulted")
	}
	if store.identity == nil || store.token != "token-123" {
		t.Error("session not persisted")
	}
	if o.View() != ViewDashboard {
		t.Errorf("view after sign-in = %q", o.View())
	}
}

func TestStudentSignInTriggersDiscoveryOnce(t *testing.T) {
	crawler := &countingCrawler{opps: []types.Opportunity{{ID: "rt-1", Title: "Engineer"}}}
	o, _ := newTestOrchestrator(&fakeAuth{session: studentSession()}, crawler)

	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "priya@kongu.edu", Password: "pw"}); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	o.Flush()

	// Rapid view flapping within the throttle window must not re-crawl.
	o.SetView(context.Background(), ViewOpportunities)
	o.SetView(context.Background(), ViewDashboard)
	o.SetView(context.Background(), ViewOpportunities)
	o.SetView(context.Background(), ViewDashboard)
	o.Flush()

	if got := crawler.callCount(); got != 1 {
		t.Fatalf("expected exactly 1 discovery run, got %d", got)
	}
}

func TestNonStudentSignInDispatchesLoader(t *testing.T) {
	alumni := &fakeLoader{role: types.RoleAlumni}
	auth := &fakeAuth{session: &portal.Session{
		Identity: types.Identity{ID: "u-2", Email: "raj@alumni.kongu.edu", Role: types.RoleAlumni},
	}}
	crawler := &countingCrawler{}
	o, _ := newTestOrchestrator(auth, crawler, alumni)

	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "raj@alumni.kongu.edu", Password: "pw"}); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	o.Flush()

	if alumni.loadCount() != 1 {
		t.Fatalf("alumni loader loads = %d", alumni.loadCount())
	}
	if crawler.callCount() != 0 {
		t.Error("non-student sign-in must not trigger discovery")
	}
}

func TestSignOutDropsAllSessionState(t *testing.T) {
	alumni := &fakeLoader{role: types.RoleAlumni}
	crawler := &countingCrawler{opps: []types.Opportunity{{ID: "rt-1"}}}
	o, store := newTestOrchestrator(&fakeAuth{session: studentSession()}, crawler, alumni)

	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "priya@kongu.edu", Password: "pw"}); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	o.Flush()

	if err := o.SignOut(); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	if o.Identity() != nil {
		t.Error("identity still reachable after sign-out")
	}
	if !alumni.invalidated {
		t.Error("dashboard loader not invalidated")
	}
	if _, _, _, err := o.Merged(nil); !errors.Is(err, ErrSignedOut) {
		t.Errorf("Merged after sign-out: %v", err)
	}
	if !store.cleared {
		t.Error("identity store not cleared")
	}
	if id, _ := store.Load(); id != nil {
		t.Error("cleared sentinel not observed on next load")
	}
}

func TestDiscoveryFailureIsNonFatal(t *testing.T) {
	crawler := &countingCrawler{err: errors.New("all listing sources failed")}
	o, _ := newTestOrchestrator(&fakeAuth{session: studentSession()}, crawler)

	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "priya@kongu.edu", Password: "pw"}); err != nil {
		t.Fatalf("SignIn failed despite crawl failure: %v", err)
	}
	o.Flush()

	merged, live, boosted, err := o.Merged([]types.Opportunity{{ID: "s-1"}})
	if err != nil {
		t.Fatalf("Merged failed: %v", err)
	}
	if len(merged) != 1 || len(live) != 0 || boosted != 0 {
		t.Errorf("merged=%d live=%d boosted=%d", len(merged), len(live), boosted)
	}
}

func TestMergedViewClassifiesLiveness(t *testing.T) {
	crawler := &countingCrawler{opps: []types.Opportunity{
		{ID: "s-1", MatchMethod: "GROQ-rank"},
		{ID: "rt-2", MatchMethod: "manual"},
	}}
	o, _ := newTestOrchestrator(&fakeAuth{session: studentSession()}, crawler)

	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "priya@kongu.edu", Password: "pw"}); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	o.Flush()

	staticSet := []types.Opportunity{{ID: "s-1"}, {ID: "s-9"}}
	merged, live, boosted, err := o.Merged(staticSet)
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 4 {
		t.Errorf("merged length = %d, want static+discovered = 4", len(merged))
	}
	// The discovered copy of s-1 marks the ID live even though the static
	// catalog carries it too.
	if !live["s-1"] || !live["rt-2"] || live["s-9"] {
		t.Errorf("live set = %v", live)
	}
	if boosted != 1 {
		t.Errorf("boosted = %d", boosted)
	}
}

func TestRestoreEntersSignedIn(t *testing.T) {
	store := &memStore{}
	_ = store.Save(types.Identity{ID: "u-2", Email: "raj@alumni.kongu.edu", Role: types.RoleAlumni}, "token")

	alumni := &fakeLoader{role: types.RoleAlumni}
	ctrl := throttle.NewController(&throttle.MemoryMarker{})
	agg := discovery.NewAggregator(&countingCrawler{})
	o := New(&fakeAuth{}, store, ctrl, agg, alumni)

	id, err := o.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	o.Flush()

	if id == nil || id.Email != "raj@alumni.kongu.edu" {
		t.Fatalf("restored identity = %+v", id)
	}
	if alumni.loadCount() != 1 {
		t.Errorf("restore did not dispatch the role loader, loads = %d", alumni.loadCount())
	}
}

func TestRestoreWithoutSessionStaysSignedOut(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeAuth{}, &countingCrawler{})

	id, err := o.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if id != nil {
		t.Errorf("expected signed-out restore, got %+v", id)
	}
}

func TestStaleLoaderCompletionAfterRoleSwitch(t *testing.T) {
	// A load dispatched for one role must not touch state once the identity
	// has changed; the loader's own role guard enforces it.
	alumni := &fakeLoader{role: types.RoleAlumni}
	if err := alumni.Load(context.Background(), types.Identity{Email: "x@kongu.edu", Role: types.RoleManagement}); err != nil {
		t.Fatal(err)
	}
	if alumni.loadCount() != 0 {
		t.Error("role-mismatched load mutated state")
	}
}

// slowPlacementReads blocks ListPlacements for one configured email until
// released, so a load for that identity can be held in flight.
type slowPlacementReads struct {
	slowEmail  string
	started    chan struct{}
	release    chan struct{}
	placements map[string][]portal.Placement
}

func (r *slowPlacementReads) ListPlacements(_ context.Context, email string) ([]portal.Placement, error) {
	if email == r.slowEmail {
		close(r.started)
		<-r.release
	}
	return r.placements[email], nil
}

func (r *slowPlacementReads) ListInstructions(_ context.Context, _ string) ([]portal.Instruction, error) {
	return nil, nil
}

func (r *slowPlacementReads) ListNotes(_ context.Context, _ string) ([]portal.Note, error) {
	return nil, nil
}

func managementSession(email string) *portal.Session {
	return &portal.Session{
		Identity: types.Identity{ID: email, Email: email, Role: types.RoleManagement},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 200; i++ {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func TestSignInReplacementDiscardsInFlightLoad(t *testing.T) {
	reads := &slowPlacementReads{
		slowEmail: "a@kongu.edu",
		started:   make(chan struct{}),
		release:   make(chan struct{}),
		placements: map[string][]portal.Placement{
			"a@kongu.edu": {{ID: "p-old", OwnerEmail: "a@kongu.edu"}},
			"b@kongu.edu": {{ID: "p-new", OwnerEmail: "b@kongu.edu"}},
		},
	}
	mgmt := dashboard.NewManagementLoader(reads)
	auth := &fakeAuth{session: managementSession("a@kongu.edu")}
	ctrl := throttle.NewController(&throttle.MemoryMarker{})
	agg := discovery.NewAggregator(&countingCrawler{})
	o := New(auth, &memStore{}, ctrl, agg, mgmt)

	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "a@kongu.edu", Password: "pw"}); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	<-reads.started

	// The second user signs in while the first user's load is still in
	// flight. Both share the management role, so the role guard alone cannot
	// catch the stale commit.
	auth.session = managementSession("b@kongu.edu")
	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "b@kongu.edu", Password: "pw"}); err != nil {
		t.Fatalf("second SignIn failed: %v", err)
	}

	waitFor(t, func() bool {
		s := mgmt.State()
		return len(s.Placements) == 1 && s.Placements[0].ID == "p-new"
	})

	close(reads.release)
	o.Flush()

	state := mgmt.State()
	if len(state.Placements) != 1 || state.Placements[0].ID != "p-new" {
		t.Fatalf("first user's stale load overwrote the second user's dashboard: %+v", state.Placements)
	}
}

func TestSignInReplacementResetsDiscovery(t *testing.T) {
	crawler := &countingCrawler{opps: []types.Opportunity{{ID: "rt-a"}}}
	auth := &fakeAuth{session: studentSession()}
	o, _ := newTestOrchestrator(auth, crawler)

	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "priya@kongu.edu", Password: "pw"}); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	o.Flush()

	if _, live, _, err := o.Merged(nil); err != nil || !live["rt-a"] {
		t.Fatalf("first user's discovery not committed: live=%v err=%v", live, err)
	}

	auth.session = &portal.Session{
		Identity: types.Identity{ID: "u-3", Email: "arun@kongu.edu", Role: types.RoleStudent},
	}
	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "arun@kongu.edu", Password: "pw"}); err != nil {
		t.Fatalf("second SignIn failed: %v", err)
	}
	o.Flush()

	// The second student inherits nothing: the throttle window suppresses an
	// immediate re-crawl and the first user's results were discarded.
	if _, live, _, err := o.Merged(nil); err != nil || len(live) != 0 {
		t.Fatalf("first user's discovery leaked into the second session: live=%v err=%v", live, err)
	}
}

func TestThrottleWindowAllowsLaterRetrigger(t *testing.T) {
	crawler := &countingCrawler{}
	store := &memStore{}
	ctrl := throttle.NewControllerWithInterval(&throttle.MemoryMarker{}, 10*time.Millisecond)
	agg := discovery.NewAggregator(crawler)
	o := New(&fakeAuth{session: studentSession()}, store, ctrl, agg)

	if _, err := o.SignIn(context.Background(), types.LoginRequest{Email: "priya@kongu.edu", Password: "pw"}); err != nil {
		t.Fatal(err)
	}
	o.Flush()

	time.Sleep(20 * time.Millisecond)
	o.SetView(context.Background(), ViewOpportunities)
	o.SetView(context.Background(), ViewDashboard)
	o.Flush()

	if got := crawler.callCount(); got != 2 {
		t.Fatalf("expected a second discovery after the window elapsed, got %d", got)
	}
}
