package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/karthik/placementhub/internal/portal"
	"github.com/karthik/placementhub/internal/types"
)

type fakeReads struct {
	mu            sync.Mutex
	posts         []portal.AlumniPost
	inbox         []portal.ReferralRequest
	placements    []portal.Placement
	instructions  []portal.Instruction
	notes         []portal.Note
	events        []portal.Event
	registrations map[string][]portal.Registration
	failAll       bool
	failNotes     bool
	calls         []string
}

func (f *fakeReads) record(name string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.failAll {
		return errors.New("portal unavailable")
	}
	return nil
}

func (f *fakeReads) ListAlumniPosts(_ context.Context, _ string) ([]portal.AlumniPost, error) {
	if err := f.record("posts"); err != nil {
		return nil, err
	}
	return f.posts, nil
}

func (f *fakeReads) ReferralInbox(_ context.Context, _ string) ([]portal.ReferralRequest, error) {
	if err := f.record("inbox"); err != nil {
		return nil, err
	}
	return f.inbox, nil
}

func (f *fakeReads) ListPlacements(_ context.Context, _ string) ([]portal.Placement, error) {
	if err := f.record("placements"); err != nil {
		return nil, err
	}
	return f.placements, nil
}

func (f *fakeReads) ListInstructions(_ context.Context, _ string) ([]portal.Instruction, error) {
	if err := f.record("instructions"); err != nil {
		return nil, err
	}
	return f.instructions, nil
}

func (f *fakeReads) ListNotes(_ context.Context, _ string) ([]portal.Note, error) {
	if err := f.record("notes"); err != nil {
		return nil, err
	}
	if f.failNotes {
		return nil, errors.New("notes read rejected")
	}
	return f.notes, nil
}

func (f *fakeReads) ListMyEvents(_ context.Context, _ string) ([]portal.Event, error) {
	if err := f.record("events"); err != nil {
		return nil, err
	}
	return f.events, nil
}

func (f *fakeReads) ListRegistrations(_ context.Context, _, eventID string) ([]portal.Registration, error) {
	if err := f.record("registrations:" + eventID); err != nil {
		return nil, err
	}
	return f.registrations[eventID], nil
}

func TestRoleGuardIsNoOp(t *testing.T) {
	reads := &fakeReads{}
	l := NewManagementLoader(reads)

	student := types.Identity{Email: "priya@kongu.edu", Role: types.RoleStudent}
	if err := l.Load(context.Background(), student); err != nil {
		t.Fatalf("mismatched-role load must not error: %v", err)
	}
	if len(reads.calls) != 0 {
		t.Error("mismatched-role load must not issue reads")
	}
	st := l.State()
	if st.Loading || !st.LastUpdatedAt.IsZero() {
		t.Errorf("state must be untouched, got %+v", st)
	}
}

func TestManagementFanOut(t *testing.T) {
	reads := &fakeReads{
		placements:   []portal.Placement{{ID: "p1"}},
		instructions: []portal.Instruction{{ID: "i1"}, {ID: "i2"}},
		notes:        []portal.Note{{ID: "n1"}},
	}
	l := NewManagementLoader(reads)
	mgmt := types.Identity{Email: "tpo@kongu.edu", Role: types.RoleManagement}

	if err := l.Load(context.Background(), mgmt); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	st := l.State()
	if st.Loading {
		t.Error("loading flag not cleared")
	}
	if st.LastUpdatedAt.IsZero() {
		t.Error("lastUpdatedAt not stamped")
	}
	if len(st.Placements) != 1 || len(st.Instructions) != 2 || len(st.Notes) != 1 {
		t.Errorf("unexpected records: %+v", st)
	}
	if len(reads.calls) != 3 {
		t.Errorf("expected 3 reads, got %v", reads.calls)
	}
}

func TestLoaderFailureKeepsRecords(t *testing.T) {
	reads := &fakeReads{
		placements:   []portal.Placement{{ID: "p1"}},
		instructions: []portal.Instruction{{ID: "i1"}},
		notes:        []portal.Note{{ID: "n1"}},
	}
	l := NewManagementLoader(reads)
	mgmt := types.Identity{Email: "tpo@kongu.edu", Role: types.RoleManagement}

	if err := l.Load(context.Background(), mgmt); err != nil {
		t.Fatalf("seed load failed: %v", err)
	}
	first := l.State().LastUpdatedAt

	reads.failNotes = true
	if err := l.Load(context.Background(), mgmt); err == nil {
		t.Fatal("expected load error when a read rejects")
	}

	st := l.State()
	if st.Loading {
		t.Error("failed load left state loading forever")
	}
	if !st.LastUpdatedAt.After(first) && !st.LastUpdatedAt.Equal(first) {
		t.Error("failed load must still stamp lastUpdatedAt")
	}
	// Retention policy: previously committed records stay.
	if len(st.Placements) != 1 || len(st.Instructions) != 1 || len(st.Notes) != 1 {
		t.Errorf("failure must not drop previously committed records: %+v", st)
	}
}

func TestEventManagerTwoPhaseFanOut(t *testing.T) {
	reads := &fakeReads{
		events: []portal.Event{{ID: "event1"}, {ID: "event2"}, {ID: "event3"}},
		registrations: map[string][]portal.Registration{
			"event1": {{ID: "r1"}, {ID: "r2"}},
			"event2": {},
			"event3": {{ID: "r3"}, {ID: "r4"}, {ID: "r5"}, {ID: "r6"}, {ID: "r7"}},
		},
	}
	l := NewEventManagerLoader(reads)
	mgr := types.Identity{Email: "mgr@kongu.edu", Role: types.RoleEventManager}

	if err := l.Load(context.Background(), mgr); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	st := l.State()
	want := map[string]int{"event1": 2, "event2": 0, "event3": 5}
	if len(st.RegistrationCounts) != len(want) {
		t.Fatalf("counts = %v, want %v", st.RegistrationCounts, want)
	}
	for id, n := range want {
		if st.RegistrationCounts[id] != n {
			t.Errorf("count[%s] = %d, want %d", id, st.RegistrationCounts[id], n)
		}
	}

	// Phase ordering: the event list read precedes every count read.
	if reads.calls[0] != "events" {
		t.Errorf("phase 1 must run first, calls = %v", reads.calls)
	}
	if len(reads.calls) != 4 {
		t.Errorf("expected 1 event read + 3 count reads, got %v", reads.calls)
	}
}

func TestAlumniLoad(t *testing.T) {
	reads := &fakeReads{
		posts: []portal.AlumniPost{{ID: "a1"}},
		inbox: []portal.ReferralRequest{{ID: "q1"}, {ID: "q2"}},
	}
	l := NewAlumniLoader(reads)
	alum := types.Identity{Email: "alum@kongu.edu", Role: types.RoleAlumni}

	if err := l.Load(context.Background(), alum); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	st := l.State()
	if len(st.Posts) != 1 || len(st.Inbox) != 2 {
		t.Errorf("unexpected state: %+v", st)
	}
}

func TestInvalidateDiscardsStaleCommit(t *testing.T) {
	reads := &fakeReads{placements: []portal.Placement{{ID: "p1"}}}
	l := NewManagementLoader(reads)

	// Simulate a load that completes after the identity changed: begin,
	// invalidate mid-flight, then let the load try to commit.
	gen, _ := l.base.begin(func() { l.state.Loading = true })
	l.Invalidate()
	l.base.finish(gen, func(now time.Time) {
		l.state.Placements = []portal.Placement{{ID: "stale"}}
		l.state.Loading = false
		l.state.LastUpdatedAt = now
	})

	st := l.State()
	if st.Loading || len(st.Placements) != 0 || !st.LastUpdatedAt.IsZero() {
		t.Errorf("stale commit must be discarded, got %+v", st)
	}
}
