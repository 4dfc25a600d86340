package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/karthik/placementhub/internal/portal"
	"github.com/karthik/placementhub/internal/types"
)

// Loader is the per-role load entry point. Load mutates the loader's state;
// the state is read-only to everything else. Calling Load with an identity of
// a different role is a silent no-op: stale dispatches after a role switch
// must not touch state.
type Loader interface {
	Role() types.Role
	Load(ctx context.Context, identity types.Identity) error
}

// AlumniReads are the collaborator reads the alumni dashboard needs.
type AlumniReads interface {
	ListAlumniPosts(ctx context.Context, email string) ([]portal.AlumniPost, error)
	ReferralInbox(ctx context.Context, email string) ([]portal.ReferralRequest, error)
}

// ManagementReads are the collaborator reads the management dashboard needs.
type ManagementReads interface {
	ListPlacements(ctx context.Context, email string) ([]portal.Placement, error)
	ListInstructions(ctx context.Context, email string) ([]portal.Instruction, error)
	ListNotes(ctx context.Context, email string) ([]portal.Note, error)
}

// EventReads are the collaborator reads the event-manager dashboard needs.
type EventReads interface {
	ListMyEvents(ctx context.Context, email string) ([]portal.Event, error)
	ListRegistrations(ctx context.Context, email, eventID string) ([]portal.Registration, error)
}

// AlumniLoader loads alumni posts and the referral inbox concurrently.
type AlumniLoader struct {
	base  loaderBase
	reads AlumniReads
	state AlumniState
}

// NewAlumniLoader creates a loader over the given reads.
func NewAlumniLoader(reads AlumniReads) *AlumniLoader {
	return &AlumniLoader{reads: reads}
}

// Role implements Loader.
func (l *AlumniLoader) Role() types.Role { return types.RoleAlumni }

// State returns a snapshot of the current alumni dashboard state.
func (l *AlumniLoader) State() AlumniState {
	l.base.mu.Lock()
	defer l.base.mu.Unlock()
	return l.state
}

// Invalidate discards the state and supersedes any in-flight load.
func (l *AlumniLoader) Invalidate() {
	l.base.mu.Lock()
	defer l.base.mu.Unlock()
	l.base.gen++
	l.state = AlumniState{}
}

// Load implements Loader.
func (l *AlumniLoader) Load(ctx context.Context, identity types.Identity) error {
	if identity.Role != types.RoleAlumni {
		return nil
	}
	gen, ok := l.base.begin(func() { l.state.Loading = true })
	if !ok {
		return nil
	}

	var posts []portal.AlumniPost
	var inbox []portal.ReferralRequest
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = l.reads.ListAlumniPosts(gCtx, identity.Email)
		return err
	})
	g.Go(func() error {
		var err error
		inbox, err = l.reads.ReferralInbox(gCtx, identity.Email)
		return err
	})
	err := g.Wait()

	l.base.finish(gen, func(now time.Time) {
		if err == nil {
			l.state.Posts = posts
			l.state.Inbox = inbox
		}
		// On failure previously committed records stay in place.
		l.state.Loading = false
		l.state.LastUpdatedAt = now
	})
	return err
}

// ManagementLoader loads placements, instructions, and notes concurrently.
type ManagementLoader struct {
	base  loaderBase
	reads ManagementReads
	state ManagementState
}

// NewManagementLoader creates a loader over the given reads.
func NewManagementLoader(reads ManagementReads) *ManagementLoader {
	return &ManagementLoader{reads: reads}
}

// Role implements Loader.
func (l *ManagementLoader) Role() types.Role { return types.RoleManagement }

// State returns a snapshot of the current management dashboard state.
func (l *ManagementLoader) State() ManagementState {
	l.base.mu.Lock()
	defer l.base.mu.Unlock()
	return l.state
}

// Invalidate discards the state and supersedes any in-flight load.
func (l *ManagementLoader) Invalidate() {
	l.base.mu.Lock()
	defer l.base.mu.Unlock()
	l.base.gen++
	l.state = ManagementState{}
}

// Load implements Loader.
func (l *ManagementLoader) Load(ctx context.Context, identity types.Identity) error {
	if identity.Role != types.RoleManagement {
		return nil
	}
	gen, ok := l.base.begin(func() { l.state.Loading = true })
	if !ok {
		return nil
	}

	var placements []portal.Placement
	var instructions []portal.Instruction
	var notes []portal.Note
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		placements, err = l.reads.ListPlacements(gCtx, identity.Email)
		return err
	})
	g.Go(func() error {
		var err error
		instructions, err = l.reads.ListInstructions(gCtx, identity.Email)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = l.reads.ListNotes(gCtx, identity.Email)
		return err
	})
	err := g.Wait()

	l.base.finish(gen, func(now time.Time) {
		if err == nil {
			l.state.Placements = placements
			l.state.Instructions = instructions
			l.state.Notes = notes
		}
		l.state.Loading = false
		l.state.LastUpdatedAt = now
	})
	return err
}

// EventManagerLoader performs the two-phase event-manager load: phase 1
// resolves the owned-event set, phase 2 fetches one registration count per
// event, all counts in parallel.
type EventManagerLoader struct {
	base  loaderBase
	reads EventReads
	state EventManagerState
}

// NewEventManagerLoader creates a loader over the given reads.
func NewEventManagerLoader(reads EventReads) *EventManagerLoader {
	return &EventManagerLoader{reads: reads}
}

// Role implements Loader.
func (l *EventManagerLoader) Role() types.Role { return types.RoleEventManager }

// State returns a snapshot of the current event-manager dashboard state.
func (l *EventManagerLoader) State() EventManagerState {
	l.base.mu.Lock()
	defer l.base.mu.Unlock()
	return l.state
}

// Invalidate discards the state and supersedes any in-flight load.
func (l *EventManagerLoader) Invalidate() {
	l.base.mu.Lock()
	defer l.base.mu.Unlock()
	l.base.gen++
	l.state = EventManagerState{}
}

// Load implements Loader.
func (l *EventManagerLoader) Load(ctx context.Context, identity types.Identity) error {
	if identity.Role != types.RoleEventManager {
		return nil
	}
	gen, ok := l.base.begin(func() { l.state.Loading = true })
	if !ok {
		return nil
	}

	events, err := l.reads.ListMyEvents(ctx, identity.Email)
	var counts map[string]int
	if err == nil {
		// Phase 2 starts only once the full event set is known. Each
		// goroutine owns one slot, so no extra locking is needed.
		slots := make([]int, len(events))
		g, gCtx := errgroup.WithContext(ctx)
		for i, ev := range events {
			g.Go(func() error {
				regs, rerr := l.reads.ListRegistrations(gCtx, identity.Email, ev.ID)
				if rerr != nil {
					return rerr
				}
				slots[i] = len(regs)
				return nil
			})
		}
		err = g.Wait()
		if err == nil {
			counts = make(map[string]int, len(events))
			for i, ev := range events {
				counts[ev.ID] = slots[i]
			}
		}
	}

	l.base.finish(gen, func(now time.Time) {
		if err == nil {
			l.state.Events = events
			l.state.RegistrationCounts = counts
		}
		l.state.Loading = false
		l.state.LastUpdatedAt = now
	})
	return err
}

// loaderBase carries the mutex and generation counter shared by all loaders.
// The generation check at commit time is what stops a completed stale load
// from overwriting state that belongs to a newer identity.
type loaderBase struct {
	mu  sync.Mutex
	gen uint64
}

// begin marks the state loading under the lock and returns the generation the
// load belongs to. The ok result is always true today; it keeps the call
// shape symmetric with finish.
func (b *loaderBase) begin(markLoading func()) (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	markLoading()
	return b.gen, true
}

// finish commits a completed load unless the loader was invalidated while
// the load was in flight, in which case the result is silently discarded.
func (b *loaderBase) finish(gen uint64, commit func(now time.Time)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen != gen {
		return
	}
	commit(time.Now())
}
