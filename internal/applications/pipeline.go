package applications

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/karthik/placementhub/internal/portal"
	"github.com/karthik/placementhub/internal/types"
)

// FeedbackSink is the external ranking collaborator. Emissions are
// fire-and-forget: the pipeline never consumes a result beyond logging.
type FeedbackSink interface {
	SendFeedback(ctx context.Context, email, opportunityID, action string) error
}

// URLOpener signals the environment to open an external source reference,
// normally in the user's browser. Presentation-layer side effect; injected
// so tests can skip it.
type URLOpener func(url string) error

// Pipeline is the application-tracking pipeline. Apply is idempotent per
// (student, opportunity) pair.
type Pipeline struct {
	store    *Store
	feedback FeedbackSink
	openURL  URLOpener
	wg       sync.WaitGroup
}

// NewPipeline wires the pipeline. openURL may be nil to disable browser
// navigation entirely.
func NewPipeline(store *Store, feedback FeedbackSink, openURL URLOpener) *Pipeline {
	return &Pipeline{store: store, feedback: feedback, openURL: openURL}
}

// Apply records that the identity applied to the opportunity.
//
// If an application already exists for the pair, the existing record is
// returned unchanged: no duplicate row, no second feedback emission, no
// browser navigation. On success the new application starts in
// StatusSubmitted, a feedback event (email, opportunityID, "applied") is
// dispatched without being awaited, and the opportunity's source URL is
// opened when present. Side-effect failures never roll back the application.
func (p *Pipeline) Apply(ctx context.Context, identity types.Identity, opp types.Opportunity) (*types.Application, error) {
	existing, err := p.store.Get(ctx, identity.ID, opp.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	app := &types.Application{
		ID:            uuid.New(),
		OpportunityID: opp.ID,
		StudentID:     identity.ID,
		AppliedDate:   time.Now(),
		Status:        types.StatusSubmitted,
	}
	if err := p.store.Insert(ctx, app); err != nil {
		// A racing Apply for the same pair loses the UNIQUE constraint;
		// resolve it as the idempotent case.
		if existing, getErr := p.store.Get(ctx, identity.ID, opp.ID); getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.feedback.SendFeedback(context.Background(), identity.Email, opp.ID, portal.ActionApplied); err != nil {
			log.Printf("feedback emission for %s failed: %v", opp.ID, err)
		}
	}()

	if p.openURL != nil && opp.SourceURL != "" {
		if err := p.openURL(opp.SourceURL); err != nil {
			log.Printf("failed to open %s: %v", opp.SourceURL, err)
		}
	}

	return app, nil
}

// List returns the identity's applications in insertion order.
func (p *Pipeline) List(ctx context.Context, identity types.Identity) ([]types.Application, error) {
	return p.store.ListByStudent(ctx, identity.ID)
}

// Flush blocks until in-flight feedback emissions finish. Tests use it to
// observe the fire-and-forget side effect deterministically.
func (p *Pipeline) Flush() {
	p.wg.Wait()
}
