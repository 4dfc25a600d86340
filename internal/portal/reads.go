package portal

import (
	"context"
	"fmt"
	"net/url"
)

// ListMyEvents returns the events owned by the given event manager.
func (c *Client) ListMyEvents(ctx context.Context, email string) ([]Event, error) {
	var resp struct {
		apiEnvelope
		Events []Event `json:"events"`
	}
	path := "/events/mine/" + url.PathEscape(email)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("portal.ListMyEvents: %w", err)
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: path, Message: resp.Message}
	}
	return resp.Events, nil
}

// ListRegistrations returns the registrations for one event.
func (c *Client) ListRegistrations(ctx context.Context, email, eventID string) ([]Registration, error) {
	var resp struct {
		apiEnvelope
		Registrations []Registration `json:"registrations"`
	}
	path := "/events/" + url.PathEscape(eventID) + "/registrations?managerEmail=" + url.QueryEscape(email)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("portal.ListRegistrations: %w", err)
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: path, Message: resp.Message}
	}
	return resp.Registrations, nil
}

// ListAlumniPosts returns the posts created by the given alumni user.
func (c *Client) ListAlumniPosts(ctx context.Context, email string) ([]AlumniPost, error) {
	var resp struct {
		apiEnvelope
		Posts []AlumniPost `json:"posts"`
	}
	path := "/alumni/" + url.PathEscape(email) + "/posts"
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("portal.ListAlumniPosts: %w", err)
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: path, Message: resp.Message}
	}
	return resp.Posts, nil
}

// ReferralInbox returns referral requests addressed to the given alumni user.
func (c *Client) ReferralInbox(ctx context.Context, email string) ([]ReferralRequest, error) {
	var resp struct {
		apiEnvelope
		Requests []ReferralRequest `json:"requests"`
	}
	path := "/referrals/inbox/" + url.PathEscape(email)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("portal.ReferralInbox: %w", err)
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: path, Message: resp.Message}
	}
	return resp.Requests, nil
}

// ListPlacements returns placement notices owned by the given management user.
func (c *Client) ListPlacements(ctx context.Context, email string) ([]Placement, error) {
	var resp struct {
		apiEnvelope
		Placements []Placement `json:"placements"`
	}
	path := "/placements/mine/" + url.PathEscape(email)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("portal.ListPlacements: %w", err)
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: path, Message: resp.Message}
	}
	return resp.Placements, nil
}

// ListInstructions returns instructions owned by the given management user.
func (c *Client) ListInstructions(ctx context.Context, email string) ([]Instruction, error) {
	var resp struct {
		apiEnvelope
		Instructions []Instruction `json:"instructions"`
	}
	path := "/management/instructions/mine/" + url.PathEscape(email)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("portal.ListInstructions: %w", err)
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: path, Message: resp.Message}
	}
	return resp.Instructions, nil
}

// ListNotes returns note uploads owned by the given management user.
func (c *Client) ListNotes(ctx context.Context, email string) ([]Note, error) {
	var resp struct {
		apiEnvelope
		Notes []Note `json:"notes"`
	}
	path := "/management/notes/mine/" + url.PathEscape(email)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("portal.ListNotes: %w", err)
	}
	if !resp.Success {
		return nil, &APIError{Endpoint: path, Message: resp.Message}
	}
	return resp.Notes, nil
}
