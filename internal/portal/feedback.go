package portal

import (
	"context"
	"fmt"
)

// ActionApplied is the interaction this client reports to the ranking
// service; the wider liked/clicked vocabulary belongs to the portal web UI.
const ActionApplied = "applied"

// SendFeedback records a (user, opportunity, action) interaction with the
// ranking service. Callers treat it as fire-and-forget; no response payload
// is consumed beyond the error.
func (c *Client) SendFeedback(ctx context.Context, email, opportunityID, action string) error {
	body := map[string]string{
		"email":          email,
		"opportunity_id": opportunityID,
		"action":         action,
	}
	if err := c.post(ctx, "/ml/feedback", body, nil); err != nil {
		return fmt.Errorf("portal.SendFeedback: %w", err)
	}
	return nil
}
