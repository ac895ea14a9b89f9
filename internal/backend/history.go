package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abelbrown/sylfinder/internal/model"
)

// History returns every past submission of the session, in the order the
// service keeps them.
func (c *Client) History(ctx context.Context, token string) ([]model.HistoryEntry, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.HistoryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/history", nil), nil)
	if err != nil {
		return nil, fmt.Errorf("history: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var resp []historyEntry
	if err := c.call("history", req, &resp); err != nil {
		return nil, err
	}

	entries := make([]model.HistoryEntry, len(resp))
	for i, e := range resp {
		entries[i] = e.toModel()
	}
	return entries, nil
}
