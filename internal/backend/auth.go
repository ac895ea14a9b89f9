package backend

import (
	"context"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "login", "/login", email, password)
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "register", "/register", email, password)
}

func (c *Client) authenticate(ctx context.Context, op, path, email, password string) (string, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.AuthTimeout)
	defer cancel()

	body, err := jsonBody(credentialsRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), body)
	if err != nil {
		return "", fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp tokenResponse
	if err := c.call(op, req, &resp); err != nil {
		c.log.Info("authentication failed", "op", op, "err", err)
		return "", err
	}
	c.log.Info("authenticated", "op", op)
	return resp.Token, nil
}
