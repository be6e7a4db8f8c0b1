package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/erazemk/resell/internal/model"
)

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error) {
	switch {
	case strings.TrimSpace(reg.Username) == "":
		return nil, fmt.Errorf("%w: %w", ErrRegistration, errMissingUsername)
	case reg.Password == "":
		return nil, fmt.Errorf("%w: %w", ErrRegistration, errMissingPassword)
	case strings.TrimSpace(reg.Email) == "":
		return nil, fmt.Errorf("%w: %w", ErrRegistration, errMissingEmail)
	}

	var ar model.AuthResponse
	err := c.do(ctx, &call{
		op:       "register",
		sentinel: ErrRegistration,
		method:   http.MethodPost,
		path:     "/register",
		body:     reg,
		out:      &ar,
	})
	if err != nil {
		return nil, err
	}
	return &ar, nil
}

// Authenticate exchanges credentials for a token.
func (c *Client) Authenticate(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	switch {
	case strings.TrimSpace(creds.Username) == "":
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, errMissingUsername)
	case creds.Password == "":
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, errMissingPassword)
	}

	var ar model.AuthResponse
	err := c.do(ctx, &call{
		op:       "authenticate",
		sentinel: ErrAuthentication,
		method:   http.MethodPost,
		path:     "/authenticate",
		body:     creds,
		out:      &ar,
	})
	if err != nil {
		return nil, err
	}
	return &ar, nil
}

// Revoke invalidates token on the server. It uses token directly rather
// than the client's TokenSource so it can run while a session is torn down.
func (c *Client) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("revoke: %w", ErrAuthRequired)
	}
	return c.do(ctx, &call{
		op:       "revoke",
		sentinel: ErrAuthentication,
		method:   http.MethodPost,
		path:     "/logout",
		bearer:   token,
	})
}

// Me returns the logged-in account's profile.
func (c *Client) Me(ctx context.Context) (*model.Profile, error) {
	var profile model.Profile
	cl := &call{
		op:       "me",
		sentinel: ErrFetch,
		method:   http.MethodGet,
		path:     "/me",
		out:      &profile,
	}
	if err := c.authorize(cl); err != nil {
		return nil, err
	}
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return &profile, nil
}
