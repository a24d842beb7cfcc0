// Package gitlab wraps the GitLab API surface the review pipeline needs.
package gitlab

import (
	"fmt"

	"github.com/xanzy/go-gitlab"
)

// Client wraps the generated GitLab client with repository-introspection
// helpers.
type Client struct {
	*gitlab.Client
}

// NewClient creates a client authenticated with the service credential (a
// private token able to read every bound project).
func NewClient(baseURL, token string) (*Client, error) {
	cli, err := gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("set base url failed: %w", err)
	}
	return &Client{Client: cli}, nil
}
