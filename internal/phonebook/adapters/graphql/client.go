package graphql

import (
	"context"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
)

// Client wraps the GraphQL transport to the external contact repository.
// Every request carries the Hasura admin secret header when one is
// configured.
type Client struct {
	gql         *graphql.Client
	adminSecret string
}

// NewClient creates a Client for the given Hasura-style endpoint.
func NewClient(endpoint, adminSecret string, timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		gql:         graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient)),
		adminSecret: adminSecret,
	}
}

func (c *Client) newRequest(query string) *graphql.Request {
	req := graphql.NewRequest(query)
	if c.adminSecret != "" {
		req.Header.Set("x-hasura-admin-secret", c.adminSecret)
	}
	return req
}

// Run executes the request and decodes the response data into out.
// Transport and GraphQL-level errors are returned as-is; callers must not
// treat a failed read as an empty result.
func (c *Client) Run(ctx context.Context, req *graphql.Request, out interface{}) error {
	return c.gql.Run(ctx, req, out)
}
