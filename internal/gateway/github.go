// Package gateway provides a gateway to the GitHub search API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// Fetcher defines the behavior of a gateway for counting search results
// on GitHub.
type Fetcher interface {
	CountPRs(ctx context.Context, query string) (int, error)
	CountCommits(ctx context.Context, query string) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// Commit counts always go through the REST commit search endpoint, the
// only place GitHub exposes them. PR counts use the GraphQL search
// connection when a token is available and fall back to REST issue
// search otherwise.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client // nil when running unauthenticated
	logger        zerolog.Logger
}

// issueCountQuery asks the search connection only for its aggregate
// count, which avoids paging entirely.
type issueCountQuery struct {
	Search struct {
		IssueCount int
	} `graphql:"search(query: $query, type: ISSUE, first: 1)"`
}

// NewGitHubGateway is a constructor that creates a new instance of
// GitHubGateway. The token is optional; without one the public REST
// search quota applies.
func NewGitHubGateway(token string, timeout time.Duration, logger zerolog.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	httpClient := &http.Client{Transport: rateLimitWaiter, Timeout: timeout}
	g := &GitHubGateway{logger: logger}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient.Transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		}
		g.graphqlClient = githubv4.NewClient(httpClient)
	}
	g.restClient = github.NewClient(httpClient)
	return g, nil
}

// CountPRs returns the total number of pull requests matching query.
func (g *GitHubGateway) CountPRs(ctx context.Context, query string) (int, error) {
	if g.graphqlClient != nil {
		variables := map[string]interface{}{"query": githubv4.String(query)}
		var q issueCountQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return 0, classify(query, fmt.Errorf("failed to execute GraphQL search query: %w", err))
		}
		g.logger.Debug().Str("query", query).Int("count", q.Search.IssueCount).Msg("counted pull requests via GraphQL")
		return q.Search.IssueCount, nil
	}

	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := g.restClient.Search.Issues(ctx, query, opts)
	if err != nil {
		return 0, classify(query, fmt.Errorf("failed to search issues with REST API: %w", err))
	}
	if result.Total == nil {
		return 0, &FormatError{Query: query, Err: errors.New("missing total_count")}
	}
	g.logger.Debug().Str("query", query).Int("count", *result.Total).Msg("counted pull requests via REST")
	return *result.Total, nil
}

// CountCommits returns the total number of commits matching query.
func (g *GitHubGateway) CountCommits(ctx context.Context, query string) (int, error) {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := g.restClient.Search.Commits(ctx, query, opts)
	if err != nil {
		return 0, classify(query, fmt.Errorf("failed to search commits with REST API: %w", err))
	}
	if result.Total == nil {
		return 0, &FormatError{Query: query, Err: errors.New("missing total_count")}
	}
	g.logger.Debug().Str("query", query).Int("count", *result.Total).Msg("counted commits")
	return *result.Total, nil
}

// classify turns JSON decoding failures into FormatErrors so callers
// can tell a malformed response shape from an unreachable API.
func classify(query string, err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &FormatError{Query: query, Err: err}
	}
	return err
}
