package snapshot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"

	// Caps mirror what the game can reasonably surface as quests.
	maxIssues = 20
	maxPulls  = 10
)

// Sentinel errors for the distinct fetch failure kinds. Callers switch on
// these with errors.Is; anything else is a network-level failure.
var (
	ErrNotFound    = errors.New("repository not found")
	ErrRateLimited = errors.New("rate limited by GitHub")
)

// Client fetches repository snapshots from the GitHub REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a fetch client. token may be empty for anonymous access;
// baseURL may be empty to use api.github.com.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch retrieves a complete snapshot for owner/name. It either returns a
// fully-populated snapshot or an error - never a partial result, so a
// cancelled fetch can't leak half a world into generation.
func (c *Client) Fetch(ctx context.Context, owner, name string) (*Snapshot, error) {
	snap := &Snapshot{Owner: owner, Name: name}

	var meta struct {
		StargazersCount int    `json:"stargazers_count"`
		ForksCount      int    `json:"forks_count"`
		SubscribersCount int   `json:"subscribers_count"`
		DefaultBranch   string `json:"default_branch"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s", owner, name), &meta); err != nil {
		return nil, err
	}
	snap.Stars = meta.StargazersCount
	snap.Forks = meta.ForksCount
	snap.Watchers = meta.SubscribersCount

	readme, err := c.fetchReadme(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	snap.README = readme

	branch := meta.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	files, err := c.fetchTree(ctx, owner, name, branch)
	if err != nil {
		return nil, err
	}
	snap.Files = files

	langs := map[string]int64{}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/languages", owner, name), &langs); err != nil {
		return nil, err
	}
	snap.Langs = langs

	issues, pulls, err := c.fetchIssuesAndPulls(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	snap.Issues = issues
	snap.Pulls = pulls

	return snap, nil
}

func (c *Client) fetchReadme(ctx context.Context, owner, name string) (string, error) {
	var body struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/readme", owner, name), &body)
	if errors.Is(err, ErrNotFound) {
		// Missing README is not an error; the extractor degrades to defaults.
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if body.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(body.Content)
		if err != nil {
			return "", fmt.Errorf("decode readme: %w", err)
		}
		return string(decoded), nil
	}
	return body.Content, nil
}

func (c *Client) fetchTree(ctx context.Context, owner, name, branch string) ([]FileEntry, error) {
	var tree struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
			Size int64  `json:"size"`
		} `json:"tree"`
	}
	err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1", owner, name, branch), &tree)
	if errors.Is(err, ErrNotFound) {
		// Empty repositories have no tree on the default branch.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []FileEntry
	for _, entry := range tree.Tree {
		if entry.Type != "blob" {
			continue
		}
		files = append(files, FileEntry{Path: entry.Path, Size: entry.Size})
	}
	return files, nil
}

func (c *Client) fetchIssuesAndPulls(ctx context.Context, owner, name string) ([]Issue, []PullRequest, error) {
	// The issues endpoint returns PRs too; the pull_request key tells them apart.
	var raw []struct {
		Number      int    `json:"number"`
		Title       string `json:"title"`
		Body        string `json:"body"`
		Comments    int    `json:"comments"`
		Labels      []struct {
			Name string `json:"name"`
		} `json:"labels"`
		PullRequest *struct{} `json:"pull_request"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/issues?state=open&per_page=100", owner, name), &raw); err != nil {
		return nil, nil, err
	}

	var issues []Issue
	var pulls []PullRequest
	for _, item := range raw {
		if item.PullRequest != nil {
			if len(pulls) >= maxPulls {
				continue
			}
			pr := PullRequest{
				Number:   item.Number,
				Title:    item.Title,
				Body:     item.Body,
				Comments: item.Comments,
			}
			// Diff size requires the pulls endpoint; skip silently on failure
			// since additions/deletions only tune boss difficulty.
			var detail struct {
				Additions int `json:"additions"`
				Deletions int `json:"deletions"`
			}
			if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, name, item.Number), &detail); err == nil {
				pr.Additions = detail.Additions
				pr.Deletions = detail.Deletions
			}
			pulls = append(pulls, pr)
			continue
		}
		if len(issues) >= maxIssues {
			continue
		}
		issue := Issue{
			Number:   item.Number,
			Title:    item.Title,
			Body:     item.Body,
			Comments: item.Comments,
		}
		for _, label := range item.Labels {
			issue.Labels = append(issue.Labels, label.Name)
		}
		issues = append(issues, issue)
	}
	return issues, pulls, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			return ErrRateLimited
		}
		return fmt.Errorf("fetch %s: status %d", path, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("fetch %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
