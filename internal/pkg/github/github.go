package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const apiURL = "https://api.github.com"

// Project files live directly or nested under this directory.
const (
	projectDir    = "games/"
	projectSuffix = ".js"
)

// ErrInvalidReference is returned for URLs that do not point at a pull request.
var ErrInvalidReference = errors.New("invalid GitHub pull request URL")

var rePullRequest = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

// UpstreamError is a non-200 answer from the GitHub API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("GitHub API responded with status code %d", e.StatusCode)
}

type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

type pullRequestFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

type Client struct {
	token  string
	client *http.Client
}

// New creates a client. An empty token makes unauthenticated requests.
func New(token string) *Client {
	return &Client{
		token: token,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// UseDefaultClient switches to http.DefaultClient so tests can intercept requests.
func (c *Client) UseDefaultClient() {
	c.client = http.DefaultClient
}

// ParsePullRequestURL extracts owner, repo and number from
// https://github.com/<owner>/<repo>/pull/<number>.
func ParsePullRequestURL(prURL string) (PullRequestRef, error) {
	match := rePullRequest.FindStringSubmatch(prURL)
	if match == nil {
		return PullRequestRef{}, fmt.Errorf("%w: %q", ErrInvalidReference, prURL)
	}

	number, err := strconv.Atoi(match[3])
	if err != nil {
		return PullRequestRef{}, fmt.Errorf("%w: %q", ErrInvalidReference, prURL)
	}

	return PullRequestRef{Owner: match[1], Repo: match[2], Number: number}, nil
}

// GetPullRequestFiles lists the paths changed by a pull request in API order.
// https://docs.github.com/en/rest/pulls/pulls#list-pull-requests-files
func (c *Client) GetPullRequestFiles(ctx context.Context, ref PullRequestRef) ([]string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files?per_page=100", apiURL, ref.Owner, ref.Repo, ref.Number)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var files []pullRequestFile
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, fmt.Errorf("failed to decode files of %s: %w", ref, err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	return names, nil
}

// ExtractProjectName returns the base name of the first games/*.js path,
// e.g. "games/DoNotConsumeEmptyBowls.js" -> "DoNotConsumeEmptyBowls".
// ok is false when no path qualifies.
func ExtractProjectName(paths []string) (name string, ok bool) {
	for _, p := range paths {
		if strings.HasPrefix(p, projectDir) && strings.HasSuffix(p, projectSuffix) {
			return strings.TrimSuffix(path.Base(p), projectSuffix), true
		}
	}
	return "", false
}
