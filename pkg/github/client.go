package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/httputil"
	"github.com/BenDol/GithubWiki-sub000/pkg/observability"
)

const defaultBaseURL = "https://api.github.com"

// Client is a low-level GitHub REST API client.
//
// Every call is executed through a retry policy: reads retry automatically,
// writes retry only when the caller supplies an idempotency key. Responses
// are mapped onto the project error taxonomy (not-found, conflict,
// rate-limited, permission denied) so upper layers never inspect raw status
// codes.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	policy  *httputil.Policy
	hooks   observability.HTTPHooks
}

// Config holds client connection settings.
type Config struct {
	// BaseURL is the API root; empty selects api.github.com.
	BaseURL string

	// Token authenticates requests. Empty means unauthenticated (lower
	// rate limits).
	Token string

	// Timeout bounds each HTTP round trip; defaults to 30 seconds.
	Timeout time.Duration
}

// NewClient creates a GitHub API client. Pass nil hooks to disable request
// notifications; policy is required.
func NewClient(cfg Config, policy *httputil.Policy, hooks observability.HTTPHooks) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if hooks == nil {
		hooks = observability.NoopHTTPHooks{}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		policy:  policy,
		hooks:   hooks,
	}
}

// NewIdempotencyKey returns a fresh idempotency key for a retryable write.
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// GetFile retrieves a file's content at path. ref selects the revision;
// empty means the default branch. The content is base64-decoded and the
// response SHA is the revision token for a subsequent conditional write.
func (c *Client) GetFile(ctx context.Context, owner, repo, path, ref string) (*FileContent, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	q := url.Values{}
	if ref != "" {
		q.Set("ref", ref)
	}

	var raw apiContentResponse
	if err := c.get(ctx, endpoint, q, &raw); err != nil {
		return nil, err
	}

	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw.Content, "\n", ""))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decoding content of %s", path)
	}
	return &FileContent{
		Path:    raw.Path,
		SHA:     raw.SHA,
		Size:    raw.Size,
		Content: string(content),
	}, nil
}

// ListDir lists the entries of a directory. path may be empty for the
// repository root; ref selects the revision.
func (c *Client) ListDir(ctx context.Context, owner, repo, path, ref string) ([]DirEntry, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	q := url.Values{}
	if ref != "" {
		q.Set("ref", ref)
	}

	var entries []DirEntry
	if err := c.get(ctx, endpoint, q, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PutFileOptions parameterizes a contents API write.
type PutFileOptions struct {
	// Message is the commit message.
	Message string

	// Content is the new file body; encoded to base64 on the wire.
	Content string

	// SHA is the revision token of the file being replaced. Empty creates
	// a new file; a stale token surfaces a conflict.
	SHA string

	// Branch targets a branch other than the default.
	Branch string

	// IdempotencyKey opts the write into automatic retries. Writes
	// without a key execute exactly once; see [NewIdempotencyKey].
	IdempotencyKey string
}

// PutFile creates or updates a file through the contents API.
// The write is conditioned on opts.SHA: if the file changed since that
// revision, a conflict error is returned and never retried.
func (c *Client) PutFile(ctx context.Context, owner, repo, path string, opts PutFileOptions) (*FileContent, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	payload := map[string]string{
		"message": opts.Message,
		"content": base64.StdEncoding.EncodeToString([]byte(opts.Content)),
	}
	if opts.SHA != "" {
		payload["sha"] = opts.SHA
	}
	if opts.Branch != "" {
		payload["branch"] = opts.Branch
	}

	var raw apiCommitResponse
	if err := c.write(ctx, http.MethodPut, endpoint, payload, &raw, opts.IdempotencyKey); err != nil {
		return nil, mapWriteConflict(err, path, opts.SHA)
	}
	if raw.Content == nil {
		return nil, errors.New(errors.ErrCodeInternal, "write response for %s carried no content", path)
	}
	return &FileContent{
		Path: raw.Content.Path,
		SHA:  raw.Content.SHA,
		Size: raw.Content.Size,
	}, nil
}

// DeleteFileOptions parameterizes a contents API delete.
type DeleteFileOptions struct {
	Message        string
	SHA            string // revision token, required
	Branch         string
	IdempotencyKey string
}

// DeleteFile removes a file through the contents API, conditioned on the
// revision token in opts.SHA.
func (c *Client) DeleteFile(ctx context.Context, owner, repo, path string, opts DeleteFileOptions) error {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	payload := map[string]string{
		"message": opts.Message,
		"sha":     opts.SHA,
	}
	if opts.Branch != "" {
		payload["branch"] = opts.Branch
	}

	var raw apiCommitResponse
	if err := c.write(ctx, http.MethodDelete, endpoint, payload, &raw, opts.IdempotencyKey); err != nil {
		return mapWriteConflict(err, path, opts.SHA)
	}
	return nil
}

// GetUser retrieves a user's public profile.
func (c *Client) GetUser(ctx context.Context, login string) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/"+login, nil, &user); err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, errors.New(errors.ErrCodeUserNotFound, "user %s not found", login)
		}
		return nil, err
	}
	return &user, nil
}

// AuthenticatedUser retrieves the profile behind the client's token.
func (c *Client) AuthenticatedUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetRepo retrieves repository metadata.
func (c *Client) GetRepo(ctx context.Context, owner, repo string) (*Repo, error) {
	var r Repo
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s", owner, repo), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListCollaborators retrieves the collaborators of a repository.
func (c *Client) ListCollaborators(ctx context.Context, owner, repo string) ([]User, error) {
	q := url.Values{"per_page": {"100"}}
	var users []User
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/collaborators", owner, repo), q, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetPermission retrieves a user's permission level on a repository
// ("admin", "write", "read", "none") along with the user record, whose ID
// anchors username-change detection upstream.
func (c *Client) GetPermission(ctx context.Context, owner, repo, login string) (string, *User, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/collaborators/%s/permission", owner, repo, login)
	var raw apiPermissionResponse
	if err := c.get(ctx, endpoint, nil, &raw); err != nil {
		return "", nil, err
	}
	return raw.Permission, &raw.User, nil
}

// ListPulls retrieves one page of a repository's pull requests, all states,
// most recently created first. The endpoint has no author filter; callers
// filter client-side.
func (c *Client) ListPulls(ctx context.Context, owner, repo string, page, perPage int) ([]PullRequest, error) {
	q := url.Values{
		"state":     {"all"},
		"sort":      {"created"},
		"direction": {"desc"},
		"page":      {strconv.Itoa(page)},
		"per_page":  {strconv.Itoa(perPage)},
	}
	var pulls []PullRequest
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls", owner, repo), q, &pulls); err != nil {
		return nil, err
	}
	return pulls, nil
}

// get runs an idempotent GET through the retry policy.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	return c.policy.Do(ctx, func(ctx context.Context) error {
		return c.send(ctx, http.MethodGet, endpoint, query, nil, out, "")
	})
}

// write runs a mutating call. With an idempotency key the call goes through
// the full retry budget; without one it executes exactly once.
func (c *Client) write(ctx context.Context, method, endpoint string, payload, out any, idempotencyKey string) error {
	fn := func(ctx context.Context) error {
		return c.send(ctx, method, endpoint, nil, payload, out, idempotencyKey)
	}
	if idempotencyKey != "" {
		return c.policy.Do(ctx, fn)
	}
	return c.policy.DoOnce(ctx, fn)
}

// send performs one HTTP round trip and maps the response onto the error
// taxonomy.
func (c *Client) send(ctx context.Context, method, endpoint string, query url.Values, payload, out any, idempotencyKey string) error {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encoding request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating request")
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}

	c.hooks.OnRequest(ctx, method, req.URL.Host, endpoint)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.hooks.OnError(ctx, method, req.URL.Host, endpoint, err)
		return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, endpoint)}
	}
	defer resp.Body.Close()
	c.hooks.OnResponse(ctx, method, req.URL.Host, endpoint, resp.StatusCode, time.Since(start))

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decoding response from %s", endpoint)
	}
	return nil
}

// checkStatus maps a non-2xx response onto the error taxonomy. The response
// body is preserved in the error message, never swallowed.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "not found: %s", msg)

	case resp.StatusCode == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "authentication failed: %s", msg)

	case resp.StatusCode == http.StatusTooManyRequests:
		return rateLimitError(resp, msg)

	case resp.StatusCode == http.StatusForbidden:
		// A 403 with an exhausted quota is a rate limit in disguise; a
		// plain 403 is a permission failure and must not retry.
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return rateLimitError(resp, msg)
		}
		return errors.New(errors.ErrCodeForbidden, "permission denied: %s", msg)

	case resp.StatusCode == http.StatusConflict:
		return &errors.ConflictError{}

	case resp.StatusCode == http.StatusUnprocessableEntity:
		// The contents API reports a stale revision token as a 422
		// mentioning the sha; other 422s are genuine input errors.
		if strings.Contains(msg, "sha") || strings.Contains(msg, "does not match") {
			return &errors.ConflictError{}
		}
		return errors.New(errors.ErrCodeInvalidInput, "unprocessable: %s", msg)

	case resp.StatusCode >= 500:
		return &httputil.StatusError{StatusCode: resp.StatusCode, Message: msg}

	default:
		return &httputil.StatusError{StatusCode: resp.StatusCode, Message: msg}
	}
}

// rateLimitError builds a RateLimitedError from the rate-limit headers.
func rateLimitError(resp *http.Response, msg string) error {
	rl := &errors.RateLimitedError{Message: msg}
	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		rl.Remaining, _ = strconv.Atoi(v)
	}
	if v := resp.Header.Get("Retry-After"); v != "" {
		rl.RetryAfter, _ = strconv.Atoi(v)
	} else if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if reset, err := strconv.ParseInt(v, 10, 64); err == nil {
			if wait := reset - time.Now().Unix(); wait > 0 {
				rl.RetryAfter = int(wait)
			}
		}
	}
	return rl
}

// mapWriteConflict attaches the write's path and revision token to a
// conflict error, so the caller's message can name what collided.
func mapWriteConflict(err error, path, knownSHA string) error {
	var conflict *errors.ConflictError
	if stderrors.As(err, &conflict) {
		return &errors.ConflictError{Path: path, KnownSHA: knownSHA, CurrentSHA: conflict.CurrentSHA}
	}
	return err
}
