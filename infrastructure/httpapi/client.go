// Package httpapi is the typed client for the KingFace HTTP contract. It
// owns bearer-token injection, response classification into the client error
// taxonomy, and the global 401 interception hook.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"kingface-client/domain"
	pkgerrors "kingface-client/pkg/errors"
)

// Client talks to a KingFace backend
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// New creates a client for the given base URL
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetToken installs the bearer token attached to authenticated requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken drops the bearer token
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetUnauthorizedHandler registers the hook fired exactly once per 401
// response on an authenticated call, before the error reaches the caller.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// ConnectRequest is the payload of POST /api/auth/connect
type ConnectRequest struct {
	WalletAddress string `json:"wallet_address"`
	Signature     string `json:"signature"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
}

// ConnectResponse is the payload returned on successful login
type ConnectResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        domain.User `json:"user"`
}

// ChallengeResponse is a server-issued single-use login challenge
type ChallengeResponse struct {
	Challenge string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LikeResponse acknowledges a like
type LikeResponse struct {
	Message   string  `json:"message"`
	KFTLSpent float64 `json:"kftl_spent"`
}

// CreatePostRequest is the payload of POST /api/posts
type CreatePostRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	MediaData   string `json:"media_data"`
}

// Ping checks server health
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil, false)
}

// Challenge requests a server-issued login nonce for the wallet. Servers
// that only implement the single-step connect flow answer 404; callers fall
// back to the fixed challenge message in that case.
func (c *Client) Challenge(ctx context.Context, walletAddress string) (*ChallengeResponse, error) {
	q := url.Values{}
	q.Set("wallet_address", walletAddress)

	var out ChallengeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/challenge?"+q.Encode(), nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Connect submits the signed challenge. Every rejection surfaces as an
// AuthError; the caller resets to a retryable unauthenticated state.
func (c *Client) Connect(ctx context.Context, req ConnectRequest) (*ConnectResponse, error) {
	var out ConnectResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/connect", req, &out, false); err != nil {
		if pkgerrors.IsNetwork(err) {
			return nil, err
		}
		cerr := pkgerrors.GetClientError(err)
		detail := ""
		if cerr != nil {
			detail = cerr.Detail
		}
		return nil, pkgerrors.NewAuthError("wallet connect rejected", detail).WithCause(err)
	}
	return &out, nil
}

// Profile fetches the authenticated user record
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserByUsername fetches a public profile
func (c *Client) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var out domain.User
	path := "/api/users/" + url.PathEscape(username)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// LikePost submits a like for the post
func (c *Client) LikePost(ctx context.Context, postID string) (*LikeResponse, error) {
	var out LikeResponse
	body := map[string]string{"post_id": postID}
	if err := c.do(ctx, http.MethodPost, "/api/posts/like", body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePost publishes a new post and returns the created record
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (*domain.Post, error) {
	var out domain.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Feed fetches the global feed page
func (c *Client) Feed(ctx context.Context, skip, limit int) ([]domain.Post, error) {
	var out []domain.Post
	path := "/api/posts/feed?" + pageQuery(skip, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// UserPosts fetches a page of one user's posts
func (c *Client) UserPosts(ctx context.Context, userID string, skip, limit int) ([]domain.Post, error) {
	var out []domain.Post
	path := "/api/users/" + url.PathEscape(userID) + "/posts?" + pageQuery(skip, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPost fetches a single post
func (c *Client) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	var out domain.Post
	path := "/api/posts/" + url.PathEscape(postID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostLikes fetches the likes recorded for a post
func (c *Client) PostLikes(ctx context.Context, postID string) ([]domain.Like, error) {
	var out []domain.Like
	path := "/api/posts/" + url.PathEscape(postID) + "/likes"
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats fetches the platform counters
func (c *Client) Stats(ctx context.Context) (*domain.Stats, error) {
	var out domain.Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageQuery(skip, limit int) string {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	return q.Encode()
}

// detailBody is the FastAPI-style error envelope
type detailBody struct {
	Detail string `json:"detail"`
}

// do executes one request. authed requests carry the bearer token and route
// 401 responses through the unauthorized hook.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.NewInternalError("encode request body").WithCause(err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.NewInternalError("build request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	if authed {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return pkgerrors.NewNetworkError(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.NewNetworkError(fmt.Sprintf("read response of %s %s", method, path), err)
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return c.classify(resp.StatusCode, data, authed)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return pkgerrors.NewInternalError("decode response body").WithCause(err)
		}
	}
	return nil
}

// classify maps an error response onto the taxonomy. The unauthorized hook
// fires here, once per 401, before the error propagates.
func (c *Client) classify(status int, body []byte, authed bool) error {
	var detail detailBody
	_ = json.Unmarshal(body, &detail)

	if status == http.StatusUnauthorized && authed {
		c.mu.RLock()
		hook := c.onUnauthorized
		c.mu.RUnlock()
		if hook != nil {
			hook()
		}
		return pkgerrors.NewSessionExpiredError()
	}

	switch {
	case status == http.StatusNotFound:
		err := pkgerrors.NewNotFoundError("resource")
		err.Detail = detail.Detail
		return err
	case status >= 500:
		err := pkgerrors.NewInternalError("server error")
		err.Detail = detail.Detail
		return err.WithStatus(status)
	default:
		return pkgerrors.NewActionRejectedError("request rejected", detail.Detail).WithStatus(status)
	}
}
