// Package interaction executes balance-affecting and content-affecting
// operations against the server, with optimistic local locks and mandatory
// balance reconciliation after every mutation.
package interaction

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"kingface-client/application/session"
	"kingface-client/domain"
	"kingface-client/infrastructure/httpapi"
	pkgerrors "kingface-client/pkg/errors"
)

// Coordinator performs feed interactions for one authenticated identity
type Coordinator struct {
	api     *httpapi.Client
	session *session.Manager
	logger  *zap.Logger

	// mu serializes balance-affecting calls so the post-mutation profile
	// refresh is never concurrent with a second in-flight mutation
	mu sync.Mutex

	// likeMu guards the optimistic like locks
	likeMu   sync.Mutex
	liked    map[string]bool
	inFlight map[string]bool
}

// NewCoordinator creates a coordinator bound to a session manager
func NewCoordinator(api *httpapi.Client, sess *session.Manager, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		api:      api,
		session:  sess,
		logger:   logger,
		liked:    make(map[string]bool),
		inFlight: make(map[string]bool),
	}
}

// Liked reports whether the post was liked in this session
func (c *Coordinator) Liked(postID string) bool {
	c.likeMu.Lock()
	defer c.likeMu.Unlock()
	return c.liked[postID]
}

// Like spends one KFTL on a post. Preconditions are checked locally first
// and fail without a network call: an authenticated identity must exist, the
// post must not already be liked (or have a like in flight), and the cached
// balance must cover the cost. The per-post lock is taken before the round
// trip so a double-submit during network latency is impossible; it is
// released again on failure, keeping the action retryable.
func (c *Coordinator) Like(ctx context.Context, postID string) (*httpapi.LikeResponse, error) {
	user := c.session.CurrentUser()
	if user == nil {
		return nil, pkgerrors.NewValidationError("sign in to like posts")
	}
	if !user.CanAffordLike() {
		return nil, pkgerrors.NewValidationError("insufficient KFTL balance for a like")
	}

	if err := c.acquireLikeSlot(postID); err != nil {
		return nil, err
	}
	defer c.releaseLikeSlot(postID)

	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.api.LikePost(ctx, postID)
	if err != nil {
		c.logger.Debug("like rejected", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}

	c.markLiked(postID)
	c.refreshBalance(ctx, "like")

	return resp, nil
}

// CreatePost publishes a post. Content must be non-empty after trimming and
// the content type must be valid; failures are returned with no local state
// change.
func (c *Coordinator) CreatePost(ctx context.Context, content, contentType, mediaData string) (*domain.Post, error) {
	if c.session.CurrentUser() == nil {
		return nil, pkgerrors.NewValidationError("sign in to create posts")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.NewValidationError("post content must not be empty")
	}

	ct, err := domain.ParseContentType(contentType)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	post, err := c.api.CreatePost(ctx, httpapi.CreatePostRequest{
		Content:     content,
		ContentType: string(ct),
		MediaData:   mediaData,
	})
	if err != nil {
		return nil, err
	}

	c.refreshBalance(ctx, "create post")

	return post, nil
}

// Feed returns a page of the global feed
func (c *Coordinator) Feed(ctx context.Context, skip, limit int) ([]domain.Post, error) {
	return c.api.Feed(ctx, skip, limit)
}

// UserPosts returns a page of one user's posts
func (c *Coordinator) UserPosts(ctx context.Context, userID string, skip, limit int) ([]domain.Post, error) {
	return c.api.UserPosts(ctx, userID, skip, limit)
}

// GetPost returns a single post
func (c *Coordinator) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	return c.api.GetPost(ctx, postID)
}

// PostLikes returns the likes recorded for a post
func (c *Coordinator) PostLikes(ctx context.Context, postID string) ([]domain.Like, error) {
	return c.api.PostLikes(ctx, postID)
}

// GetUser returns a public profile by username
func (c *Coordinator) GetUser(ctx context.Context, username string) (*domain.User, error) {
	return c.api.UserByUsername(ctx, username)
}

// Stats returns platform counters, or nil when the fetch fails. Stats are
// decorative and must never block rendering.
func (c *Coordinator) Stats(ctx context.Context) *domain.Stats {
	stats, err := c.api.Stats(ctx)
	if err != nil {
		c.logger.Warn("stats fetch failed", zap.Error(err))
		return nil
	}
	return stats
}

// acquireLikeSlot takes the optimistic per-post lock at invocation start
func (c *Coordinator) acquireLikeSlot(postID string) error {
	c.likeMu.Lock()
	defer c.likeMu.Unlock()

	if c.liked[postID] {
		return pkgerrors.NewValidationError("post already liked")
	}
	if c.inFlight[postID] {
		return pkgerrors.NewValidationError("like already in progress")
	}
	c.inFlight[postID] = true
	return nil
}

func (c *Coordinator) releaseLikeSlot(postID string) {
	c.likeMu.Lock()
	defer c.likeMu.Unlock()
	delete(c.inFlight, postID)
}

// markLiked engages the one-shot success lock for the post
func (c *Coordinator) markLiked(postID string) {
	c.likeMu.Lock()
	defer c.likeMu.Unlock()
	c.liked[postID] = true
}

// refreshBalance reconciles the cached balance after a successful mutation.
// The mutation itself already succeeded, so a failed refresh is logged and
// not surfaced; a 401 is handled by the global interceptor either way.
func (c *Coordinator) refreshBalance(ctx context.Context, action string) {
	if _, err := c.session.RefreshProfile(ctx); err != nil {
		c.logger.Warn("balance refresh failed",
			zap.String("after", action),
			zap.Error(err),
		)
	}
}
