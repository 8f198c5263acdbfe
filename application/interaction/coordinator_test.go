package interaction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kingface-client/application/session"
	"kingface-client/infrastructure/credentials"
	"kingface-client/infrastructure/httpapi"
	"kingface-client/infrastructure/wallet"
	"kingface-client/interfaces/devserver"
	pkgerrors "kingface-client/pkg/errors"
)

type countingHandler struct {
	next     http.Handler
	requests int64
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&h.requests, 1)
	h.next.ServeHTTP(w, r)
}

func (h *countingHandler) count() int64 {
	return atomic.LoadInt64(&h.requests)
}

type env struct {
	server  *devserver.Server
	counter *countingHandler
	url     string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	server := devserver.New(devserver.Options{}, zap.NewNop())
	counter := &countingHandler{next: server.Handler()}
	ts := httptest.NewServer(counter)
	t.Cleanup(ts.Close)

	return &env{server: server, counter: counter, url: ts.URL}
}

type identity struct {
	coord   *Coordinator
	session *session.Manager
	api     *httpapi.Client
	userID  string
}

// newIdentity logs a fresh wallet in as username and returns a coordinator
// bound to that session.
func (e *env) newIdentity(t *testing.T, username string) *identity {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	store, err := credentials.NewStore(dir)
	require.NoError(t, err)
	w := wallet.NewLocalWallet(dir)
	api := httpapi.New(e.url, 5*time.Second, zap.NewNop())

	sess, err := session.NewManager(api, w, store, zap.NewNop())
	require.NoError(t, err)

	_, err = sess.ConnectWallet(ctx)
	require.NoError(t, err)
	user, err := sess.Login(ctx, username, username)
	require.NoError(t, err)

	return &identity{
		coord:   NewCoordinator(api, sess, zap.NewNop()),
		session: sess,
		api:     api,
		userID:  user.ID,
	}
}

func TestLikeTransfersKFTLAndReconcilesBalance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.newIdentity(t, "author")
	liker := e.newIdentity(t, "liker")

	post, err := author.coord.CreatePost(ctx, "hello feed", "text", "")
	require.NoError(t, err)

	resp, err := liker.coord.Like(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.KFTLSpent)

	// the cached balance reflects the server ledger, not a local guess
	assert.Equal(t, 9.0, liker.session.CurrentUser().KFTLBalance)
	assert.True(t, liker.coord.Liked(post.ID))

	// the author got their share server-side
	u, err := author.session.RefreshProfile(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 10.9, u.KFTLBalance, 1e-9)

	got, err := liker.coord.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
}

func TestSecondLikeFailsWithoutNetworkCall(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.newIdentity(t, "author")
	liker := e.newIdentity(t, "liker")

	post, err := author.coord.CreatePost(ctx, "like me once", "text", "")
	require.NoError(t, err)

	_, err = liker.coord.Like(ctx, post.ID)
	require.NoError(t, err)

	before := e.counter.count()
	_, err = liker.coord.Like(ctx, post.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, before, e.counter.count(), "duplicate like must be blocked locally")
}

func TestInsufficientCachedBalanceBlocksLocally(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.newIdentity(t, "author")
	liker := e.newIdentity(t, "liker")

	post, err := author.coord.CreatePost(ctx, "too expensive", "text", "")
	require.NoError(t, err)

	// drain the liker server-side, then reconcile the cache
	require.True(t, e.server.Store().SetBalance(liker.userID, 0.5))
	_, err = liker.session.RefreshProfile(ctx)
	require.NoError(t, err)

	before := e.counter.count()
	_, err = liker.coord.Like(ctx, post.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, before, e.counter.count())
	assert.False(t, liker.coord.Liked(post.ID))
}

func TestStaleBalanceIsCaughtByServerAndStaysRetryable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.newIdentity(t, "author")
	liker := e.newIdentity(t, "liker")

	post, err := author.coord.CreatePost(ctx, "race target", "text", "")
	require.NoError(t, err)

	// the server drains the balance behind the client's back; the cache
	// still says 10.0, so the local gate passes and the server decides
	require.True(t, e.server.Store().SetBalance(liker.userID, 0.0))

	_, err = liker.coord.Like(ctx, post.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsActionRejected(err))
	assert.Equal(t, "Insufficient KFTL balance", pkgerrors.GetClientError(err).UserMessage())
	assert.False(t, liker.coord.Liked(post.ID), "a rejected like must not engage the one-shot lock")

	// topped up again, the same like goes through
	require.True(t, e.server.Store().SetBalance(liker.userID, 3.0))
	_, err = liker.session.RefreshProfile(ctx)
	require.NoError(t, err)

	_, err = liker.coord.Like(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, liker.session.CurrentUser().KFTLBalance)
}

func TestServerDuplicateLikeSurfacesDetail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.newIdentity(t, "author")
	liker := e.newIdentity(t, "liker")

	post, err := author.coord.CreatePost(ctx, "double trouble", "text", "")
	require.NoError(t, err)

	_, err = liker.coord.Like(ctx, post.ID)
	require.NoError(t, err)

	// a restarted client has no memory of the first like; the server does
	fresh := NewCoordinator(liker.api, liker.session, zap.NewNop())
	_, err = fresh.Like(ctx, post.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsActionRejected(err))
	assert.Equal(t, "Already liked this post", pkgerrors.GetClientError(err).UserMessage())
	assert.False(t, fresh.Liked(post.ID))
}

func TestLikeRequiresSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.newIdentity(t, "author")
	post, err := author.coord.CreatePost(ctx, "members only", "text", "")
	require.NoError(t, err)

	dir := t.TempDir()
	store, err := credentials.NewStore(dir)
	require.NoError(t, err)
	api := httpapi.New(e.url, 5*time.Second, zap.NewNop())
	sess, err := session.NewManager(api, wallet.NewLocalWallet(dir), store, zap.NewNop())
	require.NoError(t, err)

	anon := NewCoordinator(api, sess, zap.NewNop())
	before := e.counter.count()
	_, err = anon.Like(ctx, post.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, before, e.counter.count())
}

func TestCreatePostValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.newIdentity(t, "author")

	before := e.counter.count()
	_, err := author.coord.CreatePost(ctx, "   \n\t ", "text", "")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = author.coord.CreatePost(ctx, "fine content", "hologram", "")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, before, e.counter.count())
}

func TestCreatePostRoundTripsThroughFeed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.newIdentity(t, "author")

	first, err := author.coord.CreatePost(ctx, "older", "text", "")
	require.NoError(t, err)
	second, err := author.coord.CreatePost(ctx, "newer", "", "")
	require.NoError(t, err)

	feed, err := author.coord.Feed(ctx, 0, 20)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID, "feed is newest-first")
	assert.Equal(t, first.ID, feed[1].ID)

	mine, err := author.coord.UserPosts(ctx, author.userID, 0, 20)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestStatsNeverFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	author := e.newIdentity(t, "author")
	stats := author.coord.Stats(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.UsersCount)

	// a dead server degrades to nil, not an error
	dir := t.TempDir()
	store, err := credentials.NewStore(dir)
	require.NoError(t, err)
	deadAPI := httpapi.New("http://127.0.0.1:1", 500*time.Millisecond, zap.NewNop())
	deadSess, err := session.NewManager(deadAPI, wallet.NewLocalWallet(dir), store, zap.NewNop())
	require.NoError(t, err)

	dead := NewCoordinator(deadAPI, deadSess, zap.NewNop())
	assert.Nil(t, dead.Stats(ctx))
}
