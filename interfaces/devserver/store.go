package devserver

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"kingface-client/domain"
	pkgerrors "kingface-client/pkg/errors"
)

// challengeTTL bounds the validity window of an issued login nonce
const challengeTTL = 2 * time.Minute

type challenge struct {
	nonce     string
	expiresAt time.Time
}

// Store is the in-memory persistence backing the dev server. It exists to
// make tests hermetic; nothing survives a restart.
type Store struct {
	mu         sync.Mutex
	users      map[string]*domain.User // by id
	byWallet   map[string]string      // wallet address -> user id
	byUsername map[string]string      // username -> user id
	posts      []*domain.Post         // insertion order
	postsByID  map[string]*domain.Post
	likes      []*domain.Like
	likeIndex  map[string]bool // user id + "/" + post id
	challenges map[string]challenge
	now        func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:      make(map[string]*domain.User),
		byWallet:   make(map[string]string),
		byUsername: make(map[string]string),
		postsByID:  make(map[string]*domain.Post),
		likeIndex:  make(map[string]bool),
		challenges: make(map[string]challenge),
		now:        time.Now,
	}
}

// IssueChallenge creates a single-use login nonce for the wallet,
// replacing any previous one.
func (s *Store) IssueChallenge(walletAddress string) (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := challenge{
		nonce:     "KingFace Login " + uuid.NewString(),
		expiresAt: s.now().Add(challengeTTL),
	}
	s.challenges[walletAddress] = ch
	return ch.nonce, ch.expiresAt
}

// ConsumeChallenge returns and invalidates the pending nonce for the
// wallet. ok is false when none is pending or it expired.
func (s *Store) ConsumeChallenge(walletAddress string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[walletAddress]
	if !ok {
		return "", false
	}
	delete(s.challenges, walletAddress)
	if s.now().After(ch.expiresAt) {
		return "", false
	}
	return ch.nonce, true
}

// UserByWallet returns the user bound to the wallet address
func (s *Store) UserByWallet(walletAddress string) (*domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userByWalletLocked(walletAddress)
}

func (s *Store) userByWalletLocked(walletAddress string) (*domain.User, bool) {
	id, ok := s.byWallet[walletAddress]
	if !ok {
		return nil, false
	}
	u := *s.users[id]
	return &u, true
}

// UserByUsername returns the user owning the username
func (s *Store) UserByUsername(username string) (*domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, false
	}
	u := *s.users[id]
	return &u, true
}

// ConnectUser implements the login upsert: an existing wallet logs in as its
// existing user (the submitted username is ignored, usernames are
// immutable); a new wallet creates exactly one user, rejecting username
// collisions.
func (s *Store) ConnectUser(walletAddress, username, displayName string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byWallet[walletAddress]; ok {
		u := s.users[id]
		u.UpdatedAt = s.now()
		cp := *u
		return &cp, nil
	}

	if _, taken := s.byUsername[username]; taken {
		return nil, pkgerrors.NewActionRejectedError("username collision", "Username already taken")
	}

	now := s.now()
	u := &domain.User{
		ID:            uuid.NewString(),
		WalletAddress: walletAddress,
		Username:      username,
		DisplayName:   displayName,
		TreeLevel:     1,
		KFTLBalance:   domain.StartingBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.users[u.ID] = u
	s.byWallet[walletAddress] = u.ID
	s.byUsername[username] = u.ID

	cp := *u
	return &cp, nil
}

// SetBalance overwrites a user's KFTL balance. Dev-only seeding hook.
func (s *Store) SetBalance(userID string, balance float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false
	}
	u.KFTLBalance = balance
	return true
}

// CreatePost appends a post authored by the user
func (s *Store) CreatePost(author *domain.User, content string, contentType domain.ContentType, mediaURL, mediaHash string) *domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &domain.Post{
		ID:             uuid.NewString(),
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Content:        content,
		ContentType:    contentType,
		MediaURL:       mediaURL,
		MediaHash:      mediaHash,
		CreatedAt:      s.now(),
	}
	s.posts = append(s.posts, p)
	s.postsByID[p.ID] = p
	return copyPost(p)
}

// Post returns a post by id
func (s *Store) Post(postID string) (*domain.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.postsByID[postID]
	if !ok {
		return nil, false
	}
	return copyPost(p), true
}

// Feed returns posts newest-first with skip/limit paging
func (s *Store) Feed(skip, limit int) []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageLocked(s.posts, skip, limit)
}

// UserPosts returns one author's posts newest-first
func (s *Store) UserPosts(userID string, skip, limit int) []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	var authored []*domain.Post
	for _, p := range s.posts {
		if p.AuthorID == userID {
			authored = append(authored, p)
		}
	}
	return s.pageLocked(authored, skip, limit)
}

func (s *Store) pageLocked(posts []*domain.Post, skip, limit int) []domain.Post {
	sorted := make([]*domain.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if skip < 0 {
		skip = 0
	}
	if skip > len(sorted) {
		skip = len(sorted)
	}
	end := skip + limit
	if limit <= 0 || end > len(sorted) {
		end = len(sorted)
	}

	out := make([]domain.Post, 0, end-skip)
	for _, p := range sorted[skip:end] {
		out = append(out, *p)
	}
	return out
}

// LikePost runs the like transaction: balance check, duplicate check, like
// record, post counter, and the KFTL transfer from liker to author.
func (s *Store) LikePost(userID, postID string) (*domain.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	if user.KFTLBalance < domain.LikeCost {
		return nil, pkgerrors.NewActionRejectedError("balance too low", "Insufficient KFTL balance")
	}

	post, ok := s.postsByID[postID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("post")
	}

	key := userID + "/" + postID
	if s.likeIndex[key] {
		return nil, pkgerrors.NewActionRejectedError("duplicate like", "Already liked this post")
	}

	like := &domain.Like{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		KFTLSpent: domain.LikeCost,
		CreatedAt: s.now(),
	}
	s.likes = append(s.likes, like)
	s.likeIndex[key] = true
	post.LikesCount++

	user.KFTLBalance -= domain.LikeCost
	if author, ok := s.users[post.AuthorID]; ok {
		author.KFTLBalance += domain.AuthorShare
	}

	cp := *like
	return &cp, nil
}

// PostLikes returns all likes of a post
func (s *Store) PostLikes(postID string) []domain.Like {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Like{}
	for _, l := range s.likes {
		if l.PostID == postID {
			out = append(out, *l)
		}
	}
	return out
}

// Stats returns the platform counters
func (s *Store) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Stats{
		UsersCount:     len(s.users),
		PostsCount:     len(s.posts),
		LikesCount:     len(s.likes),
		TotalKFTLSpent: float64(len(s.likes)) * domain.LikeCost,
	}
}

func copyPost(p *domain.Post) *domain.Post {
	cp := *p
	return &cp
}
