package devserver

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"kingface-client/domain"
	pkgerrors "kingface-client/pkg/errors"
	"kingface-client/pkg/utils"
)

// ipfsGateway prefixes media hashes the way the production pipeline would
const ipfsGateway = "https://ipfs.io/ipfs/"

type connectRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required"`
	Signature     string `json:"signature" validate:"required"`
	Username      string `json:"username" validate:"required,min=3"`
	DisplayName   string `json:"display_name" validate:"required"`
}

type createPostRequest struct {
	Content     string `json:"content" validate:"required"`
	ContentType string `json:"content_type"`
	MediaData   string `json:"media_data"`
}

type likeRequest struct {
	PostID string `json:"post_id" validate:"required"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// handleChallenge issues a single-use login nonce for a wallet
func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	walletAddress := r.URL.Query().Get("wallet_address")
	if walletAddress == "" {
		respondDetail(w, http.StatusBadRequest, "wallet_address is required")
		return
	}

	nonce, expiresAt := s.store.IssueChallenge(walletAddress)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"challenge":  nonce,
		"expires_at": expiresAt.UTC(),
	})
}

// handleConnect verifies the wallet signature and creates or logs in the
// user bound to the wallet
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := parseJSONBody(w, r, &req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondDetail(w, http.StatusBadRequest, pkgerrors.GetClientError(err).UserMessage())
		return
	}

	if !s.verifySignature(req.WalletAddress, req.Signature) {
		respondDetail(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	user, err := s.store.ConnectUser(req.WalletAddress, req.Username, req.DisplayName)
	if err != nil {
		respondClientError(w, err)
		return
	}

	token, err := s.tokens.Mint(req.WalletAddress)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// verifySignature checks the hex signature over the pending challenge for
// the wallet, falling back to the legacy fixed message when no challenge
// was requested.
func (s *Server) verifySignature(walletAddress, signature string) bool {
	pub, err := hex.DecodeString(walletAddress)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	message := domain.ChallengeMessage
	if nonce, ok := s.store.ConsumeChallenge(walletAddress); ok {
		message = nonce
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, currentUser(r))
}

func (s *Server) handleUserByUsername(w http.ResponseWriter, r *http.Request) {
	user, ok := s.store.UserByUsername(chi.URLParam(r, "userRef"))
	if !ok {
		respondDetail(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := parseJSONBody(w, r, &req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondDetail(w, http.StatusBadRequest, pkgerrors.GetClientError(err).UserMessage())
		return
	}

	contentType, err := domain.ParseContentType(req.ContentType)
	if err != nil {
		respondDetail(w, http.StatusBadRequest, pkgerrors.GetClientError(err).UserMessage())
		return
	}

	var mediaURL, mediaHash string
	if req.MediaData != "" {
		sum := sha256.Sum256([]byte(req.MediaData))
		mediaHash = hex.EncodeToString(sum[:])
		mediaURL = ipfsGateway + mediaHash
	}

	post := s.store.CreatePost(currentUser(r), req.Content, contentType, mediaURL, mediaHash)
	respondJSON(w, http.StatusOK, post)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	respondJSON(w, http.StatusOK, s.store.Feed(skip, limit))
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.store.Post(chi.URLParam(r, "postID"))
	if !ok {
		respondDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := parseJSONBody(w, r, &req); err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondDetail(w, http.StatusBadRequest, pkgerrors.GetClientError(err).UserMessage())
		return
	}

	like, err := s.store.LikePost(currentUser(r).ID, req.PostID)
	if err != nil {
		respondClientError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Post liked successfully",
		"kftl_spent": like.KFTLSpent,
	})
}

func (s *Server) handlePostLikes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.PostLikes(chi.URLParam(r, "postID")))
}

func (s *Server) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	respondJSON(w, http.StatusOK, s.store.UserPosts(chi.URLParam(r, "userRef"), skip, limit))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Stats())
}

// respondClientError maps a store error onto an HTTP response
func respondClientError(w http.ResponseWriter, err error) {
	cerr := pkgerrors.GetClientError(err)
	if cerr == nil {
		respondDetail(w, http.StatusInternalServerError, "Internal error")
		return
	}

	switch cerr.Type {
	case pkgerrors.ErrorTypeNotFound:
		respondDetail(w, http.StatusNotFound, cerr.UserMessage())
	case pkgerrors.ErrorTypeActionRejected, pkgerrors.ErrorTypeValidation:
		respondDetail(w, http.StatusBadRequest, cerr.UserMessage())
	default:
		respondDetail(w, http.StatusInternalServerError, cerr.UserMessage())
	}
}

func pageParams(r *http.Request) (skip, limit int) {
	skip, limit = 0, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil {
		skip = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	return skip, limit
}
