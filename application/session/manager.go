// Package session owns the identity lifecycle: wallet-challenge login,
// bearer-token persistence, profile rehydration, and the automatic logouts
// triggered by 401 responses and wallet disconnects. The Manager is the
// single writer of session state; everything else reads through Snapshot.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"kingface-client/domain"
	"kingface-client/infrastructure/credentials"
	"kingface-client/infrastructure/httpapi"
	"kingface-client/infrastructure/wallet"
	pkgerrors "kingface-client/pkg/errors"
	"kingface-client/pkg/utils"
)

// Snapshot is a read-only view of the session state
type Snapshot struct {
	State   State
	User    *domain.User
	Loading bool
}

// Manager drives the session state machine
type Manager struct {
	api    *httpapi.Client
	wallet wallet.Wallet
	store  *credentials.Store
	logger *zap.Logger

	mu      sync.Mutex
	state   State
	user    *domain.User
	loading bool
	// epoch increments on every logout; in-flight results from a previous
	// epoch are discarded instead of resurrecting a dead session
	epoch uint64
}

// LoginInput is the user-submitted login form
type LoginInput struct {
	Username    string `validate:"required,min=3"`
	DisplayName string `validate:"required"`
}

// NewManager creates a session manager. A token persisted by an earlier run
// is loaded into the API client immediately; call Rehydrate to turn it back
// into an authenticated session.
func NewManager(api *httpapi.Client, w wallet.Wallet, store *credentials.Store, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		api:    api,
		wallet: w,
		store:  store,
		logger: logger,
		state:  StateDisconnected,
	}

	token, err := store.Load()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load persisted session")
	}
	if token != "" {
		api.SetToken(token)
	}

	api.SetUnauthorizedHandler(m.handleUnauthorized)
	w.OnDisconnect(m.handleWalletDisconnect)

	return m, nil
}

// Snapshot returns a read-only copy of the current session state
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{State: m.state, Loading: m.loading}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

// CurrentUser returns a copy of the cached user record, nil when logged out
func (m *Manager) CurrentUser() *domain.User {
	return m.Snapshot().User
}

// ConnectWallet connects the wallet collaborator and returns the wallet
// address. No network call is made.
func (m *Manager) ConnectWallet(ctx context.Context) (string, error) {
	addr, err := m.wallet.Connect(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(err, "connect wallet")
	}

	m.mu.Lock()
	if m.state == StateDisconnected {
		m.state = StateWalletConnected
	}
	m.mu.Unlock()

	return addr, nil
}

// Login runs the challenge-sign-connect flow. Input is validated before any
// network call; any failure leaves the session unauthenticated and is
// returned to the caller, never swallowed.
func (m *Manager) Login(ctx context.Context, username, displayName string) (*domain.User, error) {
	input := LoginInput{Username: username, DisplayName: displayName}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	if !m.wallet.Connected() {
		return nil, pkgerrors.NewAuthError("wallet not connected", "")
	}

	m.mu.Lock()
	if !m.state.canLogin() {
		state := m.state
		m.mu.Unlock()
		return nil, pkgerrors.NewValidationError("login not possible in state " + string(state))
	}
	m.state = StateAuthenticating
	m.loading = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	user, err := m.authenticate(ctx, username, displayName)
	if err != nil {
		m.mu.Lock()
		m.state = StateAuthFailed
		m.mu.Unlock()
		return nil, err
	}
	return user, nil
}

func (m *Manager) authenticate(ctx context.Context, username, displayName string) (*domain.User, error) {
	addr := m.wallet.PublicKey()

	challenge, err := m.loginChallenge(ctx, addr)
	if err != nil {
		return nil, err
	}

	sig, err := m.wallet.SignMessage(ctx, []byte(challenge))
	if err != nil {
		if pkgerrors.GetClientError(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.NewAuthError("signing rejected", "").WithCause(err)
	}

	resp, err := m.api.Connect(ctx, httpapi.ConnectRequest{
		WalletAddress: addr,
		Signature:     wallet.EncodeSignature(sig),
		Username:      username,
		DisplayName:   displayName,
	})
	if err != nil {
		return nil, err
	}

	if err := m.store.Save(resp.AccessToken); err != nil {
		// the session still works for this process; only resumability is lost
		m.logger.Warn("failed to persist session token", zap.Error(err))
	}
	m.api.SetToken(resp.AccessToken)

	m.mu.Lock()
	user := resp.User
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.logger.Info("authenticated",
		zap.String("username", resp.User.Username),
		zap.String("wallet", addr),
	)

	u := resp.User
	return &u, nil
}

// loginChallenge asks the server for a single-use nonce and falls back to
// the legacy fixed message when the server has no challenge endpoint.
func (m *Manager) loginChallenge(ctx context.Context, addr string) (string, error) {
	ch, err := m.api.Challenge(ctx, addr)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			m.logger.Debug("server issues no login challenge, using fixed message")
			return domain.ChallengeMessage, nil
		}
		return "", pkgerrors.Wrap(err, "request login challenge")
	}
	return ch.Challenge, nil
}

// Rehydrate restores a session from a persisted token: if a token exists but
// no user record is loaded, the profile is fetched once. A dead token comes
// back as a 401 and the unauthorized hook clears the session; no retry.
func (m *Manager) Rehydrate(ctx context.Context) (*domain.User, error) {
	m.mu.Lock()
	hasUser := m.user != nil
	m.mu.Unlock()

	if m.api.Token() == "" || hasUser {
		return m.CurrentUser(), nil
	}
	return m.RefreshProfile(ctx)
}

// RefreshProfile re-fetches the authoritative user record, including the
// token balance. It is the reconciliation primitive run after every
// balance-affecting mutation.
func (m *Manager) RefreshProfile(ctx context.Context) (*domain.User, error) {
	if m.api.Token() == "" {
		return nil, nil
	}

	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	user, err := m.api.Profile(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		// the session ended while the fetch was in flight
		m.logger.Debug("discarding stale profile result")
		return nil, nil
	}
	u := *user
	m.user = &u
	m.state = StateAuthenticated

	uc := *user
	return &uc, nil
}

// Logout clears the session: user record, in-memory token, durable token
// slot, and the wallet connection, in that order.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.user = nil
	m.state = StateDisconnected
	m.epoch++
	m.mu.Unlock()

	m.api.ClearToken()
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear persisted token", zap.Error(err))
	}
	if err := m.wallet.Disconnect(); err != nil {
		m.logger.Warn("wallet disconnect failed", zap.Error(err))
	}

	m.logger.Info("logged out")
}

// handleUnauthorized is installed as the API client's 401 hook
func (m *Manager) handleUnauthorized() {
	m.logger.Info("session expired, logging out")
	m.Logout()
}

// handleWalletDisconnect reacts to the wallet's connected flag flipping to
// false. With a user set this is an unconditional logout; during our own
// Logout the user is already cleared, so the listener stays quiet.
func (m *Manager) handleWalletDisconnect() {
	m.mu.Lock()
	hasUser := m.user != nil
	m.mu.Unlock()

	if hasUser {
		m.logger.Info("wallet disconnected externally, logging out")
		m.Logout()
	}
}
