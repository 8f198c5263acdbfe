package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "kingface-client/pkg/errors"
)

// keyFile is the name of the seed file inside the state directory
const keyFile = "wallet.key"

// LocalWallet is a file-backed ed25519 wallet. The first Connect generates a
// keypair and persists the seed; later Connects reload it, so the wallet
// address is stable across sessions.
type LocalWallet struct {
	mu        sync.Mutex
	dir       string
	priv      ed25519.PrivateKey
	pub       ed25519.PublicKey
	connected bool
	listeners []func()
}

// NewLocalWallet creates a wallet rooted at dir. No key material is touched
// until Connect.
func NewLocalWallet(dir string) *LocalWallet {
	return &LocalWallet{dir: dir}
}

// Connect loads or creates the keypair and flips the connected flag
func (w *LocalWallet) Connect(_ context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.priv == nil {
		priv, err := w.loadOrGenerate()
		if err != nil {
			return "", err
		}
		w.priv = priv
		w.pub = priv.Public().(ed25519.PublicKey)
	}

	w.connected = true
	return hex.EncodeToString(w.pub), nil
}

// SignMessage signs message with the wallet key
func (w *LocalWallet) SignMessage(_ context.Context, message []byte) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.connected || w.priv == nil {
		return nil, pkgerrors.NewAuthError("wallet not connected", "")
	}
	return ed25519.Sign(w.priv, message), nil
}

// Connected reports whether the wallet is currently connected
func (w *LocalWallet) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

// PublicKey returns the wallet address, or "" when disconnected
func (w *LocalWallet) PublicKey() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected || w.pub == nil {
		return ""
	}
	return hex.EncodeToString(w.pub)
}

// Disconnect drops the connection and notifies listeners. Disconnecting an
// already-disconnected wallet is a no-op.
func (w *LocalWallet) Disconnect() error {
	w.mu.Lock()
	if !w.connected {
		w.mu.Unlock()
		return nil
	}
	w.connected = false
	listeners := make([]func(), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// OnDisconnect registers a disconnect listener
func (w *LocalWallet) OnDisconnect(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

func (w *LocalWallet) loadOrGenerate() (ed25519.PrivateKey, error) {
	path := filepath.Join(w.dir, keyFile)

	data, err := os.ReadFile(path)
	if err == nil {
		seed, decErr := hex.DecodeString(strings.TrimSpace(string(data)))
		if decErr != nil || len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("corrupt wallet key file %s", path)
		}
		return ed25519.NewKeyFromSeed(seed), nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read wallet key: %w", err)
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate wallet key: %w", err)
	}
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(seed)), 0o600); err != nil {
		return nil, fmt.Errorf("write wallet key: %w", err)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}
