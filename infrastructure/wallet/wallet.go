// Package wallet defines the external wallet collaborator contract and a
// local ed25519 implementation of it. The session layer only ever sees the
// Wallet interface; the key material never leaves this package.
package wallet

import (
	"context"
	"encoding/hex"
)

// Wallet is the collaborator contract the session manager depends on:
// connect yields a public key, messages can be signed, and a connected flag
// can be observed for disconnect detection.
type Wallet interface {
	// Connect establishes the wallet connection and returns the public key
	// as the canonical wallet address string.
	Connect(ctx context.Context) (string, error)

	// SignMessage signs an arbitrary payload with the wallet key
	SignMessage(ctx context.Context, message []byte) ([]byte, error)

	// Connected reports whether the wallet is currently connected
	Connected() bool

	// PublicKey returns the wallet address, or "" when disconnected
	PublicKey() string

	// Disconnect drops the connection and notifies listeners
	Disconnect() error

	// OnDisconnect registers a listener invoked whenever the connected flag
	// flips to false. Listeners run synchronously on the disconnecting
	// goroutine.
	OnDisconnect(fn func())
}

// EncodeSignature renders a signature as the fixed-length lowercase hex
// string the connect endpoint expects.
func EncodeSignature(sig []byte) string {
	return hex.EncodeToString(sig)
}
