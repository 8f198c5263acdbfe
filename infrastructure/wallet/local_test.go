package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "kingface-client/pkg/errors"
)

func TestConnectIsStableAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	w1 := NewLocalWallet(dir)
	addr1, err := w1.Connect(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, addr1)

	// a fresh wallet over the same directory reloads the same key
	w2 := NewLocalWallet(dir)
	addr2, err := w2.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, addr1, addr2)
}

func TestSignatureVerifiesAndEncodesFixedLength(t *testing.T) {
	w := NewLocalWallet(t.TempDir())
	ctx := context.Background()

	addr, err := w.Connect(ctx)
	require.NoError(t, err)

	msg := []byte("KingFace Login")
	sig, err := w.SignMessage(ctx, msg)
	require.NoError(t, err)

	pub, err := hex.DecodeString(addr)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub, msg, sig))

	// 64-byte signature renders as 128 hex chars
	assert.Len(t, EncodeSignature(sig), 128)
}

func TestSignRequiresConnection(t *testing.T) {
	w := NewLocalWallet(t.TempDir())

	_, err := w.SignMessage(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsAuth(err))
}

func TestDisconnectNotifiesListenersOnce(t *testing.T) {
	w := NewLocalWallet(t.TempDir())
	ctx := context.Background()

	_, err := w.Connect(ctx)
	require.NoError(t, err)
	require.True(t, w.Connected())

	calls := 0
	w.OnDisconnect(func() { calls++ })

	require.NoError(t, w.Disconnect())
	assert.False(t, w.Connected())
	assert.Empty(t, w.PublicKey())
	assert.Equal(t, 1, calls)

	// second disconnect is a no-op
	require.NoError(t, w.Disconnect())
	assert.Equal(t, 1, calls)
}
