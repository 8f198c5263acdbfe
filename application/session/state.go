package session

// State is the session lifecycle position
type State string

const (
	// StateDisconnected means no wallet and no identity
	StateDisconnected State = "disconnected"
	// StateWalletConnected means a wallet key is available but no session
	StateWalletConnected State = "wallet_connected"
	// StateAuthenticating means a login round trip is in flight
	StateAuthenticating State = "authenticating"
	// StateAuthenticated means a bearer session and user record are held
	StateAuthenticated State = "authenticated"
	// StateAuthFailed means the last login attempt failed; the wallet stays
	// connected and login may be retried
	StateAuthFailed State = "auth_failed"
)

// canLogin reports whether a login attempt may start from this state
func (s State) canLogin() bool {
	switch s {
	case StateWalletConnected, StateAuthFailed, StateDisconnected:
		return true
	default:
		return false
	}
}
