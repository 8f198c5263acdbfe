package domain

// Platform economy rules. A like transfers LikeCost from the liker; the
// author receives AuthorShare and the platform keeps the remainder.
const (
	LikeCost        = 1.0
	AuthorShare     = 0.9
	StartingBalance = 10.0
)

// Account rules
const (
	MinUsernameLength = 3
)

// ChallengeMessage is the legacy fixed login challenge. Servers that issue
// per-login nonces supersede it; it remains the fallback for servers that
// only implement the single-step connect flow.
const ChallengeMessage = "KingFace Login"
