// Package domain holds the KingFace wire entities and platform rules shared
// by the client and the reference server.
package domain

import "time"

// User is a KingFace account. The wallet address is the durable identifier;
// username is unique and immutable after creation, display name is mutable.
type User struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	Bio           string    `json:"bio"`
	AvatarURL     string    `json:"avatar_url"`
	TreeLevel     int       `json:"tree_level"`
	KFTBalance    float64   `json:"kft_balance"`
	KFTLBalance   float64   `json:"kftl_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CanAffordLike reports whether the cached balance covers one like. The
// cached value is advisory only; the server remains authoritative.
func (u *User) CanAffordLike() bool {
	return u != nil && u.KFTLBalance >= LikeCost
}
