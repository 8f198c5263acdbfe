package domain

import (
	"fmt"
	"strings"
	"time"

	pkgerrors "kingface-client/pkg/errors"
)

// ContentType represents the kind of media a post carries
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
	ContentTypeAudio ContentType = "audio"
)

// ParseContentType validates and normalizes a content type string
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	switch ct {
	case ContentTypeText, ContentTypeImage, ContentTypeVideo, ContentTypeAudio:
		return ct, nil
	case "":
		return ContentTypeText, nil
	default:
		return "", pkgerrors.NewValidationError(
			fmt.Sprintf("invalid content type %q: must be one of text, image, video, audio", s))
	}
}

// Post is a published feed entry. Posts are never deleted; only the likes
// count mutates after creation.
type Post struct {
	ID             string      `json:"id"`
	AuthorID       string      `json:"author_id"`
	AuthorUsername string      `json:"author_username"`
	Content        string      `json:"content"`
	ContentType    ContentType `json:"content_type"`
	MediaURL       string      `json:"media_url"`
	MediaHash      string      `json:"media_hash"`
	LikesCount     int         `json:"likes_count"`
	CommentsCount  int         `json:"comments_count"`
	IsNFT          bool        `json:"is_nft"`
	NFTMint        string      `json:"nft_mint"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Like records a (user, post) like. At most one exists per pair.
type Like struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	KFTLSpent float64   `json:"kftl_spent"`
	CreatedAt time.Time `json:"created_at"`
}
