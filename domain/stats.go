package domain

// Stats is the decorative platform counters block. Consumers must tolerate
// its absence; a failed stats fetch never blocks rendering.
type Stats struct {
	UsersCount     int     `json:"users_count"`
	PostsCount     int     `json:"posts_count"`
	LikesCount     int     `json:"likes_count"`
	TotalKFTLSpent float64 `json:"total_kftl_spent"`
}
