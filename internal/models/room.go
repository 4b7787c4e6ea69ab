package models

// Room is a joinable game session identified by a short alphanumeric code.
type Room struct {
	Code     string `json:"code"`
	Name     string `json:"name,omitempty"`
	Rounds   int    `json:"rounds"`
	StartsAt string `json:"starts_at,omitempty"`
	Status   string `json:"status"`
}

// Player is a room member. Nicknames are unique within a room.
type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Points   int    `json:"points"`
}

// ChallengeMedia describes media attached to a completed challenge.
type ChallengeMedia struct {
	URL  string `json:"url"`
	Type string `json:"type"` // "image" or "video"
	MIME string `json:"mime,omitempty"`
}

// Challenge is a task a player completes by submitting photo or video media.
type Challenge struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	HasMedia    bool            `json:"hasMedia,omitempty"`
	Media       *ChallengeMedia `json:"media,omitempty"`
}

// Leader is a read-only ranking projection. The server determines the
// order; clients never re-sort.
type Leader struct {
	ID       string `json:"id,omitempty"`
	Nickname string `json:"nickname"`
	Points   int    `json:"points"`
}

// MediaItem is one completed-challenge submission in the final media views.
type MediaItem struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	CompletedAt string          `json:"completedAt,omitempty"`
	Media       *ChallengeMedia `json:"media,omitempty"`
	Owner       *Player         `json:"owner,omitempty"`
}
