package domain

import "time"

// Link is a single published link on a profile page.
type Link struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Position  int       `json:"order"`
	IsHidden  bool      `json:"isHidden"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Visit is the per-click metadata recorded alongside the click counter.
type Visit struct {
	Referrer  *string
	UserAgent *string
	Country   *string
}
