package dto

// LinkRequest is the payload for link create/update.
type LinkRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Order    int    `json:"order"`
	IsHidden bool   `json:"isHidden"`
}

// ClickRequest is the payload for POST /api/metrics/links.
type ClickRequest struct {
	LinkID int64  `json:"linkId"`
	Handle string `json:"handle"`
}
