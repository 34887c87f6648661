package domain

import "time"

// Role distinguishes regular users from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the domain model for a registered handle owner.
type User struct {
	ID           int64
	Handle       string
	DisplayName  string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile carries the public profile attached to a user, including the
// cached QR image URLs maintained by the background jobs.
type Profile struct {
	UserID      int64      `json:"userId"`
	Bio         *string    `json:"bio,omitempty"`
	Location    *string    `json:"location,omitempty"`
	WechatQRURL *string    `json:"wechatQrUrl,omitempty"`
	GroupQRURL  *string    `json:"groupQrUrl,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// UserExport is one entry of the full backup dump: a user together with
// its profile and links.
type UserExport struct {
	ID          int64    `json:"id"`
	Handle      string   `json:"handle"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email,omitempty"`
	Role        Role     `json:"role"`
	Profile     *Profile `json:"profile,omitempty"`
	Links       []Link   `json:"links"`
}
