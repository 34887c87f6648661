package dto

import "github.com/spec-kit/linkbio-service/internal/domain"

// ProfileRequest is the payload for profile submit/update.
type ProfileRequest struct {
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
}

// UserResponse is the public user shape.
type UserResponse struct {
	ID          int64           `json:"id"`
	Handle      string          `json:"handle"`
	DisplayName string          `json:"displayName"`
	Role        domain.Role     `json:"role"`
	Profile     *domain.Profile `json:"profile,omitempty"`
}

// NewUserResponse maps a domain user (and optional profile) to its DTO.
func NewUserResponse(user *domain.User, profile *domain.Profile) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Handle:      user.Handle,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Profile:     profile,
	}
}

// QRRefreshRequest asks the worker to re-cache one or both QR images.
type QRRefreshRequest struct {
	WechatURL string `json:"wechatUrl"`
	GroupURL  string `json:"groupUrl"`
}
