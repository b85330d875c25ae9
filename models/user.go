package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName is "First Last" when both parts are set, otherwise the username.
func (u *User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// Profile is a user as seen by the current user. Relationship fields are
// computed by the backend.
type Profile struct {
	User
	IsFriend            bool   `json:"is_friend"`
	FriendRequestStatus string `json:"friend_request_status,omitempty"`
	FriendsCount        *int   `json:"friends_count,omitempty"`
}

type UpdateProfileRequest struct {
	FirstName string  `json:"first_name" binding:"required,max=150"`
	LastName  string  `json:"last_name" binding:"required,max=150"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}
