package models

import "time"

type FriendRequest struct {
	ID        int64     `json:"id"`
	FromUser  User      `json:"from_user"`
	ToUser    User      `json:"to_user"`
	Status    string    `json:"status"` // pending, accepted, rejected
	CreatedAt time.Time `json:"created_at"`
}

// Counterpart returns the side of the request that is not userID.
func (r *FriendRequest) Counterpart(userID int64) User {
	if r.FromUser.ID == userID {
		return r.ToUser
	}
	return r.FromUser
}
