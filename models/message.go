package models

import "time"

type Message struct {
	ID        int64     `json:"id"`
	Sender    User      `json:"sender"`
	Recipient User      `json:"recipient"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required"`
}
