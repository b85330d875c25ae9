package models

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	User        User     `json:"user"`
	LastMessage *Message `json:"last_message"`
	UnreadCount int      `json:"unread_count"`
}
