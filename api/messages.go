package api

import (
	"context"

	"github.com/valyala/fasthttp"

	"socialclient/models"
)

func (c *Client) Conversations(ctx context.Context) ([]models.ConversationSummary, error) {
	conversations := []models.ConversationSummary{}
	if err := c.get(ctx, "/messages/conversations", "/messages/conversations", &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (c *Client) Messages(ctx context.Context, userID int64) ([]models.Message, error) {
	messages := []models.Message{}
	if err := c.get(ctx, "/messages/conversation/{id}", idPath("/messages/conversation/%d", userID), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, recipientID int64, content string) (*models.Message, error) {
	var message models.Message
	in := models.SendMessageRequest{RecipientID: recipientID, Content: content}
	if err := c.send(ctx, fasthttp.MethodPost, "/messages/send", "/messages/send", in, &message); err != nil {
		return nil, err
	}
	return &message, nil
}
