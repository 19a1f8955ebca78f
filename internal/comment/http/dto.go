package http

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/comment"
)

// ItemURI binds the item id of a comment route.
type ItemURI struct {
	ItemID int64 `uri:"id" binding:"required,min=1"`
}

// CommentURI binds the item and comment ids of a single-comment route.
type CommentURI struct {
	ItemID    int64 `uri:"id" binding:"required,min=1"`
	CommentID int64 `uri:"commentId" binding:"required,min=1"`
}

// CreateCommentRequest defines the payload for posting a comment.
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewCommentResponse(c *comment.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		ItemID:     c.ItemID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Text:       c.Text,
		CreatedAt:  c.CreatedAt,
	}
}

// NewCommentResponses maps a slice, always returning a non-nil slice.
func NewCommentResponses(comments []*comment.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewCommentResponse(c))
	}
	return out
}
