package http

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
)

type CreateRequestBody struct {
	Description string `json:"description" binding:"required"`
}

type AnswerResponse struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   int64  `json:"request_id"`
}

type RequestResponse struct {
	ID          int64            `json:"id"`
	RequesterID int64            `json:"requester_id"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	Items       []AnswerResponse `json:"items"`
}

func NewRequestResponse(v *itemrequest.View) RequestResponse {
	items := make([]AnswerResponse, len(v.Answers))
	for i, a := range v.Answers {
		items[i] = AnswerResponse{
			ID:          a.ItemID,
			OwnerID:     a.OwnerID,
			Name:        a.Name,
			Description: a.Description,
			Available:   a.Available,
			RequestID:   a.RequestID,
		}
	}
	return RequestResponse{
		ID:          v.Request.ID,
		RequesterID: v.Request.RequesterID,
		Description: v.Request.Description,
		CreatedAt:   v.Request.CreatedAt,
		Items:       items,
	}
}

func NewRequestResponses(views []*itemrequest.View) []RequestResponse {
	out := make([]RequestResponse, len(views))
	for i, v := range views {
		out[i] = NewRequestResponse(v)
	}
	return out
}
