package handler

import (
	"time"

	"poolpay/internal/pool/models"
	"poolpay/pkg/money"
)

type PoolResponse struct {
	ID             string    `json:"id"`
	CreatorID      string    `json:"creator_id"`
	Title          string    `json:"title"`
	Goal           string    `json:"goal"`
	RaisedAmount   string    `json:"raised_amount"`
	SlotPrice      string    `json:"slot_price"`
	Currency       string    `json:"currency"`
	Capacity       int       `json:"capacity"`
	FilledSlots    int       `json:"filled_slots"`
	RemainingSlots int       `json:"remaining_slots"`
	Status         string    `json:"status"`
	Funded         bool      `json:"funded"`
	Deadline       time.Time `json:"deadline"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toPoolResponse(p *models.Pool) PoolResponse {
	return PoolResponse{
		ID:             p.ID.String(),
		CreatorID:      p.CreatorID.String(),
		Title:          p.Title,
		Goal:           money.Format(p.Goal, p.Currency),
		RaisedAmount:   money.Format(p.RaisedAmount, p.Currency),
		SlotPrice:      money.Format(p.SlotPrice(), p.Currency),
		Currency:       p.Currency,
		Capacity:       p.Capacity,
		FilledSlots:    p.FilledSlots,
		RemainingSlots: p.RemainingSlots(),
		Status:         string(p.Status),
		Funded:         p.IsFunded(),
		Deadline:       p.Deadline,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type PoolListResponse struct {
	Pools []PoolResponse `json:"pools"`
}
