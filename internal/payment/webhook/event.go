package webhook

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"poolpay/internal/payment"
)

type event struct {
	Event string    `json:"event"`
	Data  eventData `json:"data"`
}

type eventData struct {
	ID        json.Number `json:"id"`
	Reference string      `json:"reference"`
	Amount    int64       `json:"amount"`
	Currency  string      `json:"currency"`
	Status    string      `json:"status"`
	PaidAt    *time.Time  `json:"paid_at"`
}

var errMalformedEvent = errors.New("malformed notification")

// ParseNotification decodes a provider payload.
func ParseNotification(body []byte) (payment.Notification, error) {
	var ev event
	if err := json.Unmarshal(body, &ev); err != nil {
		return payment.Notification{}, errMalformedEvent
	}
	ev.Event = strings.TrimSpace(ev.Event)
	if ev.Event == "" {
		return payment.Notification{}, errMalformedEvent
	}
	n := payment.Notification{
		Event:     ev.Event,
		Reference: strings.TrimSpace(ev.Data.Reference),
		Amount:    ev.Data.Amount,
		Currency:  strings.TrimSpace(ev.Data.Currency),
	}
	if ev.Data.ID != "" {
		if _, err := strconv.ParseInt(ev.Data.ID.String(), 10, 64); err == nil {
			n.ProviderReference = ev.Data.ID.String()
		}
	}
	if ev.Data.PaidAt != nil {
		n.PaidAt = ev.Data.PaidAt.UTC()
	}
	if n.IsSuccess() && n.Reference == "" {
		return payment.Notification{}, errMalformedEvent
	}
	return n, nil
}
