package handler

import (
	"net/url"
	"strings"

	"poolpay/internal/contribution/models"
	poolmodels "poolpay/internal/pool/models"
	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/money"
)

// CreateIntentRequest is the body of POST /pools/{poolID}/contributions.
// Amount is a major-unit decimal in Currency and must equal slots times the
// pool's slot price.
type CreateIntentRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Slots       int    `json:"slots"`
	CallbackURL string `json:"callback_url,omitempty"`

	amountMinor int64
}

// Validate normalises and validates the request.
func (r *CreateIntentRequest) Validate() error {
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.CallbackURL = strings.TrimSpace(r.CallbackURL)
	if len(r.Currency) != 3 {
		return dErrors.New(dErrors.CodeValidation, "currency must be a 3-letter ISO code")
	}
	if r.Slots < 1 || r.Slots > poolmodels.MaxCapacity {
		return dErrors.New(dErrors.CodeValidation, "slots must be between 1 and 100000")
	}
	amount, err := money.ParseMajor(r.Amount, r.Currency)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if r.CallbackURL != "" {
		u, err := url.Parse(r.CallbackURL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return dErrors.New(dErrors.CodeValidation, "callback_url must be an absolute http(s) URL")
		}
	}
	r.amountMinor = amount
	return nil
}

// AmountMinor is the validated amount in minor units.
func (r *CreateIntentRequest) AmountMinor() int64 {
	return r.amountMinor
}

// UpdateDeliveryRequest is the body of PATCH /contributions/{reference}/delivery.
type UpdateDeliveryRequest struct {
	Status string `json:"status"`

	status models.DeliveryStatus
}

func (r *UpdateDeliveryRequest) Validate() error {
	status, err := models.ParseDeliveryStatus(r.Status)
	if err != nil {
		return err
	}
	r.status = status
	return nil
}
