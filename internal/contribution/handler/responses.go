package handler

import (
	"time"

	"poolpay/internal/contribution/models"
	poolmodels "poolpay/internal/pool/models"
	"poolpay/pkg/money"
)

type ContributionResponse struct {
	ID             string     `json:"id"`
	Reference      string     `json:"reference"`
	PoolID         string     `json:"pool_id"`
	UserID         string     `json:"user_id"`
	Amount         string     `json:"amount,omitempty"`
	AmountMinor    int64      `json:"amount_minor"`
	Slots          int        `json:"slots"`
	Status         string     `json:"status"`
	GatewayRef     string     `json:"gateway_ref,omitempty"`
	DeliveryStatus string     `json:"delivery_status"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	FailedAt       *time.Time `json:"failed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// toContributionResponse renders c. The major-unit amount is omitted when
// the currency is unknown to the caller.
func toContributionResponse(c *models.Contribution, currency string) ContributionResponse {
	resp := ContributionResponse{
		ID:             c.ID.String(),
		Reference:      c.Reference,
		PoolID:         c.PoolID.String(),
		UserID:         c.UserID.String(),
		AmountMinor:    c.Amount,
		Slots:          c.Slots,
		Status:         string(c.Status),
		GatewayRef:     c.GatewayRef,
		DeliveryStatus: string(c.DeliveryStatus),
		ConfirmedAt:    c.ConfirmedAt,
		FailedAt:       c.FailedAt,
		CreatedAt:      c.CreatedAt,
	}
	if currency != "" {
		resp.Amount = money.Format(c.Amount, currency)
	}
	return resp
}

type IntentResponse struct {
	Contribution ContributionResponse `json:"contribution"`
	RedirectURL  string               `json:"redirect_url"`
	AccessCode   string               `json:"access_code,omitempty"`
}

type CallbackResponse struct {
	Reference string `json:"reference"`
	PoolID    string `json:"pool_id"`
	Status    string `json:"status"`
}

func toCallbackResponse(c *models.Contribution) CallbackResponse {
	return CallbackResponse{
		Reference: c.Reference,
		PoolID:    c.PoolID.String(),
		Status:    string(c.Status),
	}
}

type PoolContributionsResponse struct {
	PoolID        string                 `json:"pool_id"`
	Contributions []ContributionResponse `json:"contributions"`
}

type PoolSummaryResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Status          string `json:"status"`
	Currency        string `json:"currency"`
	Goal            string `json:"goal"`
	Capacity        int    `json:"capacity"`
	ConfirmedAmount string `json:"confirmed_amount"`
	ConfirmedSlots  int    `json:"confirmed_slots"`
	ConfirmedCount  int    `json:"confirmed_count"`
	PendingCount    int    `json:"pending_count"`
	FailedCount     int    `json:"failed_count"`
}

type UserContributionResponse struct {
	Contribution ContributionResponse `json:"contribution"`
	Pool         *PoolSummaryRef      `json:"pool,omitempty"`
}

// PoolSummaryRef is the pool as shown next to a user's contribution.
type PoolSummaryRef struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Status   string    `json:"status"`
	Currency string    `json:"currency"`
	Deadline time.Time `json:"deadline"`
}

type UserContributionsResponse struct {
	Contributions []UserContributionResponse `json:"contributions"`
}

func toUserContributionResponse(row models.UserContribution) UserContributionResponse {
	var currency string
	var ref *PoolSummaryRef
	if row.Pool != nil {
		currency = row.Pool.Currency
		ref = toPoolSummaryRef(row.Pool)
	}
	return UserContributionResponse{
		Contribution: toContributionResponse(row.Contribution, currency),
		Pool:         ref,
	}
}

func toPoolSummaryRef(p *poolmodels.Pool) *PoolSummaryRef {
	return &PoolSummaryRef{
		ID:       p.ID.String(),
		Title:    p.Title,
		Status:   string(p.Status),
		Currency: p.Currency,
		Deadline: p.Deadline,
	}
}

type DashboardResponse struct {
	CreatorID      string                `json:"creator_id"`
	Pools          []PoolSummaryResponse `json:"pools"`
	Raised         map[string]string     `json:"raised"`
	ConfirmedSlots int                   `json:"confirmed_slots"`
	Contributors   int                   `json:"contributors"`
	PendingCount   int                   `json:"pending_count"`
}

func toDashboardResponse(d *models.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		CreatorID:      d.CreatorID.String(),
		Pools:          make([]PoolSummaryResponse, 0, len(d.Pools)),
		Raised:         make(map[string]string, len(d.RaisedByCurrency)),
		ConfirmedSlots: d.ConfirmedSlots,
		Contributors:   d.Contributors,
		PendingCount:   d.PendingCount,
	}
	for currency, amount := range d.RaisedByCurrency {
		resp.Raised[currency] = money.Format(amount, currency)
	}
	for _, sum := range d.Pools {
		resp.Pools = append(resp.Pools, PoolSummaryResponse{
			ID:              sum.Pool.ID.String(),
			Title:           sum.Pool.Title,
			Status:          string(sum.Pool.Status),
			Currency:        sum.Pool.Currency,
			Goal:            money.Format(sum.Pool.Goal, sum.Pool.Currency),
			Capacity:        sum.Pool.Capacity,
			ConfirmedAmount: money.Format(sum.ConfirmedAmount, sum.Pool.Currency),
			ConfirmedSlots:  sum.ConfirmedSlots,
			ConfirmedCount:  sum.ConfirmedCount,
			PendingCount:    sum.PendingCount,
			FailedCount:     sum.FailedCount,
		})
	}
	return resp
}

type AuditResponse struct {
	PoolID         string `json:"pool_id"`
	Consistent     bool   `json:"consistent"`
	RecordedRaised int64  `json:"recorded_raised"`
	ComputedRaised int64  `json:"computed_raised"`
	RecordedSlots  int    `json:"recorded_slots"`
	ComputedSlots  int    `json:"computed_slots"`
	Capacity       int    `json:"capacity"`
}

func toAuditResponse(r *models.AuditReport) AuditResponse {
	return AuditResponse{
		PoolID:         r.PoolID.String(),
		Consistent:     r.Consistent(),
		RecordedRaised: r.RecordedRaised,
		ComputedRaised: r.ComputedRaised,
		RecordedSlots:  r.RecordedSlots,
		ComputedSlots:  r.ComputedSlots,
		Capacity:       r.Capacity,
	}
}
