package models

import (
	"time"

	id "poolpay/pkg/domain"
)

// User is the contributor aggregate. Totals only ever grow, and only together
// with a contribution moving from pending to confirmed.
type User struct {
	ID                     id.UserID
	TotalContributed       int64
	ConfirmedContributions int
	UpdatedAt              time.Time
}

// Credit records one confirmed contribution of amount.
func (u *User) Credit(amount int64, now time.Time) {
	u.TotalContributed += amount
	u.ConfirmedContributions++
	u.UpdatedAt = now
}
