package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "poolpay/pkg/domain"
)

func TestCredit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &User{ID: id.UserID(uuid.New())}

	u.Credit(5_000, now)
	u.Credit(2_500, now.Add(time.Minute))

	assert.Equal(t, int64(7_500), u.TotalContributed)
	assert.Equal(t, 2, u.ConfirmedContributions)
	assert.Equal(t, now.Add(time.Minute), u.UpdatedAt)
}
