package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,PoolStore,UserStore,OutboxStore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"poolpay/internal/contribution/metrics"
	"poolpay/internal/contribution/models"
	contributionstore "poolpay/internal/contribution/store"
	"poolpay/internal/outbox"
	outboxstore "poolpay/internal/outbox/store"
	"poolpay/internal/payment"
	"poolpay/internal/payment/fake"
	poolmodels "poolpay/internal/pool/models"
	poolstore "poolpay/internal/pool/store"
	userstore "poolpay/internal/user/store"
	id "poolpay/pkg/domain"
	dErrors "poolpay/pkg/domain-errors"
	txcontext "poolpay/pkg/platform/tx"
	"poolpay/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	contributions *contributionstore.InMemory
	pools         *poolstore.InMemory
	users         *userstore.InMemory
	outbox        *outboxstore.InMemory
	gateway       *fake.Gateway
	metrics       *metrics.Metrics
	service       *Service
	ctx           context.Context
	now           time.Time
	creator       id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.contributions = contributionstore.NewInMemory()
	s.pools = poolstore.NewInMemory()
	s.users = userstore.NewInMemory()
	s.outbox = outboxstore.NewInMemory()
	s.gateway = fake.New()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.contributions, s.pools, s.users, s.outbox, txcontext.NewMemoryRunner(), s.gateway,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithCallbackURL("https://poolpay.test/payments/callback"),
	)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.creator = id.UserID(uuid.New())
}

// newPool stores an active pool with a slot price of 10_000.
func (s *ServiceSuite) newPool(capacity, filled int) *poolmodels.Pool {
	p, err := poolmodels.NewPool(id.NewPoolID(), s.creator, "Group order", int64(capacity)*10_000, "KES",
		capacity, s.now.Add(72*time.Hour), s.now)
	s.Require().NoError(err)
	p.FilledSlots = filled
	p.RaisedAmount = int64(filled) * 10_000
	s.Require().NoError(s.pools.Create(context.Background(), p))
	return p
}

func (s *ServiceSuite) intent(ctx context.Context, poolID id.PoolID, userID id.UserID, slots int) (*IntentResult, error) {
	return s.service.CreateIntent(ctx, CreateIntentRequest{
		PoolID:   poolID,
		UserID:   userID,
		Email:    "buyer@example.com",
		Amount:   int64(slots) * 10_000,
		Currency: "KES",
		Slots:    slots,
	})
}

func (s *ServiceSuite) mustIntent(poolID id.PoolID, userID id.UserID, slots int) *models.Contribution {
	res, err := s.intent(s.ctx, poolID, userID, slots)
	s.Require().NoError(err)
	return res.Contribution
}

func (s *ServiceSuite) success(c *models.Contribution) Outcome {
	return Outcome{Succeeded: true, GatewayRef: "gw_" + c.Reference[:8], PaidAt: s.now, Amount: c.Amount}
}

func (s *ServiceSuite) pool(poolID id.PoolID) *poolmodels.Pool {
	p, err := s.pools.FindByID(context.Background(), poolID)
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) contribution(ref string) *models.Contribution {
	c, err := s.contributions.FindByReference(context.Background(), ref)
	s.Require().NoError(err)
	return c
}

func (s *ServiceSuite) events(ref string) []*outbox.Entry {
	entries, err := s.outbox.ListByAggregate(context.Background(), outbox.AggregateContribution, ref)
	s.Require().NoError(err)
	return entries
}

// assertLedger checks raised amount and filled slots against confirmed rows.
func (s *ServiceSuite) assertLedger(poolID id.PoolID, baseRaised int64, baseSlots int) {
	p := s.pool(poolID)
	rows, err := s.contributions.ListByPool(context.Background(), poolID)
	s.Require().NoError(err)
	sum := models.Summarize(p, rows)
	s.Equal(baseRaised+sum.ConfirmedAmount, p.RaisedAmount)
	s.Equal(baseSlots+sum.ConfirmedSlots, p.FilledSlots)
	s.LessOrEqual(p.FilledSlots, p.Capacity)
}

// =============================================================================
// CreateIntent
// =============================================================================

func (s *ServiceSuite) TestCreateIntent() {
	s.Run("persists pending contribution and initialises the gateway", func() {
		p := s.newPool(6, 0)
		user := id.UserID(uuid.New())

		res, err := s.intent(s.ctx, p.ID, user, 2)
		s.Require().NoError(err)

		s.Equal(models.StatusPending, res.Contribution.Status)
		s.True(models.IsValidReference(res.Contribution.Reference))
		s.Equal(s.gateway.BaseURL+res.Contribution.Reference, res.RedirectURL)

		req, ok := s.gateway.Initialized(res.Contribution.Reference)
		s.Require().True(ok)
		s.Equal(int64(20_000), req.Amount)
		s.Equal("KES", req.Currency)
		s.Equal("https://poolpay.test/payments/callback", req.CallbackURL)
		s.Equal("2", req.Metadata["slots"])

		stored := s.contribution(res.Contribution.Reference)
		s.Equal(user, stored.UserID)
		s.Equal(0, s.pool(p.ID).FilledSlots, "reservation must not advance counters")
		s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.IntentsCreated))
	})

	s.Run("request callback overrides the default", func() {
		p := s.newPool(6, 0)
		res, err := s.service.CreateIntent(s.ctx, CreateIntentRequest{
			PoolID: p.ID, UserID: id.UserID(uuid.New()), Email: "a@example.com",
			Amount: 10_000, Slots: 1, CallbackURL: "https://app.test/done",
		})
		s.Require().NoError(err)
		req, _ := s.gateway.Initialized(res.Contribution.Reference)
		s.Equal("https://app.test/done", req.CallbackURL)
	})

	s.Run("unknown pool is not found", func() {
		_, err := s.intent(s.ctx, id.NewPoolID(), id.UserID(uuid.New()), 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("closed pool is rejected", func() {
		p := s.newPool(6, 0)
		_, err := s.intent(requestcontext.WithTime(context.Background(), s.now.Add(73*time.Hour)), p.ID, id.UserID(uuid.New()), 1)
		s.True(dErrors.HasReason(err, dErrors.ReasonPoolNotActive))
	})

	s.Run("validation failures leave no trace", func() {
		p := s.newPool(6, 0)
		user := id.UserID(uuid.New())
		cases := []CreateIntentRequest{
			{PoolID: p.ID, UserID: user, Email: "a@example.com", Amount: 0, Slots: 1},
			{PoolID: p.ID, UserID: user, Email: "a@example.com", Amount: 10_000, Slots: 0},
			{PoolID: p.ID, UserID: user, Email: "", Amount: 10_000, Slots: 1},
			{PoolID: p.ID, UserID: user, Email: "a@example.com", Amount: 15_000, Slots: 1},
			{PoolID: p.ID, UserID: user, Email: "a@example.com", Amount: 10_000, Slots: 1, Currency: "USD"},
		}
		for i, req := range cases {
			_, err := s.service.CreateIntent(s.ctx, req)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "case %d: %v", i, err)
		}
		rows, err := s.contributions.ListByPool(context.Background(), p.ID)
		s.Require().NoError(err)
		s.Empty(rows)
		s.Equal(0, s.gateway.InitializeCount())
	})

	s.Run("user with a confirmed contribution is refused", func() {
		p := s.newPool(6, 0)
		user := id.UserID(uuid.New())
		c := s.mustIntent(p.ID, user, 1)
		s.Require().NoError(s.service.Confirm(s.ctx, c.Reference, s.success(c)))

		_, err := s.intent(s.ctx, p.ID, user, 1)
		s.True(dErrors.HasReason(err, dErrors.ReasonDuplicateContribution))
	})

	s.Run("pending holds count against capacity", func() {
		p := s.newPool(3, 0)
		s.mustIntent(p.ID, id.UserID(uuid.New()), 2)

		_, err := s.intent(s.ctx, p.ID, id.UserID(uuid.New()), 2)
		s.True(dErrors.HasReason(err, dErrors.ReasonCapacityExceeded))
		s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.IntentsRejected.WithLabelValues(dErrors.ReasonCapacityExceeded)))
	})

	s.Run("expired holds release their slots", func() {
		p := s.newPool(3, 0)
		s.mustIntent(p.ID, id.UserID(uuid.New()), 2)

		later := requestcontext.WithTime(context.Background(), s.now.Add(31*time.Minute))
		_, err := s.intent(later, p.ID, id.UserID(uuid.New()), 2)
		s.NoError(err)
	})
}

// Scenario: capacity 10 with 9 filled, two users race for the last slot.
func (s *ServiceSuite) TestCreateIntentOversizedSlots() {
	// Slot price 1 lets a huge amount pass the price check on its own.
	p, err := poolmodels.NewPool(id.NewPoolID(), s.creator, "Sushi run", 2, "JPY", 2, s.now.Add(time.Hour), s.now)
	s.Require().NoError(err)
	p.FilledSlots = 1
	p.RaisedAmount = 1
	s.Require().NoError(s.pools.Create(context.Background(), p))

	for _, slots := range []int{3, math.MaxInt} {
		_, err := s.service.CreateIntent(s.ctx, CreateIntentRequest{
			PoolID: p.ID,
			UserID: id.UserID(uuid.New()),
			Email:  "buyer@example.com",
			Amount: math.MaxInt64,
			Slots:  slots,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), "slots %d: %v", slots, err)
	}

	after := s.pool(p.ID)
	s.Equal(1, after.FilledSlots)
	s.Equal(int64(1), after.RaisedAmount)
	s.Equal(0, s.gateway.InitializeCount())

	c := s.mustIntentFor(p, 1, 1)
	s.Require().NoError(s.service.Confirm(s.ctx, c.Reference, s.success(c)))
	s.Equal(2, s.pool(p.ID).FilledSlots)
	s.Equal(poolmodels.StatusCompleted, s.pool(p.ID).Status)
}

// mustIntentFor creates an intent priced from p rather than the default slot price.
func (s *ServiceSuite) mustIntentFor(p *poolmodels.Pool, slots int, amount int64) *models.Contribution {
	res, err := s.service.CreateIntent(s.ctx, CreateIntentRequest{
		PoolID: p.ID,
		UserID: id.UserID(uuid.New()),
		Email:  "buyer@example.com",
		Amount: amount,
		Slots:  slots,
	})
	s.Require().NoError(err)
	return res.Contribution
}

func (s *ServiceSuite) TestCreateIntentLastSlotRace() {
	p := s.newPool(10, 9)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.intent(s.ctx, p.ID, id.UserID(uuid.New()), 1)
		}()
	}
	wg.Wait()

	succeeded, capacity := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case dErrors.HasReason(err, dErrors.ReasonCapacityExceeded):
			capacity++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, succeeded)
	s.Equal(1, capacity)
}

// Scenario: the gateway rejects initialisation.
func (s *ServiceSuite) TestCreateIntentGatewayFailure() {
	s.Run("pending contribution is removed", func() {
		p := s.newPool(6, 0)
		s.gateway.InitializeErr = errors.New("connection reset by peer")
		defer func() { s.gateway.InitializeErr = nil }()

		res, err := s.intent(s.ctx, p.ID, id.UserID(uuid.New()), 1)
		s.Nil(res)
		s.True(dErrors.HasCode(err, dErrors.CodeGatewayFailure))

		rows, err := s.contributions.ListByPool(context.Background(), p.ID)
		s.Require().NoError(err)
		s.Empty(rows)
		s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.GatewayFailures.WithLabelValues("initialize")))
	})

	s.Run("cleanup survives a cancelled request", func() {
		p := s.newPool(6, 0)
		ctx, cancel := context.WithCancel(s.ctx)
		s.gateway.InitializeErr = errors.New("timeout")
		defer func() { s.gateway.InitializeErr = nil }()

		// Cancel between the reservation and the gateway call.
		s.service.gateway = cancellingGateway{Gateway: s.gateway, cancel: cancel}
		defer func() { s.service.gateway = s.gateway }()

		_, err := s.intent(ctx, p.ID, id.UserID(uuid.New()), 1)
		s.True(dErrors.HasCode(err, dErrors.CodeGatewayFailure))

		rows, err := s.contributions.ListByPool(context.Background(), p.ID)
		s.Require().NoError(err)
		s.Empty(rows)
	})
}

type cancellingGateway struct {
	*fake.Gateway
	cancel context.CancelFunc
}

func (g cancellingGateway) Initialize(ctx context.Context, req payment.InitializeRequest) (*payment.InitializeResult, error) {
	g.cancel()
	return g.Gateway.Initialize(context.WithoutCancel(ctx), req)
}

// =============================================================================
// Confirm / Fail
// =============================================================================

func (s *ServiceSuite) TestConfirm() {
	s.Run("applies pool, user and outbox side effects once", func() {
		p := s.newPool(6, 0)
		user := id.UserID(uuid.New())
		c := s.mustIntent(p.ID, user, 2)

		s.Require().NoError(s.service.Confirm(s.ctx, c.Reference, s.success(c)))

		stored := s.contribution(c.Reference)
		s.Equal(models.StatusConfirmed, stored.Status)
		s.Equal("gw_"+c.Reference[:8], stored.GatewayRef)
		s.Require().NotNil(stored.ConfirmedAt)
		s.Equal(s.now, *stored.ConfirmedAt)

		pool := s.pool(p.ID)
		s.Equal(int64(20_000), pool.RaisedAmount)
		s.Equal(2, pool.FilledSlots)

		u, err := s.users.FindByID(context.Background(), user)
		s.Require().NoError(err)
		s.Equal(int64(20_000), u.TotalContributed)

		entries := s.events(c.Reference)
		s.Require().Len(entries, 1)
		s.Equal(outbox.EventContributionConfirmed, entries[0].EventType)
		s.Contains(string(entries[0].Payload), `"pool_filled_slots":2`)
		s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.Confirmations))
	})

	s.Run("idempotent under repeated delivery", func() {
		p := s.newPool(6, 0)
		user := id.UserID(uuid.New())
		c := s.mustIntent(p.ID, user, 1)

		for range 3 {
			s.Require().NoError(s.service.Confirm(s.ctx, c.Reference, s.success(c)))
		}

		s.Equal(int64(10_000), s.pool(p.ID).RaisedAmount)
		s.Equal(1, s.pool(p.ID).FilledSlots)
		u, err := s.users.FindByID(context.Background(), user)
		s.Require().NoError(err)
		s.Equal(int64(10_000), u.TotalContributed)
		s.Len(s.events(c.Reference), 1)
	})

	s.Run("failure after success is a no-op", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		s.Require().NoError(s.service.Confirm(s.ctx, c.Reference, s.success(c)))

		s.Require().NoError(s.service.Fail(s.ctx, c.Reference))
		s.Equal(models.StatusConfirmed, s.contribution(c.Reference).Status)
	})

	s.Run("unknown reference", func() {
		err := s.service.Confirm(s.ctx, models.NewReference(), Outcome{Succeeded: true})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.True(dErrors.HasReason(err, dErrors.ReasonUnknownReference))
	})

	s.Run("amount mismatch is refused without mutation", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		outcome := s.success(c)
		outcome.Amount = 100

		err := s.service.Confirm(s.ctx, c.Reference, outcome)
		s.True(dErrors.HasReason(err, dErrors.ReasonAmountMismatch))
		s.Equal(models.StatusPending, s.contribution(c.Reference).Status)
		s.Equal(0, s.pool(p.ID).FilledSlots)
	})

	s.Run("currency mismatch is refused without mutation", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		outcome := s.success(c)
		outcome.Currency = "NGN"

		err := s.service.Confirm(s.ctx, c.Reference, outcome)
		s.True(dErrors.HasCode(err, dErrors.CodeGatewayFailure))
		s.True(dErrors.HasReason(err, dErrors.ReasonCurrencyMismatch))
		s.Equal(models.StatusPending, s.contribution(c.Reference).Status)
		s.Equal(0, s.pool(p.ID).FilledSlots)
		s.Equal(int64(0), s.pool(p.ID).RaisedAmount)
	})

	s.Run("currency is compared case-insensitively", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		outcome := s.success(c)
		outcome.Currency = "kes"

		s.Require().NoError(s.service.Confirm(s.ctx, c.Reference, outcome))
		s.Equal(models.StatusConfirmed, s.contribution(c.Reference).Status)
	})

	s.Run("zero amount skips the amount check", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		s.Require().NoError(s.service.Confirm(s.ctx, c.Reference, Outcome{Succeeded: true, GatewayRef: "gw"}))
		s.Equal(1, s.pool(p.ID).FilledSlots)
	})
}

// Scenario: redirect verification and the push notification both report
// success for the same reference.
func (s *ServiceSuite) TestRedirectThenNotification() {
	p := s.newPool(6, 0)
	c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)

	got, err := s.service.VerifyAndReconcile(s.ctx, c.Reference)
	s.Require().NoError(err)
	s.Equal(models.StatusConfirmed, got.Status)

	outcome, err := s.service.HandleNotification(s.ctx, payment.Notification{
		Event:             payment.EventChargeSuccess,
		Reference:         c.Reference,
		ProviderReference: "psk_123",
		PaidAt:            s.now,
		Amount:            c.Amount,
	})
	s.Require().NoError(err)
	s.Equal(payment.NotificationProcessed, outcome)

	s.Equal(int64(10_000), s.pool(p.ID).RaisedAmount)
	s.Equal(1, s.pool(p.ID).FilledSlots)
}

func (s *ServiceSuite) TestConcurrentConfirm() {
	p := s.newPool(6, 0)
	user := id.UserID(uuid.New())
	c := s.mustIntent(p.ID, user, 2)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.service.Confirm(s.ctx, c.Reference, s.success(c))
		}()
	}
	wg.Wait()

	for _, err := range errs {
		s.NoError(err)
	}
	s.Equal(int64(20_000), s.pool(p.ID).RaisedAmount)
	s.Equal(2, s.pool(p.ID).FilledSlots)
	u, err := s.users.FindByID(context.Background(), user)
	s.Require().NoError(err)
	s.Equal(int64(20_000), u.TotalContributed)
	s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.Confirmations))
}

// Scenario: the gateway reports failure for a pending reference.
func (s *ServiceSuite) TestFail() {
	p := s.newPool(6, 0)
	user := id.UserID(uuid.New())
	c := s.mustIntent(p.ID, user, 1)

	s.Require().NoError(s.service.Fail(s.ctx, c.Reference))

	stored := s.contribution(c.Reference)
	s.Equal(models.StatusFailed, stored.Status)
	s.NotNil(stored.FailedAt)
	s.Equal(int64(0), s.pool(p.ID).RaisedAmount)
	_, err := s.users.FindByID(context.Background(), user)
	s.Error(err, "failure must not create a user aggregate")

	entries := s.events(c.Reference)
	s.Require().Len(entries, 1)
	s.Equal(outbox.EventContributionFailed, entries[0].EventType)

	s.Require().NoError(s.service.Confirm(s.ctx, c.Reference, s.success(c)))
	s.Equal(models.StatusFailed, s.contribution(c.Reference).Status, "failed is terminal")
	s.Equal(0, s.pool(p.ID).FilledSlots)
}

func (s *ServiceSuite) TestConfirmIntegrityFault() {
	p := s.newPool(2, 0)
	first := s.mustIntent(p.ID, id.UserID(uuid.New()), 2)

	// Holds lapse, so a second intent is admitted against the same slots.
	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	res, err := s.intent(later, p.ID, id.UserID(uuid.New()), 1)
	s.Require().NoError(err)
	second := res.Contribution

	s.Require().NoError(s.service.Confirm(s.ctx, first.Reference, s.success(first)))
	err = s.service.Confirm(s.ctx, second.Reference, s.success(second))

	s.True(dErrors.HasCode(err, dErrors.CodeIntegrityFault))
	s.Equal(models.StatusPending, s.contribution(second.Reference).Status)
	s.Equal(2, s.pool(p.ID).FilledSlots)
	s.Empty(s.events(second.Reference))
	s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.IntegrityFaults))
	s.assertLedger(p.ID, 0, 0)
}

func (s *ServiceSuite) TestConfirmDuplicateForUser() {
	p := s.newPool(6, 0)
	user := id.UserID(uuid.New())
	first := s.mustIntent(p.ID, user, 1)
	second := s.mustIntent(p.ID, user, 1)

	s.Require().NoError(s.service.Confirm(s.ctx, first.Reference, s.success(first)))
	err := s.service.Confirm(s.ctx, second.Reference, s.success(second))

	s.True(dErrors.HasReason(err, dErrors.ReasonDuplicateContribution))
	s.Equal(models.StatusPending, s.contribution(second.Reference).Status)
	s.Equal(1, s.pool(p.ID).FilledSlots)
	s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.DuplicateConfirmations))
}

// Many users reserve and confirm concurrently; confirmed slots never pass
// capacity and the counters always match the confirmed rows.
func (s *ServiceSuite) TestCapacityUnderConcurrency() {
	const capacity, users = 5, 40
	p := s.newPool(capacity, 0)

	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Spread intents across hold windows so later ones can outnumber
			// the slots and lean on the confirmation-time check.
			ctx := requestcontext.WithTime(context.Background(), s.now.Add(time.Duration(i%4)*time.Hour))
			res, err := s.intent(ctx, p.ID, id.UserID(uuid.New()), 1+i%2)
			if err != nil {
				return
			}
			c := res.Contribution
			if i%7 == 0 {
				_ = s.service.Fail(ctx, c.Reference)
				return
			}
			_ = s.service.Confirm(ctx, c.Reference, s.success(c))
			_ = s.service.Confirm(ctx, c.Reference, s.success(c))
		}()
	}
	wg.Wait()

	s.LessOrEqual(s.pool(p.ID).FilledSlots, capacity)
	s.assertLedger(p.ID, 0, 0)
}

// =============================================================================
// VerifyAndReconcile / HandleNotification
// =============================================================================

func (s *ServiceSuite) TestVerifyAndReconcile() {
	s.Run("failed verification fails the contribution", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		s.gateway.SetResult(c.Reference, payment.VerifyResult{Reference: c.Reference, Status: payment.VerifyFailed})

		got, err := s.service.VerifyAndReconcile(s.ctx, c.Reference)
		s.Require().NoError(err)
		s.Equal(models.StatusFailed, got.Status)
	})

	s.Run("verified currency differing from the pool is refused", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		s.gateway.SetResult(c.Reference, payment.VerifyResult{
			Status:            payment.VerifySucceeded,
			ProviderReference: "psk_ngn",
			Amount:            c.Amount,
			Currency:          "NGN",
		})

		_, err := s.service.VerifyAndReconcile(s.ctx, c.Reference)
		s.True(dErrors.HasReason(err, dErrors.ReasonCurrencyMismatch))
		s.Equal(models.StatusPending, s.contribution(c.Reference).Status)
		s.Equal(0, s.pool(p.ID).FilledSlots)
	})

	s.Run("pending verification changes nothing", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		s.gateway.SetResult(c.Reference, payment.VerifyResult{Reference: c.Reference, Status: payment.VerifyPending})

		got, err := s.service.VerifyAndReconcile(s.ctx, c.Reference)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, got.Status)
	})

	s.Run("gateway error surfaces as gateway failure", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		s.gateway.VerifyErr = errors.New("503")
		defer func() { s.gateway.VerifyErr = nil }()

		_, err := s.service.VerifyAndReconcile(s.ctx, c.Reference)
		s.True(dErrors.HasCode(err, dErrors.CodeGatewayFailure))
		s.Equal(models.StatusPending, s.contribution(c.Reference).Status)
	})

	s.Run("settled contributions skip the gateway", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		s.Require().NoError(s.service.Fail(s.ctx, c.Reference))
		s.gateway.VerifyErr = errors.New("must not be called")
		defer func() { s.gateway.VerifyErr = nil }()

		got, err := s.service.VerifyAndReconcile(s.ctx, c.Reference)
		s.Require().NoError(err)
		s.Equal(models.StatusFailed, got.Status)
	})

	s.Run("unknown reference", func() {
		_, err := s.service.VerifyAndReconcile(s.ctx, models.NewReference())
		s.True(dErrors.HasReason(err, dErrors.ReasonUnknownReference))
	})
}

func (s *ServiceSuite) TestHandleNotification() {
	s.Run("other events are ignored", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)

		outcome, err := s.service.HandleNotification(s.ctx, payment.Notification{Event: "transfer.success", Reference: c.Reference})
		s.Require().NoError(err)
		s.Equal(payment.NotificationIgnored, outcome)
		s.Equal(models.StatusPending, s.contribution(c.Reference).Status)
	})

	s.Run("unknown reference is acknowledged", func() {
		outcome, err := s.service.HandleNotification(s.ctx, payment.Notification{
			Event: payment.EventChargeSuccess, Reference: models.NewReference(),
		})
		s.Require().NoError(err)
		s.Equal(payment.NotificationIgnored, outcome)
	})

	s.Run("amount mismatch is returned", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		_, err := s.service.HandleNotification(s.ctx, payment.Notification{
			Event: payment.EventChargeSuccess, Reference: c.Reference, Amount: 1,
		})
		s.True(dErrors.HasReason(err, dErrors.ReasonAmountMismatch))
	})

	s.Run("currency mismatch is returned", func() {
		p := s.newPool(6, 0)
		c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
		_, err := s.service.HandleNotification(s.ctx, payment.Notification{
			Event: payment.EventChargeSuccess, Reference: c.Reference, Amount: c.Amount, Currency: "USD",
		})
		s.True(dErrors.HasReason(err, dErrors.ReasonCurrencyMismatch))
		s.Equal(models.StatusPending, s.contribution(c.Reference).Status)
	})
}

// =============================================================================
// Queries
// =============================================================================

func (s *ServiceSuite) TestListByUser() {
	user := id.UserID(uuid.New())
	p1 := s.newPool(6, 0)
	p2 := s.newPool(6, 0)
	s.mustIntent(p1.ID, user, 1)
	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Minute))
	_, err := s.intent(later, p2.ID, user, 2)
	s.Require().NoError(err)

	got, err := s.service.ListByUser(s.ctx, user)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(p2.ID, got[0].Contribution.PoolID, "newest first")
	s.Require().NotNil(got[0].Pool)
	s.Equal(p2.ID, got[0].Pool.ID)
	s.Equal(p1.ID, got[1].Pool.ID)
}

func (s *ServiceSuite) TestListByPool() {
	p := s.newPool(6, 0)
	s.mustIntent(p.ID, id.UserID(uuid.New()), 1)

	s.Run("creator sees contributions", func() {
		pool, rows, err := s.service.ListByPool(s.ctx, s.creator, p.ID)
		s.Require().NoError(err)
		s.Equal(p.ID, pool.ID)
		s.Len(rows, 1)
	})

	s.Run("others are forbidden", func() {
		_, _, err := s.service.ListByPool(s.ctx, id.UserID(uuid.New()), p.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing pool", func() {
		_, _, err := s.service.ListByPool(s.ctx, s.creator, id.NewPoolID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestCreatorDashboard() {
	p1 := s.newPool(6, 0)
	p2 := s.newPool(4, 0)
	alice, bob := id.UserID(uuid.New()), id.UserID(uuid.New())

	for _, pc := range []struct {
		pool  id.PoolID
		user  id.UserID
		slots int
	}{{p1.ID, alice, 2}, {p1.ID, bob, 1}, {p2.ID, alice, 1}} {
		c := s.mustIntent(pc.pool, pc.user, pc.slots)
		s.Require().NoError(s.service.Confirm(s.ctx, c.Reference, s.success(c)))
	}
	s.mustIntent(p2.ID, id.UserID(uuid.New()), 1)

	dash, err := s.service.CreatorDashboard(s.ctx, s.creator)
	s.Require().NoError(err)
	s.Len(dash.Pools, 2)
	s.Equal(int64(40_000), dash.RaisedByCurrency["KES"])
	s.Equal(4, dash.ConfirmedSlots)
	s.Equal(2, dash.Contributors)
	s.Equal(1, dash.PendingCount)

	empty, err := s.service.CreatorDashboard(s.ctx, id.UserID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(empty.Pools)
}

func (s *ServiceSuite) TestUpdateDeliveryStatus() {
	p := s.newPool(6, 0)
	confirmed := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
	s.Require().NoError(s.service.Confirm(s.ctx, confirmed.Reference, s.success(confirmed)))
	pending := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)

	s.Run("creator labels a confirmed contribution", func() {
		got, err := s.service.UpdateDeliveryStatus(s.ctx, s.creator, confirmed.Reference, models.DeliveryShipped)
		s.Require().NoError(err)
		s.Equal(models.DeliveryShipped, got.DeliveryStatus)
		s.Equal(models.DeliveryShipped, s.contribution(confirmed.Reference).DeliveryStatus)
		s.Equal(10_000, int(s.pool(p.ID).RaisedAmount), "labels never touch counters")
	})

	s.Run("pending contributions cannot be labelled", func() {
		_, err := s.service.UpdateDeliveryStatus(s.ctx, s.creator, pending.Reference, models.DeliveryShipped)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("only the creator may label", func() {
		_, err := s.service.UpdateDeliveryStatus(s.ctx, id.UserID(uuid.New()), confirmed.Reference, models.DeliveryDelivered)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown reference", func() {
		_, err := s.service.UpdateDeliveryStatus(s.ctx, s.creator, models.NewReference(), models.DeliveryShipped)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestAuditPool() {
	s.Run("consistent after reconciliation", func() {
		p := s.newPool(6, 0)
		for i := range 3 {
			c := s.mustIntent(p.ID, id.UserID(uuid.New()), 1)
			if i == 1 {
				s.Require().NoError(s.service.Fail(s.ctx, c.Reference))
				continue
			}
			s.Require().NoError(s.service.Confirm(s.ctx, c.Reference, s.success(c)))
		}

		report, err := s.service.AuditPool(s.ctx, p.ID)
		s.Require().NoError(err)
		s.True(report.Consistent(), fmt.Sprintf("%+v", report))
		s.Equal(int64(20_000), report.ComputedRaised)
	})

	s.Run("reports drift", func() {
		p := s.newPool(6, 3)
		report, err := s.service.AuditPool(s.ctx, p.ID)
		s.Require().NoError(err)
		s.False(report.Consistent())
		s.Equal(3, report.RecordedSlots)
		s.Equal(0, report.ComputedSlots)
	})
}
