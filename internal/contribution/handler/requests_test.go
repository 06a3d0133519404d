package handler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"poolpay/internal/contribution/models"
	dErrors "poolpay/pkg/domain-errors"
)

type RequestSuite struct {
	suite.Suite
}

func TestRequestSuite(t *testing.T) {
	suite.Run(t, new(RequestSuite))
}

func (s *RequestSuite) TestCreateIntentRequest() {
	s.Run("normalises currency and converts amount", func() {
		req := CreateIntentRequest{Amount: "1500.50", Currency: " kes ", Slots: 2}
		s.Require().NoError(req.Validate())
		s.Equal("KES", req.Currency)
		s.Equal(int64(150_050), req.AmountMinor())
	})

	s.Run("zero decimal currency", func() {
		req := CreateIntentRequest{Amount: "5000", Currency: "RWF", Slots: 1}
		s.Require().NoError(req.Validate())
		s.Equal(int64(5000), req.AmountMinor())
	})

	cases := map[string]CreateIntentRequest{
		"missing currency":   {Amount: "10", Slots: 1},
		"zero slots":         {Amount: "10", Currency: "NGN"},
		"zero amount":        {Amount: "0", Currency: "NGN", Slots: 1},
		"excess precision":   {Amount: "10.001", Currency: "NGN", Slots: 1},
		"relative callback":  {Amount: "10", Currency: "NGN", Slots: 1, CallbackURL: "/done"},
		"javascript scheme":  {Amount: "10", Currency: "NGN", Slots: 1, CallbackURL: "javascript:alert(1)"},
		"negative amount":    {Amount: "-5", Currency: "NGN", Slots: 1},
		"non numeric amount": {Amount: "ten", Currency: "NGN", Slots: 1},
		"slots past max":     {Amount: "9223372036854775807", Currency: "JPY", Slots: math.MaxInt},
	}
	for name, req := range cases {
		s.Run(name, func() {
			err := req.Validate()
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func (s *RequestSuite) TestUpdateDeliveryRequest() {
	req := UpdateDeliveryRequest{Status: " Delivered "}
	s.Require().NoError(req.Validate())
	s.Equal(models.DeliveryDelivered, req.status)

	bad := UpdateDeliveryRequest{Status: "teleported"}
	s.True(dErrors.HasCode(bad.Validate(), dErrors.CodeValidation))
}
