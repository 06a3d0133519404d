package testutil

import (
	"net/http"

	id "poolpay/pkg/domain"
	"poolpay/pkg/requestcontext"
)

// WithUserID puts an authenticated user on the request context, as the JWT
// middleware would. Strings that are not UUIDs leave the request anonymous.
func WithUserID(req *http.Request, userID string) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithCaller authenticates the request as userID and attaches the email a
// payment intent is initialised with.
func WithCaller(req *http.Request, userID id.UserID, email string) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	return req.WithContext(requestcontext.WithEmail(ctx, email))
}
