package jwttoken

import (
	authmw "poolpay/pkg/platform/middleware/auth"
)

// MiddlewareValidator narrows a JWTService to the caller identity the auth
// middleware places on the request context.
type MiddlewareValidator struct {
	service *JWTService
}

func NewMiddlewareValidator(service *JWTService) MiddlewareValidator {
	return MiddlewareValidator{service: service}
}

func (v MiddlewareValidator) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{UserID: claims.UserID, Email: claims.Email}, nil
}
