package jwttoken

import (
	"payout/internal/platform/middleware"
)

// JWTServiceAdapter satisfies middleware.JWTValidator so the middleware
// package stays free of the jwt dependency.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{
		Caller:  claims.Caller(),
		TokenID: claims.ID,
	}, nil
}
