package api

import (
	"context"

	"github.com/rpupo63/studio-portfolio-backend/services"
)

type keyType string

const claimsKey keyType = "claims"

// ctxWithClaims adds the verified session claims to the context
func ctxWithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ctxGetClaims retrieves the session claims, if the request passed an auth gate
func ctxGetClaims(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*services.Claims)
	return claims, ok && claims != nil
}
