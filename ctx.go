package unifiedauth

import "context"

var sessionCtxKey = &contextKey{"session"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithSessionContext sets the AuthSession snapshot in the given context
func WithSessionContext(ctx context.Context, session AuthSession) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

// SessionFromContext finds the session snapshot from the context.
func SessionFromContext(ctx context.Context) (AuthSession, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(AuthSession)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// LevelAtLeast is a convenience check against the session in the context.
// A missing session counts as AuthLevelNone.
func LevelAtLeast(ctx context.Context, min AuthLevel) bool {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return AuthLevelIsAtLeast(AuthLevelNone, min)
	}
	return AuthLevelIsAtLeast(session.AuthLevel(), min)
}
