package ctxutil

import (
	"context"

	"github.com/yungbote/sheetshare-backend/internal/domain/auth"
)

type principalKey struct{}

// RequestData is what RequireAuth learns about the caller.
type RequestData struct {
	TokenString string
	Principal   auth.Principal
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, principalKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(principalKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// GetPrincipal returns the authenticated caller, if any.
func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	rd := GetRequestData(ctx)
	if rd == nil || !rd.Principal.Valid() {
		return auth.Principal{}, false
	}
	return rd.Principal, true
}
