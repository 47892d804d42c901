package auth

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

const bearerPrefix = "Bearer "

// NewServerInterceptor moves the Authorization bearer token into the request
// context. It does not reject anything; the app decides which procedures
// need a controller.
func NewServerInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				return next(ctx, req)
			}
			header := req.Header().Get("Authorization")
			if token, ok := strings.CutPrefix(header, bearerPrefix); ok {
				ctx = WithToken(ctx, strings.TrimSpace(token))
			}
			return next(ctx, req)
		}
	}
}

// NewClientInterceptor attaches token to every outgoing request.
func NewClientInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient && token != "" {
				req.Header().Set("Authorization", bearerPrefix+token)
			}
			return next(ctx, req)
		}
	}
}
