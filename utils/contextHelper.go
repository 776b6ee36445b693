package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/sales_backend/appctx"
)

// Caller is the authenticated identity the auth middleware resolves from a bearer token.
type Caller struct {
	Token    string
	UserId   int
	Username string
	IsAdmin  bool
}

// WithCaller stores every field of caller in ctx.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	ctx = appctx.Set(ctx, appctx.ContextKeyToken, caller.Token)
	ctx = appctx.Set(ctx, appctx.ContextKeyUserId, caller.UserId)
	ctx = appctx.Set(ctx, appctx.ContextKeyUsername, caller.Username)
	return appctx.Set(ctx, appctx.ContextKeyIsAdmin, caller.IsAdmin)
}

// CallerFromContext reports false for anonymous requests.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	username, ok := appctx.GetString(ctx, appctx.ContextKeyUsername)
	if !ok {
		return Caller{}, false
	}
	token, _ := appctx.GetString(ctx, appctx.ContextKeyToken)
	userId, _ := appctx.GetInt(ctx, appctx.ContextKeyUserId)
	isAdmin, _ := appctx.GetBool(ctx, appctx.ContextKeyIsAdmin)
	return Caller{Token: token, UserId: userId, Username: username, IsAdmin: isAdmin}, true
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, appctx.ContextKeyUsername)
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, appctx.ContextKeyUserId)
}

func GetIsAdminFromContext(ctx context.Context) (bool, bool) {
	return appctx.GetBool(ctx, appctx.ContextKeyIsAdmin)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, appctx.ContextKeyUserId, userId)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, appctx.ContextKeyUsername, username)
}

func SetIsAdminInContext(ctx context.Context, isAdmin bool) context.Context {
	return appctx.Set(ctx, appctx.ContextKeyIsAdmin, isAdmin)
}

// correlation ids tag log lines and spans of one request

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, appctx.ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, appctx.ContextKeyCorrelationId, correlationId)
}
