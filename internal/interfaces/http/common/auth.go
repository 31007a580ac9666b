package common

import "context"

type contextKey string

const operatorContextKey contextKey = "operator"

// Operator represents the JWT-derived principal allowed to read inquiries.
type Operator struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Issuer string `json:"issuer,omitempty"`
}

// ContextWithOperator stores the authenticated operator into context.
func ContextWithOperator(ctx context.Context, operator Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey, operator)
}

// OperatorFromContext extracts the authenticated operator from context.
func OperatorFromContext(ctx context.Context) (Operator, bool) {
	operator, ok := ctx.Value(operatorContextKey).(Operator)
	return operator, ok
}
