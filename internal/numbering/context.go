package numbering

import (
	"context"
	"errors"
)

// ErrNoLedger means a widget tried to number or resolve without a ledger
// in scope. It signals a missing setup step, not missing content.
var ErrNoLedger = errors.New("numbering: no ledger in context")

type ctxKey struct{}

// WithLedger returns a context carrying l.
func WithLedger(ctx context.Context, l *Ledger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the ledger carried by ctx.
func FromContext(ctx context.Context) (*Ledger, error) {
	l, ok := ctx.Value(ctxKey{}).(*Ledger)
	if !ok || l == nil {
		return nil, ErrNoLedger
	}
	return l, nil
}

// MustFromContext is FromContext for call sites where a missing ledger is a
// programming error. It panics with ErrNoLedger.
func MustFromContext(ctx context.Context) *Ledger {
	l, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return l
}
