package interfaces

import "context"

// AccountLocker serializes read-check-append sequences per account.
// fn runs while every listed account is held.
type AccountLocker interface {
	WithAccounts(ctx context.Context, accountIDs []string, fn func(ctx context.Context) error) error
}
