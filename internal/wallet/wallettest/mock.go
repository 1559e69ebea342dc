// Package wallettest provides a testify mock of wallet.Repository for packages that
// move points as part of their own transactions.
package wallettest

import (
	"context"

	"eduledger/internal/wallet"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) Create(ctx context.Context, q sqlx.ExtContext, userID int64) error {
	return m.Called(ctx, q, userID).Error(0)
}

func (m *MockRepository) Get(ctx context.Context, q sqlx.ExtContext, userID int64) (*wallet.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockRepository) Balance(ctx context.Context, q sqlx.ExtContext, userID int64, target wallet.Target) (int64, error) {
	args := m.Called(ctx, q, userID, target)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Credit(ctx context.Context, q sqlx.ExtContext, userID int64, target wallet.Target, amount int64) (int64, error) {
	args := m.Called(ctx, q, userID, target, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Debit(ctx context.Context, q sqlx.ExtContext, userID int64, target wallet.Target, amount int64) (int64, error) {
	args := m.Called(ctx, q, userID, target, amount)
	return args.Get(0).(int64), args.Error(1)
}
