package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"shop-kita.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) RecordLoginFailure(ctx context.Context, id uuid.UUID, expectedCount, newCount int, lockedUntil *time.Time) (bool, error) {
	args := m.Called(ctx, id, expectedCount, newCount, lockedUntil)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// Mock RefreshTokenRepository
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *entities.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) GetLiveByHash(ctx context.Context, hash string, now time.Time) (*entities.RefreshToken, error) {
	args := m.Called(ctx, hash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) RevokeByHash(ctx context.Context, hash string, at time.Time) error {
	args := m.Called(ctx, hash, at)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteRevokedBefore(ctx context.Context, accountID uuid.UUID, cutoff time.Time) error {
	args := m.Called(ctx, accountID, cutoff)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteAllRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// Mock PendingRegistrationRepository
type MockPendingRegistrationRepository struct {
	mock.Mock
}

func (m *MockPendingRegistrationRepository) Upsert(ctx context.Context, reg *entities.PendingRegistration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *MockPendingRegistrationRepository) GetByEmail(ctx context.Context, email string) (*entities.PendingRegistration, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PendingRegistration), args.Error(1)
}

func (m *MockPendingRegistrationRepository) GetByEmailAndTokenHash(ctx context.Context, email, tokenHash string) (*entities.PendingRegistration, error) {
	args := m.Called(ctx, email, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PendingRegistration), args.Error(1)
}

func (m *MockPendingRegistrationRepository) DeleteByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// Mock VerificationTokenRepository
type MockVerificationTokenRepository struct {
	mock.Mock
}

func (m *MockVerificationTokenRepository) Create(ctx context.Context, token *entities.VerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockVerificationTokenRepository) GetUsableByHash(ctx context.Context, hash string, tokenType entities.VerificationTokenType, now time.Time) (*entities.VerificationToken, error) {
	args := m.Called(ctx, hash, tokenType, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationToken), args.Error(1)
}

func (m *MockVerificationTokenRepository) Consume(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerificationTokenRepository) DeleteUnconsumed(ctx context.Context, accountID uuid.UUID, tokenType entities.VerificationTokenType) error {
	args := m.Called(ctx, accountID, tokenType)
	return args.Error(0)
}

// Mock email Sender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, html, text string) error {
	args := m.Called(ctx, to, subject, html, text)
	return args.Error(0)
}
