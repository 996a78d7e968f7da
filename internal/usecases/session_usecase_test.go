package usecases_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"shop-kita.backend/internal/domain/entities"
	domainerrors "shop-kita.backend/internal/domain/errors"
	"shop-kita.backend/internal/usecases"
	"shop-kita.backend/pkg/crypto"
)

func newSessionUsecaseForTest(t *testing.T, refreshRepo *MockRefreshTokenRepository, accountRepo *MockAccountRepository) *usecases.SessionUsecase {
	t.Helper()
	return usecases.NewSessionUsecase(refreshRepo, accountRepo, newTestJWTService(t), 7*24*time.Hour)
}

func TestSessionUsecase_Issue_Success(t *testing.T) {
	refreshRepo := new(MockRefreshTokenRepository)
	accountRepo := new(MockAccountRepository)
	uc := newSessionUsecaseForTest(t, refreshRepo, accountRepo)

	account := &entities.Account{ID: uuid.New(), Role: entities.AccountRoleMember}
	refreshRepo.On("DeleteRevokedBefore", mock.Anything, account.ID, mock.Anything).Return(nil).Once()
	var stored *entities.RefreshToken
	refreshRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*entities.RefreshToken)
	}).Return(nil).Once()

	pair, err := uc.Issue(context.Background(), account)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, account.ID, stored.AccountID)
	// Only the digest is persisted, never the token itself.
	assert.Equal(t, crypto.HashToken(pair.RefreshToken), stored.TokenHash)
	assert.NotContains(t, stored.TokenHash, pair.RefreshToken)
}

func TestSessionUsecase_Rotate_Success(t *testing.T) {
	refreshRepo := new(MockRefreshTokenRepository)
	accountRepo := new(MockAccountRepository)
	uc := newSessionUsecaseForTest(t, refreshRepo, accountRepo)

	account := &entities.Account{ID: uuid.New(), Role: entities.AccountRoleMember}
	row := &entities.RefreshToken{ID: uuid.New(), AccountID: account.ID, TokenHash: crypto.HashToken("old-token")}

	refreshRepo.On("GetLiveByHash", mock.Anything, crypto.HashToken("old-token"), mock.Anything).Return(row, nil).Once()
	accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil).Once()
	refreshRepo.On("Revoke", mock.Anything, row.ID, mock.Anything).Return(true, nil).Once()
	refreshRepo.On("DeleteRevokedBefore", mock.Anything, account.ID, mock.Anything).Return(nil).Once()
	refreshRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	pair, got, err := uc.Rotate(context.Background(), "old-token")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, "old-token", pair.RefreshToken)
	refreshRepo.AssertExpectations(t)
}

func TestSessionUsecase_Rotate_UnknownToken(t *testing.T) {
	refreshRepo := new(MockRefreshTokenRepository)
	uc := newSessionUsecaseForTest(t, refreshRepo, new(MockAccountRepository))

	refreshRepo.On("GetLiveByHash", mock.Anything, mock.Anything, mock.Anything).Return(nil, domainerrors.ErrNotFound).Once()

	_, _, err := uc.Rotate(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestSessionUsecase_Rotate_LosesRevokeRace(t *testing.T) {
	refreshRepo := new(MockRefreshTokenRepository)
	accountRepo := new(MockAccountRepository)
	uc := newSessionUsecaseForTest(t, refreshRepo, accountRepo)

	account := &entities.Account{ID: uuid.New(), Role: entities.AccountRoleMember}
	row := &entities.RefreshToken{ID: uuid.New(), AccountID: account.ID}

	refreshRepo.On("GetLiveByHash", mock.Anything, mock.Anything, mock.Anything).Return(row, nil).Once()
	accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil).Once()
	refreshRepo.On("Revoke", mock.Anything, row.ID, mock.Anything).Return(false, nil).Once()

	_, _, err := uc.Rotate(context.Background(), "contested-token")
	assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
	refreshRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSessionUsecase_Issue_RetriesOnHashCollision(t *testing.T) {
	refreshRepo := new(MockRefreshTokenRepository)
	uc := newSessionUsecaseForTest(t, refreshRepo, new(MockAccountRepository))

	account := &entities.Account{ID: uuid.New(), Role: entities.AccountRoleMember}
	refreshRepo.On("DeleteRevokedBefore", mock.Anything, account.ID, mock.Anything).Return(nil).Once()
	refreshRepo.On("Create", mock.Anything, mock.Anything).Return(domainerrors.ErrAlreadyExists).Twice()
	refreshRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	pair, err := uc.Issue(context.Background(), account)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	refreshRepo.AssertNumberOfCalls(t, "Create", 3)
}

func TestSessionUsecase_Issue_CollisionRetriesExhausted(t *testing.T) {
	refreshRepo := new(MockRefreshTokenRepository)
	uc := newSessionUsecaseForTest(t, refreshRepo, new(MockAccountRepository))

	account := &entities.Account{ID: uuid.New(), Role: entities.AccountRoleMember}
	refreshRepo.On("DeleteRevokedBefore", mock.Anything, account.ID, mock.Anything).Return(nil).Once()
	refreshRepo.On("Create", mock.Anything, mock.Anything).Return(domainerrors.ErrAlreadyExists).Times(3)

	_, err := uc.Issue(context.Background(), account)
	require.Error(t, err)
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestSessionUsecase_Logout_UnknownTokenIsNoError(t *testing.T) {
	refreshRepo := new(MockRefreshTokenRepository)
	uc := newSessionUsecaseForTest(t, refreshRepo, new(MockAccountRepository))

	refreshRepo.On("RevokeByHash", mock.Anything, crypto.HashToken("gone"), mock.Anything).Return(nil).Twice()

	require.NoError(t, uc.Logout(context.Background(), "gone"))
	require.NoError(t, uc.Logout(context.Background(), "gone"))
}

// fakeRefreshRepo is a mutex-guarded in-memory implementation used to
// exercise concurrent rotation deterministically.
type fakeRefreshRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entities.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{rows: make(map[uuid.UUID]*entities.RefreshToken)}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, token *entities.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TokenHash == token.TokenHash {
			return domainerrors.ErrAlreadyExists
		}
	}
	clone := *token
	f.rows[token.ID] = &clone
	return nil
}

func (f *fakeRefreshRepo) GetLiveByHash(ctx context.Context, hash string, now time.Time) (*entities.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TokenHash == hash && !row.Revoked && row.ExpiresAt.After(now) {
			clone := *row
			return &clone, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (f *fakeRefreshRepo) Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.Revoked {
		return false, nil
	}
	row.Revoked = true
	return true, nil
}

func (f *fakeRefreshRepo) RevokeByHash(ctx context.Context, hash string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TokenHash == hash {
			row.Revoked = true
		}
	}
	return nil
}

func (f *fakeRefreshRepo) DeleteRevokedBefore(ctx context.Context, accountID uuid.UUID, cutoff time.Time) error {
	return nil
}

func (f *fakeRefreshRepo) DeleteAllRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestSessionUsecase_Rotate_ConcurrentSingleWinner(t *testing.T) {
	refreshRepo := newFakeRefreshRepo()
	accountRepo := new(MockAccountRepository)
	uc := usecases.NewSessionUsecase(refreshRepo, accountRepo, newTestJWTService(t), 7*24*time.Hour)

	account := &entities.Account{ID: uuid.New(), Role: entities.AccountRoleMember}
	accountRepo.On("GetByID", mock.Anything, account.ID).Return(account, nil)

	pair, err := uc.Issue(context.Background(), account)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	successes := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, rotateErr := uc.Rotate(context.Background(), pair.RefreshToken); rotateErr == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	won := 0
	for range successes {
		won++
	}
	assert.Equal(t, 1, won, "exactly one concurrent rotation should win")
}
