package auth

import (
	"context"
	"testing"
	"time"

	"adscreen-service/internal/domain/auth"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/jwt"
	"adscreen-service/internal/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, u *auth.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUsers) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*auth.User)
	return u, args.Error(1)
}

func (m *mockUsers) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*auth.User)
	return u, args.Error(1)
}

func (m *mockUsers) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockUsers) List(ctx context.Context, filters *auth.UserListFilters) ([]auth.User, int64, error) {
	args := m.Called(ctx, filters)
	u, _ := args.Get(0).([]auth.User)
	return u, args.Get(1).(int64), args.Error(2)
}

type stubTokens struct{}

func (stubTokens) Generate(userID int64, role string) (*jwt.Token, error) {
	return &jwt.Token{Value: "signed", JTI: "01HZX", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type mockSessions struct{ mock.Mock }

func (m *mockSessions) CreateSession(ctx context.Context, s *session.SessionData) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessions) InvalidateSession(ctx context.Context, userID int64, jti string) error {
	return m.Called(ctx, userID, jti).Error(0)
}

type mockLimiter struct{ mock.Mock }

func (m *mockLimiter) CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error) {
	args := m.Called(ctx, ip, email)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockLimiter) ResetLoginAttempts(ctx context.Context, ip, email string) error {
	return m.Called(ctx, ip, email).Error(0)
}

func newAuthService() (*AuthService, *mockUsers, *mockSessions, *mockLimiter) {
	users := &mockUsers{}
	sessions := &mockSessions{}
	limiter := &mockLimiter{}
	svc := NewAuthService(users, stubTokens{}, sessions, limiter, zap.NewNop())
	svc.bcryptCost = bcrypt.MinCost
	return svc, users, sessions, limiter
}

func hashed(t *testing.T, password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister_Merchant(t *testing.T) {
	svc, users, sessions, _ := newAuthService()
	ctx := context.Background()

	users.On("Create", ctx, mock.MatchedBy(func(u *auth.User) bool {
		return u.Email == "shop@example.com" && u.Role == auth.RoleBusiness &&
			u.OfferLimit == auth.DefaultOfferLimit && *u.BusinessName == "Coffee Co" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) == nil
	})).Run(func(args mock.Arguments) { args.Get(1).(*auth.User).ID = 3 }).Return(nil)
	sessions.On("CreateSession", ctx, mock.MatchedBy(func(s *session.SessionData) bool {
		return s.UserID == 3 && s.JTI == "01HZX" && s.Role == "business"
	})).Return(nil)
	users.On("UpdateLastLogin", ctx, int64(3), mock.Anything).Return(nil)

	resp, token, err := svc.Register(ctx, &auth.RegisterRequest{
		Email:        "  Shop@Example.com ",
		Password:     "s3cret-pass",
		FullName:     "Sara",
		Role:         auth.RoleBusiness,
		BusinessName: "Coffee Co",
	}, ClientInfo{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "signed", token.Value)
	assert.Equal(t, int64(3), resp.User.ID)
	users.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	users.On("Create", ctx, mock.Anything).Return(xerrors.ErrConflict)

	_, _, err := svc.Register(ctx, &auth.RegisterRequest{
		Email: "a@b.co", Password: "password1", FullName: "A", Role: auth.RoleCustomer,
	}, ClientInfo{})
	var cerr *xerrors.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, i18n.MsgEmailTaken, cerr.MessageID)
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	svc, users, _, _ := newAuthService()

	_, _, err := svc.Register(context.Background(), &auth.RegisterRequest{
		Email: "a@b.co", Password: "password1", FullName: "A", Role: auth.RoleAdmin,
	}, ClientInfo{})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success resets attempts", func(t *testing.T) {
		svc, users, sessions, limiter := newAuthService()
		limiter.On("CheckLoginAttempt", ctx, "1.2.3.4", "shop@example.com").Return(true, int64(4), nil)
		users.On("FindByEmail", ctx, "shop@example.com").Return(&auth.User{
			ID: 3, Email: "shop@example.com", Role: auth.RoleBusiness, IsActive: true,
			PasswordHash: hashed(t, "right-pass"),
		}, nil)
		limiter.On("ResetLoginAttempts", ctx, "1.2.3.4", "shop@example.com").Return(nil)
		sessions.On("CreateSession", ctx, mock.Anything).Return(nil)
		users.On("UpdateLastLogin", ctx, int64(3), mock.Anything).Return(nil)

		resp, _, err := svc.Login(ctx, &auth.LoginRequest{Email: "shop@example.com", Password: "right-pass", IPAddress: "1.2.3.4"})
		require.NoError(t, err)
		assert.NotNil(t, resp.User.LastLoginAt)
		limiter.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, users, sessions, limiter := newAuthService()
		limiter.On("CheckLoginAttempt", ctx, "1.2.3.4", "shop@example.com").Return(true, int64(3), nil)
		users.On("FindByEmail", ctx, "shop@example.com").Return(&auth.User{
			ID: 3, IsActive: true, PasswordHash: hashed(t, "right-pass"),
		}, nil)

		_, _, err := svc.Login(ctx, &auth.LoginRequest{Email: "shop@example.com", Password: "wrong", IPAddress: "1.2.3.4"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
		sessions.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, users, _, limiter := newAuthService()
		limiter.On("CheckLoginAttempt", ctx, "1.2.3.4", "nobody@example.com").Return(true, int64(4), nil)
		users.On("FindByEmail", ctx, "nobody@example.com").Return(nil, xerrors.ErrNotFound)

		_, _, err := svc.Login(ctx, &auth.LoginRequest{Email: "nobody@example.com", Password: "x", IPAddress: "1.2.3.4"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rate limited", func(t *testing.T) {
		svc, users, _, limiter := newAuthService()
		limiter.On("CheckLoginAttempt", ctx, "1.2.3.4", "shop@example.com").Return(false, int64(0), nil)

		_, _, err := svc.Login(ctx, &auth.LoginRequest{Email: "shop@example.com", Password: "x", IPAddress: "1.2.3.4"})
		assert.ErrorIs(t, err, xerrors.ErrRateLimited)
		users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("inactive account", func(t *testing.T) {
		svc, users, _, limiter := newAuthService()
		limiter.On("CheckLoginAttempt", ctx, "1.2.3.4", "shop@example.com").Return(true, int64(4), nil)
		users.On("FindByEmail", ctx, "shop@example.com").Return(&auth.User{
			ID: 3, IsActive: false, PasswordHash: hashed(t, "right-pass"),
		}, nil)

		_, _, err := svc.Login(ctx, &auth.LoginRequest{Email: "shop@example.com", Password: "right-pass", IPAddress: "1.2.3.4"})
		assert.ErrorIs(t, err, xerrors.ErrForbidden)
	})
}

func TestEnsureAdminExists(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when missing", func(t *testing.T) {
		svc, users, _, _ := newAuthService()
		users.On("FindByEmail", ctx, "admin@example.com").Return(nil, xerrors.ErrNotFound)
		users.On("Create", ctx, mock.MatchedBy(func(u *auth.User) bool {
			return u.Role == auth.RoleAdmin && u.IsActive
		})).Return(nil)

		require.NoError(t, svc.EnsureAdminExists(ctx, "Admin@example.com", "pw-12345678", "Admin"))
		users.AssertExpectations(t)
	})

	t.Run("existing admin is kept", func(t *testing.T) {
		svc, users, _, _ := newAuthService()
		users.On("FindByEmail", ctx, "admin@example.com").Return(&auth.User{ID: 1, Role: auth.RoleAdmin}, nil)

		require.NoError(t, svc.EnsureAdminExists(ctx, "admin@example.com", "pw-12345678", "Admin"))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("email owned by merchant", func(t *testing.T) {
		svc, users, _, _ := newAuthService()
		users.On("FindByEmail", ctx, "admin@example.com").Return(&auth.User{ID: 5, Role: auth.RoleBusiness}, nil)

		assert.Error(t, svc.EnsureAdminExists(ctx, "admin@example.com", "pw-12345678", "Admin"))
	})
}
