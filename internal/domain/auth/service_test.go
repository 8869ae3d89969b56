package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"metalstock/internal/core/apperror"
	appctx "metalstock/internal/core/context"
	"metalstock/internal/core/id"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memUsers struct {
	mu     sync.Mutex
	users  map[id.ID]User
	getErr error
}

func (m *memUsers) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, userID id.ID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (m *memUsers) Update(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]RefreshToken
}

func (m *memTokens) SaveRefreshToken(_ context.Context, t *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.TokenHash] = *t
	return nil
}

func (m *memTokens) GetRefreshToken(_ context.Context, hash string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[hash]
	if !ok {
		return nil, apperror.NewNotFound("refresh_token", "")
	}
	return &t, nil
}

func (m *memTokens) RevokeRefreshToken(_ context.Context, tokenID id.ID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = &reason
			m.tokens[k] = t
		}
	}
	return nil
}

func (m *memTokens) RevokeAllUserTokens(_ context.Context, userID id.ID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = &reason
			m.tokens[k] = t
		}
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *memUsers, *JWTService) {
	t.Helper()
	users := &memUsers{users: make(map[id.ID]User)}
	tokens := &memTokens{tokens: make(map[string]RefreshToken)}
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(users, tokens, passthroughTx{}, jwtSvc, DefaultServiceConfig()), users, jwtSvc
}

func addUser(t *testing.T, users *memUsers, email, name, role, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := NewUser(email, name, string(hash))
	u.Role = role
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestLogin_IssuesRoleClaim(t *testing.T) {
	svc, users, jwtSvc := newTestService(t)
	u := addUser(t, users, "anna@example.com", "Анна", appctx.RoleAdmin, "secret-pass")

	tokens, user, err := svc.Login(context.Background(), Credentials{Email: "Anna@Example.com ", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.Equal(t, "Bearer", tokens.TokenType)

	principal, err := jwtSvc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), principal.UserID)
	assert.Equal(t, appctx.RoleAdmin, principal.Role)
	assert.Equal(t, "Анна", principal.Name)
	assert.True(t, principal.IsAdmin())
}

func TestLogin_WrongPasswordLocksAfterAttempts(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := addUser(t, users, "op@example.com", "", appctx.RoleOperator, "right-pass")

	for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
		_, _, err := svc.Login(context.Background(), Credentials{Email: u.Email, Password: "wrong"})
		require.Error(t, err)
	}

	_, _, err := svc.Login(context.Background(), Credentials{Email: u.Email, Password: "right-pass"})
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, _, err := svc.Login(context.Background(), Credentials{Email: "nobody@example.com", Password: "x"})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestProfileFallback(t *testing.T) {
	u := &User{Email: "ivan.petrov@example.com", Role: "superuser"}
	u.NormalizeProfile()
	assert.Equal(t, "ivan.petrov", u.Name)
	assert.Equal(t, appctx.RoleOperator, u.Role)
}

func TestMe_FallsBackToClaims(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: id.New().String(),
		Email:  "ghost@example.com",
	})

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ghost", me.Name)
	assert.Equal(t, appctx.RoleOperator, me.Role)
}

func TestMe_StorageOutageServesClaims(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := addUser(t, users, "olga@example.com", "Ольга", appctx.RoleAdmin, "secret-pass")
	users.getErr = apperror.NewTransient(errors.New("statement timeout"))
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: u.ID.String(),
		Email:  u.Email,
		Name:   "Ольга",
		Role:   appctx.RoleAdmin,
	})

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
	assert.Equal(t, "Ольга", me.Name)
	assert.Equal(t, appctx.RoleAdmin, me.Role)

	users.getErr = errors.New("corrupt row")
	_, err = svc.Me(ctx)
	assert.Error(t, err)
}

func TestRefreshToken_Rotates(t *testing.T) {
	svc, users, _ := newTestService(t)
	addUser(t, users, "op@example.com", "Оператор", appctx.RoleOperator, "right-pass")

	tokens, _, err := svc.Login(context.Background(), Credentials{Email: "op@example.com", Password: "right-pass"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	_, err = svc.RefreshToken(context.Background(), tokens.RefreshToken)
	require.Error(t, err)
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := addUser(t, users, "boss@example.com", "", appctx.RoleOperator, "old-pass")

	admin, err := svc.EnsureAdmin(context.Background(), "boss@example.com", "Босс", "new-password")
	require.NoError(t, err)
	assert.Equal(t, u.ID, admin.ID)

	stored, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, appctx.RoleAdmin, stored.Role)
	assert.Equal(t, "Босс", stored.Name)
}

func TestValidateToken_RejectsForeignSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("one"))
	verifier := NewJWTService(DefaultJWTConfig("two"))

	token, _, err := issuer.GenerateAccessToken(NewUser("a@example.com", "", ""), "")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}
