package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"metalstock/internal/core/apperror"
	appctx "metalstock/internal/core/context"
	"metalstock/internal/core/id"
	"metalstock/internal/core/tx"
	"metalstock/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour, // 7 days
	}
}

// Service provides authentication logic.
type Service struct {
	userRepo   UserRepository
	tokenRepo  TokenRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// Login authenticates user and returns tokens.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *User, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, nil, apperror.NewValidation("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.userRepo.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to record failed login", "user_id", user.ID, "error", uerr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	user.NormalizeProfile()
	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	user.RecordSuccessfulLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"email", user.Email,
		"role", user.Role)

	return tokens, user, nil
}

// RefreshToken rotates a refresh token and issues a new access token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.tokenRepo.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid() {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}
	user.NormalizeProfile()

	var pair *TokenPair
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.tokenRepo.RevokeRefreshToken(ctx, token.ID, "refreshed"); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		pair, err = s.generateTokenPair(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes all user's refresh tokens.
func (s *Service) Logout(ctx context.Context) error {
	uid := appctx.GetUserID(ctx)
	if uid == "" {
		return apperror.NewUnauthorized("authentication required")
	}
	userID, err := id.Parse(uid)
	if err != nil {
		return apperror.NewUnauthorized("invalid principal")
	}
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "logout")
}

// Me returns the profile of the request principal.
func (s *Service) Me(ctx context.Context) (*User, error) {
	principal := appctx.GetUser(ctx)
	if principal == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	userID, err := id.Parse(principal.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid principal")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	switch {
	case err == nil:
	case apperror.IsNotFound(err):
		user = claimsProfile(userID, principal)
	case apperror.IsTransient(err):
		logger.Warn(ctx, "profile lookup failed, serving token claims", "user_id", userID, "error", err)
		user = claimsProfile(userID, principal)
	default:
		return nil, err
	}
	user.NormalizeProfile()
	return user, nil
}

// claimsProfile builds a profile from the validated token when no row can be read.
func claimsProfile(userID id.ID, principal *appctx.UserContext) *User {
	return &User{ID: userID, Email: principal.Email, Name: principal.Name, Role: principal.Role, IsActive: true}
}

// EnsureAdmin creates an admin account or promotes an existing one.
func (s *Service) EnsureAdmin(ctx context.Context, email, name, password string) (*User, error) {
	if len(password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *User
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		switch {
		case err == nil:
			existing.Role = appctx.RoleAdmin
			existing.PasswordHash = string(passwordHash)
			existing.IsActive = true
			if name != "" {
				existing.Name = name
			}
			existing.UpdatedAt = time.Now().UTC()
			user = existing
			return s.userRepo.Update(ctx, existing)
		case apperror.IsNotFound(err):
			user = NewUser(email, name, string(passwordHash))
			user.Role = appctx.RoleAdmin
			if err := user.Validate(ctx); err != nil {
				return err
			}
			return s.userRepo.Create(ctx, user)
		default:
			return fmt.Errorf("get user: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "admin ensured", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// generateTokenPair creates access and refresh tokens.
func (s *Service) generateTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	refreshTokenRaw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	refreshToken := &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshTokenRaw),
		ExpiresAt: time.Now().Add(s.config.RefreshTokenExpiry),
		CreatedAt: time.Now(),
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user, refreshToken.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if err := s.tokenRepo.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// hashToken creates SHA256 hash of token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
