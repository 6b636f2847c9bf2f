package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/tigabum/christian-platform/internal/common/cache"
	"github.com/tigabum/christian-platform/internal/identity/repository"
	pkgerrors "github.com/tigabum/christian-platform/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAccessTokenTTL = 24 * time.Hour
	defaultLoginFailTTL   = 15 * time.Minute
	defaultLoginFailLimit = 5
)

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	JWTSecret      []byte
	JWTIssuer      string
	AccessTokenTTL time.Duration
	LoginFailTTL   time.Duration
	LoginFailLimit int
}

// AuthService handles registration, login and token validation.
type AuthService struct {
	users          repository.UserRepository
	loginFailCache cache.BasicOps
	config         AuthServiceConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, loginFailCache cache.BasicOps, cfg AuthServiceConfig) *AuthService {
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = defaultAccessTokenTTL
	}
	if cfg.LoginFailTTL == 0 {
		cfg.LoginFailTTL = defaultLoginFailTTL
	}
	if cfg.LoginFailLimit == 0 {
		cfg.LoginFailLimit = defaultLoginFailLimit
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "christian-platform"
	}

	return &AuthService{
		users:          users,
		loginFailCache: loginFailCache,
		config:         cfg,
	}
}

// RegisterInput represents input for self-service registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     repository.UserRole
}

// LoginInput represents input for login.
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// UserInfo represents the authenticated principal.
type UserInfo struct {
	ID   int64
	Role repository.UserRole
}

// AuthResult represents the result of register and login.
type AuthResult struct {
	AccessToken     string
	AccessExpiresAt time.Time
	User            *repository.User
}

// Register creates a new account and issues a token. Self-service
// registration never grants the responder or admin role; responders are
// provisioned by an administrator.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	if err := ValidateName(input.Name); err != nil {
		return AuthResult{}, err
	}
	email := normalizeEmail(input.Email)
	if err := ValidateEmail(email); err != nil {
		return AuthResult{}, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return AuthResult{}, err
	}

	role := input.Role
	if role == "" {
		role = repository.UserRoleAsker
	}
	if role != repository.UserRoleAsker {
		return AuthResult{}, pkgerrors.New(pkgerrors.InvalidRole)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(fmt.Errorf("hash password failed: %w", err), pkgerrors.InternalServerError)
	}

	user := &repository.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
		Active:       true,
	}

	userID, err := s.users.Create(ctx, nil, user)
	if err != nil {
		return AuthResult{}, mapUserCreateError(err)
	}
	user.ID = userID
	user.CreatedAt = time.Now()

	return s.issueToken(user)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := normalizeEmail(input.Email)
	if err := ValidateEmail(email); err != nil {
		return AuthResult{}, err
	}
	if input.Password == "" {
		return AuthResult{}, pkgerrors.New(pkgerrors.InvalidCredentials)
	}

	if err := s.checkLoginLimit(ctx, email, input.IP); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.GetByEmail(ctx, nil, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			s.recordLoginFailure(ctx, email, input.IP)
			return AuthResult{}, pkgerrors.New(pkgerrors.InvalidCredentials)
		}
		return AuthResult{}, pkgerrors.Wrap(fmt.Errorf("get user failed: %w", err), pkgerrors.DatabaseError)
	}

	if !user.Active {
		return AuthResult{}, pkgerrors.New(pkgerrors.Forbidden).WithMessage("account deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.recordLoginFailure(ctx, email, input.IP)
		return AuthResult{}, pkgerrors.New(pkgerrors.InvalidCredentials)
	}

	s.clearLoginFailure(ctx, email, input.IP)

	return s.issueToken(user)
}

// Authenticate validates a raw bearer token and returns the principal.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (UserInfo, error) {
	claims, err := s.parseToken(raw)
	if err != nil {
		return UserInfo{}, err
	}
	userID, err := userIDFromClaims(claims)
	if err != nil {
		return UserInfo{}, err
	}
	return UserInfo{ID: userID, Role: repository.UserRole(claims.Role)}, nil
}

// GetUser loads the full profile of an authenticated user.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*repository.User, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if stderrors.Is(err, repository.ErrUserNotFound) {
			return nil, pkgerrors.New(pkgerrors.UserNotFound)
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("get user failed: %w", err), pkgerrors.DatabaseError)
	}
	return user, nil
}

func (s *AuthService) issueToken(user *repository.User) (AuthResult, error) {
	accessToken, expiresAt, err := s.generateToken(user.ID, string(user.Role), s.config.AccessTokenTTL)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		AccessToken:     accessToken,
		AccessExpiresAt: expiresAt,
		User:            user,
	}, nil
}

func mapUserCreateError(err error) error {
	if stderrors.Is(err, repository.ErrEmailExists) {
		return pkgerrors.New(pkgerrors.EmailAlreadyExists)
	}
	if stderrors.Is(err, repository.ErrDuplicate) {
		return pkgerrors.New(pkgerrors.RecordAlreadyExists)
	}
	return pkgerrors.Wrap(fmt.Errorf("create user failed: %w", err), pkgerrors.DatabaseError)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
