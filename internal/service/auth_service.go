package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"expense_ledger/internal/model"
	"expense_ledger/internal/repository"
	"expense_ledger/internal/utils"

	"github.com/charmbracelet/log"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	GoogleLogin(ctx context.Context, credential string) (*model.User, string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	budgetRepo repository.BudgetRepository
	jwtUtil    *utils.JWTUtil
	google     GoogleVerifier
}

// NewAuthService creates a new AuthService. google may be nil to disable
// Google sign-in.
func NewAuthService(userRepo repository.UserRepository, budgetRepo repository.BudgetRepository, jwtUtil *utils.JWTUtil, google GoogleVerifier) AuthService {
	return &authService{
		userRepo:   userRepo,
		budgetRepo: budgetRepo,
		jwtUtil:    jwtUtil,
		google:     google,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account with the default budget config.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, "", invalid("name", "is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, "", invalid("email", "is not a valid address")
	}
	if len(password) < MinPasswordLength {
		return nil, "", invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, "", ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now(),
	}
	if err := s.create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Name)
	if err != nil {
		log.Error("user created but token generation failed", "user_id", user.ID, "err", err)
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}
	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, "", ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// GoogleLogin signs in with a Google ID token, creating the account on first use.
func (s *authService) GoogleLogin(ctx context.Context, credential string) (*model.User, string, error) {
	if s.google == nil {
		return nil, "", ErrGoogleLoginDisabled
	}
	identity, err := s.google.Verify(ctx, credential)
	if err != nil {
		log.Warn("google token rejected", "err", err)
		return nil, "", ErrInvalidCredentials
	}

	email := normalizeEmail(identity.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		name := identity.Name
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user = &model.User{Name: name, Email: email, CreatedAt: time.Now()}
		if err := s.create(ctx, user); err != nil {
			return nil, "", err
		}
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// create stores user and materialises its budget config.
func (s *authService) create(ctx context.Context, user *model.User) error {
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user in repository: %w", err)
	}
	if _, err := s.budgetRepo.GetOrCreate(ctx, user.ID); err != nil {
		log.Warn("default budget config not created", "user_id", user.ID, "err", err)
	}
	return nil
}
