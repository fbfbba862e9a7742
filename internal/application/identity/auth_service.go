package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/identity"
	"github.com/scentshop/backend/internal/domain/shared"
	"github.com/scentshop/backend/internal/infrastructure/auth"
)

// AuthService implements registration, login and token refresh
type AuthService struct {
	users identity.UserRepository
	jwt   *auth.JWTService
}

// NewAuthService creates an auth service
func NewAuthService(users identity.UserRepository, jwt *auth.JWTService) *AuthService {
	return &AuthService{
		users: users,
		jwt:   jwt,
	}
}

// RegisterRequest creates a new account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest authenticates an account
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse is the account view
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the account and its token pair
type LoginResponse struct {
	User   *UserResponse   `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// Register creates an account; duplicate emails are rejected
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "email is already registered")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	u, err := identity.NewUser(req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("UNAUTHORIZED", "invalid email or password")
		}
		return nil, err
	}
	if !u.Active {
		return nil, shared.NewDomainError("FORBIDDEN", "account is deactivated")
	}
	if !u.CheckPassword(req.Password) {
		return nil, shared.NewDomainError("UNAUTHORIZED", "invalid email or password")
	}

	tokens, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		User:   toUserResponse(u),
		Tokens: tokens,
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*auth.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "invalid refresh token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "invalid refresh token")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "account no longer exists")
	}
	if !u.Active {
		return nil, shared.NewDomainError("FORBIDDEN", "account is deactivated")
	}

	return s.jwt.RefreshTokenPair(req.RefreshToken, u.Role)
}

// Profile returns the caller's account
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

// ListUsers returns a page of accounts (admin)
func (s *AuthService) ListUsers(ctx context.Context, page, pageSize int) ([]*UserResponse, int64, error) {
	filter := shared.NewFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*UserResponse, len(users))
	for i, u := range users {
		responses[i] = toUserResponse(u)
	}
	return responses, total, nil
}

func toUserResponse(u *identity.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
