package authservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/domain/policy"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/sessionrepo"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/userrepo"
	"github.com/Leopold1975/incidents_control/internal/pkg/config"
	"github.com/Leopold1975/incidents_control/internal/pkg/jwtauth"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotAllowed         = errors.New("only admins can create privileged users")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("refresh session revoked or expired")
)

type Repository interface {
	CreateUser(context.Context, models.User) (int64, error)
	GetByEmail(context.Context, string) (models.User, error)
	GetByID(context.Context, int64) (models.User, error)
}

type Sessions interface {
	Store(ctx context.Context, jti string, userID int64, ttl time.Duration) error
	Validate(ctx context.Context, jti string) (int64, error)
	Revoke(ctx context.Context, jti string) error
}

type AuthService struct {
	userRepo Repository
	sessions Sessions
	cfg      config.Auth
}

func New(userRepo Repository, sessions Sessions, cfg config.Auth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		cfg:      cfg,
	}
}

func (as *AuthService) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = models.RoleReporter
	}

	if role != models.RoleReporter { // только админы создают привилегированные роли
		claims, err := jwtauth.VerifyAccess(as.cfg.Secret, req.Token)
		if err != nil {
			return AuthResponse{}, ErrNotAllowed
		}

		id, err := claims.UserID()
		if err != nil {
			return AuthResponse{}, ErrNotAllowed
		}

		actor, err := as.userRepo.GetByID(ctx, id)
		if err != nil || actor.Role != models.RoleAdmin {
			return AuthResponse{}, ErrNotAllowed
		}
	}

	cost := as.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("generate from password error: %w", err)
	}

	u := models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         role,
	}

	id, err := as.userRepo.CreateUser(ctx, u)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("create user error: %w", err)
	}

	u.ID = id

	return as.issue(ctx, u)
}

func (as *AuthService) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	u, err := as.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return AuthResponse{}, ErrInvalidCredentials
		}

		return AuthResponse{}, fmt.Errorf("get user error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return AuthResponse{}, ErrInvalidCredentials
	}

	return as.issue(ctx, u)
}

// Refresh validates a refresh token, consumes its server-side session
// and returns a fresh pair. A refresh token can be used exactly once.
func (as *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResponse, error) {
	claims, err := jwtauth.VerifyRefresh(as.cfg.Secret, refreshToken)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("verify refresh error: %w", err)
	}

	userID, err := as.sessions.Validate(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sessionrepo.ErrNotFound) {
			return AuthResponse{}, ErrSessionRevoked
		}

		return AuthResponse{}, fmt.Errorf("validate session error: %w", err)
	}

	if err := as.sessions.Revoke(ctx, claims.ID); err != nil && !errors.Is(err, sessionrepo.ErrNotFound) {
		return AuthResponse{}, fmt.Errorf("revoke session error: %w", err)
	}

	u, err := as.userRepo.GetByID(ctx, userID)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("get user error: %w", err)
	}

	return as.issue(ctx, u)
}

// Logout revokes the refresh session. Unknown sessions are not an error,
// logout has to be idempotent.
func (as *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := jwtauth.VerifyRefresh(as.cfg.Secret, refreshToken)
	if err != nil {
		return nil
	}

	if err := as.sessions.Revoke(ctx, claims.ID); err != nil && !errors.Is(err, sessionrepo.ErrNotFound) {
		return fmt.Errorf("revoke session error: %w", err)
	}

	return nil
}

// Identity checks an access token and resolves the authenticated actor.
// The role is read from the store rather than the token, so a role change
// takes effect without waiting out old access tokens.
func (as *AuthService) Identity(ctx context.Context, token string) (policy.Actor, error) {
	claims, err := jwtauth.VerifyAccess(as.cfg.Secret, token)
	if err != nil {
		return policy.Actor{}, fmt.Errorf("verify access error: %w", err)
	}

	id, err := claims.UserID()
	if err != nil {
		return policy.Actor{}, fmt.Errorf("%w: %w", jwtauth.ErrTokenInvalid, err)
	}

	u, err := as.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return policy.Actor{}, ErrInvalidCredentials
		}

		return policy.Actor{}, fmt.Errorf("get user error: %w", err)
	}

	return policy.Actor{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}

func (as *AuthService) issue(ctx context.Context, u models.User) (AuthResponse, error) {
	pair, err := jwtauth.NewPair(as.cfg.Secret, u.ID, u.Email, as.cfg.AccessTTL, as.cfg.RefreshTTL)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("can't get token error: %w", err)
	}

	if err := as.sessions.Store(ctx, pair.RefreshJTI, u.ID, as.cfg.RefreshTTL); err != nil {
		return AuthResponse{}, fmt.Errorf("store session error: %w", err)
	}

	return AuthResponse{
		Token:        pair.Access,
		RefreshToken: pair.Refresh,
		User:         u,
	}, nil
}
