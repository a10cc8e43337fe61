package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/betcleverde/betclever-landing-hub/internal/apperr"
	"github.com/betcleverde/betclever-landing-hub/internal/profile"
)

const refreshTokenPrefix = "refresh_token:"

// Service owns credential storage and session tokens. Sign-up also creates
// the profiles row, so the privilege lookup always has a record to hit.
type Service struct {
	users    UserRepository
	profiles profile.Repository
	rdb      *redis.Client
	jwt      *JWTManager
	log      *zap.SugaredLogger

	refreshTTL time.Duration
}

func NewService(users UserRepository, profiles profile.Repository, rdb *redis.Client, jwt *JWTManager, refreshTTL time.Duration, log *zap.SugaredLogger) *Service {
	return &Service{
		users:      users,
		profiles:   profiles,
		rdb:        rdb,
		jwt:        jwt,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

func (s *Service) SignUp(ctx context.Context, email, password, passwordConfirm string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", apperr.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password too short", apperr.ErrValidation)
	}
	if password != passwordConfirm {
		return nil, fmt.Errorf("%w: passwords do not match", apperr.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.users.Create(ctx, u); err != nil {
		var we mongo.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == 11000 {
					return nil, fmt.Errorf("%w: email already registered", apperr.ErrAuth)
				}
			}
		}
		s.log.Errorw("create user", "err", err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}

	if err := s.profiles.Ensure(ctx, u.ID); err != nil {
		s.log.Errorw("ensure profile", "user_id", u.ID, "err", err)
	}
	return u, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Tokens, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, fmt.Errorf("%w: invalid credentials", apperr.ErrAuth)
		}
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid credentials", apperr.ErrAuth)
	}

	tokens, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	u.LastLoginAt = &now
	if err := s.users.Update(ctx, u); err != nil {
		s.log.Warnw("update last login", "user_id", u.ID, "err", err)
	}
	return tokens, u, nil
}

func (s *Service) SignOut(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, refreshTokenPrefix+userID).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	return nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := s.jwt.Parse(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", apperr.ErrAuth)
	}

	stored, err := s.rdb.Get(ctx, refreshTokenPrefix+claims.UserID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: refresh token revoked", apperr.ErrAuth)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	if stored != refreshToken {
		return nil, fmt.Errorf("%w: refresh token mismatch", apperr.ErrAuth)
	}

	// Rotate: the old refresh token dies with the new issue.
	s.rdb.Del(ctx, refreshTokenPrefix+claims.UserID)

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrAuth, err)
	}
	return s.issueTokens(ctx, u)
}

// IsAdmin re-checks the privilege flag on the profiles record. Never cached
// in the token.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.profiles.IsAdmin(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}
	return users, nil
}

func (s *Service) issueTokens(ctx context.Context, u *User) (*Tokens, error) {
	access, exp, err := s.jwt.GenerateAccess(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	refresh, _, err := s.jwt.GenerateRefresh(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	if err := s.rdb.Set(ctx, refreshTokenPrefix+u.ID, refresh, s.refreshTTL).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp.Unix()}, nil
}
