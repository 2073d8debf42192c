package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/constants"
	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/auth/token"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/rs/zerolog"
)

type LoginResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, userID uint) error
	Authenticate(ctx context.Context, accessToken string) (*token.Payload, error)
}

var _ IAuthService = (*AuthService)(nil)

/*
token 的 ID 對應一筆 session
驗證 token 時同時確認 session 未撤銷、未過期
*/
type AuthService struct {
	users    db.IUserRepository
	sessions db.ISessionRepository
	maker    token.Maker
	duration time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users db.IUserRepository, sessions db.ISessionRepository, maker token.Maker, duration time.Duration, logger zerolog.Logger) *AuthService {
	if users == nil || sessions == nil || maker == nil {
		panic("auth service dependencies cannot be nil")
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		maker:    maker,
		duration: duration,
		logger:   logger.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

// Register 公開註冊只能建立 customer
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	return createUser(ctx, s.users, UserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     string(constants.RoleCustomer),
	})
}

// 錯誤:
//   - ErrInvalidCredentials: 帳號不存在或密碼錯誤，兩者不區分
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !checkPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, payload, err := s.maker.CreateToken(user.ID, user.Role, s.duration)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	err = s.sessions.CreateSession(ctx, &model.Session{
		ID:        payload.ID.String(),
		UserID:    user.ID,
		ExpiresAt: payload.ExpiredAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user logged in")
	return &LoginResult{User: user, Token: accessToken, ExpiresAt: payload.ExpiredAt}, nil
}

// Logout 撤銷該使用者所有 session
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	n, err := s.sessions.RevokeUserSessions(ctx, userID, s.now())
	if err != nil {
		return err
	}
	s.logger.Info().Uint("user_id", userID).Int64("sessions", n).Msg("user logged out")
	return nil
}

func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*token.Payload, error) {
	payload, err := s.maker.VerifyToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	session, err := s.sessions.GetSession(ctx, payload.ID.String())
	if err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !session.IsActive(s.now()) {
		return nil, ErrUnauthenticated
	}

	// 使用者可能已被刪除或改了角色，以資料庫為準
	user, err := s.users.GetUserByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	payload.Role = user.Role
	return payload, nil
}

// SeedAdmin 啟動時建立管理員，已存在則不動
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) (*model.User, error) {
	existing, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return nil, err
	}
	user, err := createUser(ctx, s.users, UserInput{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     string(constants.RoleAdmin),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("email", user.Email).Msg("admin account seeded")
	return user, nil
}
