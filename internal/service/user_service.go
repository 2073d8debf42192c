package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/constants"
	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"golang.org/x/crypto/bcrypt"
)

// UserInput 更新時空字串代表不修改
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type IUserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	CreateUser(ctx context.Context, in UserInput) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, in UserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
	UpdateProfile(ctx context.Context, userID uint, in UserInput) (*model.User, error)
}

var _ IUserService = (*UserService)(nil)

/*
刪除使用者或變更角色時，同一個transaction內撤銷其所有session
*/
type UserService struct {
	uow   db.UnitOfWork
	users db.IUserRepository
	now   func() time.Time
}

func NewUserService(uow db.UnitOfWork, users db.IUserRepository) *UserService {
	if uow == nil || users == nil {
		panic("user service dependencies cannot be nil")
	}
	return &UserService{uow: uow, users: users, now: time.Now}
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return user, nil
}

// 未指定角色時為 customer
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*model.User, error) {
	return createUser(ctx, s.users, in)
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, in UserInput) (*model.User, error) {
	if in.Role != "" && !constants.IsValidRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, in.Role)
	}
	var updated *model.User
	err := s.uow.Transaction(ctx, func(store db.Store) error {
		before, err := store.GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		updated, err = updateUser(ctx, store, id, in)
		if err != nil {
			return err
		}
		if updated.Role != before.Role {
			_, err = store.RevokeUserSessions(ctx, id, s.now())
		}
		return err
	})
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	err := s.uow.Transaction(ctx, func(store db.Store) error {
		if err := store.DeleteUser(ctx, id); err != nil {
			return err
		}
		_, err := store.RevokeUserSessions(ctx, id, s.now())
		return err
	})
	return translateRepoErr(err)
}

// UpdateProfile 使用者修改自己的資料，不能改角色
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UserInput) (*model.User, error) {
	in.Role = ""
	return updateUser(ctx, s.users, userID, in)
}

// updateUser 空字串欄位不修改
func updateUser(ctx context.Context, users db.IUserRepository, id uint, in UserInput) (*model.User, error) {
	patch := &model.User{
		ID:    id,
		Name:  strings.TrimSpace(in.Name),
		Email: normalizeEmail(in.Email),
		Role:  in.Role,
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = hash
	}
	if err := users.UpdateUser(ctx, patch); err != nil {
		return nil, translateRepoErr(err)
	}
	user, err := users.GetUserByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return user, nil
}

func createUser(ctx context.Context, users db.IUserRepository, in UserInput) (*model.User, error) {
	if in.Role == "" {
		in.Role = string(constants.RoleCustomer)
	}
	if !constants.IsValidRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, in.Role)
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidArgument)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user, err := users.CreateUser(ctx, &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
	})
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
