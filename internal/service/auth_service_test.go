package service

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/auth/token"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	store *db.UnifiedDBImpl
	auth  *AuthService
	users *UserService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.store = newTestStore(suite.T())
	maker, err := token.NewJWTMaker("0123456789abcdef0123456789abcdef")
	require.NoError(suite.T(), err)
	suite.auth = NewAuthService(suite.store, suite.store, maker, time.Hour, zerolog.Nop())
	suite.users = NewUserService(suite.store, suite.store)
}

func (suite *AuthServiceTestSuite) TestRegisterLoginLogout() {
	ctx := context.Background()
	user, err := suite.auth.Register(ctx, "Jane", " Jane@Example.com ", "secret1")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "jane@example.com", user.Email)
	require.Equal(suite.T(), "customer", user.Role)
	require.NotEqual(suite.T(), "secret1", user.PasswordHash)

	_, err = suite.auth.Register(ctx, "Jane", "jane@example.com", "secret1")
	require.ErrorIs(suite.T(), err, ErrEmailTaken)

	_, err = suite.auth.Login(ctx, "jane@example.com", "wrong")
	require.ErrorIs(suite.T(), err, ErrInvalidCredentials)
	_, err = suite.auth.Login(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(suite.T(), err, ErrInvalidCredentials)

	res, err := suite.auth.Login(ctx, "JANE@example.com", "secret1")
	require.NoError(suite.T(), err)
	require.NotEmpty(suite.T(), res.Token)

	payload, err := suite.auth.Authenticate(ctx, res.Token)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), user.ID, payload.UserID)
	require.Equal(suite.T(), "customer", payload.Role)

	require.NoError(suite.T(), suite.auth.Logout(ctx, user.ID))
	_, err = suite.auth.Authenticate(ctx, res.Token)
	require.ErrorIs(suite.T(), err, ErrUnauthenticated)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_BadToken() {
	_, err := suite.auth.Authenticate(context.Background(), "garbage")
	require.ErrorIs(suite.T(), err, ErrUnauthenticated)
}

func (suite *AuthServiceTestSuite) TestSeedAdmin_Idempotent() {
	ctx := context.Background()
	first, err := suite.auth.SeedAdmin(ctx, "admin@example.com", "adminpass")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "admin", first.Role)

	second, err := suite.auth.SeedAdmin(ctx, "admin@example.com", "other")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), first.ID, second.ID)

	res, err := suite.auth.Login(ctx, "admin@example.com", "adminpass")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "admin", res.User.Role)
}

func (suite *AuthServiceTestSuite) TestUserService() {
	ctx := context.Background()
	_, err := suite.users.CreateUser(ctx, UserInput{Name: "x", Email: "x@example.com", Password: "password", Role: "root"})
	require.ErrorIs(suite.T(), err, ErrInvalidArgument)

	user, err := suite.users.CreateUser(ctx, UserInput{Name: "x", Email: "x@example.com", Password: "password"})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "customer", user.Role)
	other, err := suite.users.CreateUser(ctx, UserInput{Name: "y", Email: "y@example.com", Password: "password", Role: "admin"})
	require.NoError(suite.T(), err)

	updated, err := suite.users.UpdateUser(ctx, user.ID, UserInput{Name: "x2", Role: "admin"})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "x2", updated.Name)
	require.Equal(suite.T(), "admin", updated.Role)

	_, err = suite.users.UpdateUser(ctx, user.ID, UserInput{Email: other.Email})
	require.ErrorIs(suite.T(), err, ErrEmailTaken)

	profile, err := suite.users.UpdateProfile(ctx, other.ID, UserInput{Name: "me", Password: "newpassword", Role: "customer"})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "me", profile.Name)
	require.Equal(suite.T(), "admin", profile.Role)
	_, err = suite.auth.Login(ctx, other.Email, "newpassword")
	require.NoError(suite.T(), err)

	users, err := suite.users.ListUsers(ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), users, 2)

	require.NoError(suite.T(), suite.users.DeleteUser(ctx, user.ID))
	_, err = suite.users.GetUser(ctx, user.ID)
	require.ErrorIs(suite.T(), err, ErrUserNotFound)
}

func (suite *AuthServiceTestSuite) login(email, password string) *LoginResult {
	res, err := suite.auth.Login(context.Background(), email, password)
	require.NoError(suite.T(), err)
	return res
}

func (suite *AuthServiceTestSuite) TestDeleteUser_RevokesToken() {
	ctx := context.Background()
	user, err := suite.auth.Register(ctx, "Del", "del@example.com", "secret1")
	require.NoError(suite.T(), err)
	res := suite.login("del@example.com", "secret1")

	require.NoError(suite.T(), suite.users.DeleteUser(ctx, user.ID))
	_, err = suite.auth.Authenticate(ctx, res.Token)
	require.ErrorIs(suite.T(), err, ErrUnauthenticated)

	require.ErrorIs(suite.T(), suite.users.DeleteUser(ctx, user.ID), ErrUserNotFound)
}

func (suite *AuthServiceTestSuite) TestUpdateUser_RoleChangeRevokesToken() {
	ctx := context.Background()
	admin, err := suite.users.CreateUser(ctx, UserInput{Name: "a", Email: "a@example.com", Password: "password", Role: "admin"})
	require.NoError(suite.T(), err)
	res := suite.login("a@example.com", "password")

	// 角色不變不撤銷
	_, err = suite.users.UpdateUser(ctx, admin.ID, UserInput{Name: "a2"})
	require.NoError(suite.T(), err)
	payload, err := suite.auth.Authenticate(ctx, res.Token)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "admin", payload.Role)

	_, err = suite.users.UpdateUser(ctx, admin.ID, UserInput{Role: "customer"})
	require.NoError(suite.T(), err)
	_, err = suite.auth.Authenticate(ctx, res.Token)
	require.ErrorIs(suite.T(), err, ErrUnauthenticated)

	res = suite.login("a@example.com", "password")
	payload, err = suite.auth.Authenticate(ctx, res.Token)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "customer", payload.Role)

	_, err = suite.users.UpdateUser(ctx, 999, UserInput{Name: "x"})
	require.ErrorIs(suite.T(), err, ErrUserNotFound)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_RoleFromUserRecord() {
	ctx := context.Background()
	user, err := suite.auth.Register(ctx, "R", "r@example.com", "secret1")
	require.NoError(suite.T(), err)
	res := suite.login("r@example.com", "secret1")

	// 直接改資料庫，session 未撤銷時角色仍以使用者資料為準
	require.NoError(suite.T(), suite.store.UpdateUser(ctx, &model.User{ID: user.ID, Role: "admin"}))
	payload, err := suite.auth.Authenticate(ctx, res.Token)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "admin", payload.Role)

	require.NoError(suite.T(), suite.store.DeleteUser(ctx, user.ID))
	_, err = suite.auth.Authenticate(ctx, res.Token)
	require.ErrorIs(suite.T(), err, ErrUnauthenticated)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
