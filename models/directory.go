package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jadygoy/cafe_backend/config"
	"github.com/jadygoy/cafe_backend/metrics"
	"github.com/jadygoy/cafe_backend/utils"
	"github.com/sirupsen/logrus"
)

const LoginSuccessMessage = "Login successful"

// UserDirectory owns username uniqueness and PIN login.
type UserDirectory struct {
	store  UserStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewUserDirectory(store UserStore, logger *logrus.Logger) *UserDirectory {
	if logger == nil {
		logger = config.GetLogger()
	}
	return &UserDirectory{
		store:  store,
		logger: logger,
		now:    utcNow,
	}
}

func (d *UserDirectory) CreateUser(ctx context.Context, input *NewUser) (result *User, err error) {
	ctx, span := tracer.Start(ctx, "UserDirectory.CreateUser")
	defer func() { endSpan(span, err) }()

	user := &User{
		ID:        uuid.NewString(),
		Username:  input.Username,
		Pin:       input.Pin,
		IsAdmin:   input.IsAdmin,
		CreatedAt: d.now(),
	}
	if err := d.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, utils.ErrorDuplicateUsername) {
			return nil, err
		}
		config.LogError(d.logger, "directory.go", "CreateUser", "store.CreateUser", input.Username, err)
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login succeeds only when both username and pin match one stored user
// exactly. Every mismatch is reported as ErrorInvalidCredentials.
func (d *UserDirectory) Login(ctx context.Context, input *LoginInput) (result *LoginUser, err error) {
	ctx, span := tracer.Start(ctx, "UserDirectory.Login")
	defer func() {
		metrics.ObserveLogin(err)
		endSpan(span, err)
	}()

	user, err := d.store.FindUserByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.ErrorInvalidCredentials
		}
		config.LogError(d.logger, "directory.go", "Login", "store.FindUserByUsername", input.Username, err)
		return nil, fmt.Errorf("login: %w", err)
	}
	if user.Username != input.Username || user.Pin != input.Pin {
		return nil, utils.ErrorInvalidCredentials
	}

	return &LoginUser{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}, nil
}

func (d *UserDirectory) ListUsers(ctx context.Context) (results []*User, err error) {
	ctx, span := tracer.Start(ctx, "UserDirectory.ListUsers")
	defer func() { endSpan(span, err) }()

	results, err = d.store.ListUsers(ctx)
	if err != nil {
		config.LogError(d.logger, "directory.go", "ListUsers", "store.ListUsers", nil, err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	return results, nil
}
