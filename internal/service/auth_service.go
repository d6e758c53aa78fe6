package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/model"
	appErr "github.com/xxxsen/textlens/internal/pkg/errors"
	"github.com/xxxsen/textlens/internal/pkg/jwt"
	"github.com/xxxsen/textlens/internal/pkg/password"
	"github.com/xxxsen/textlens/internal/repo"
)

type AuthService struct {
	users  *repo.UserRepo
	signer *jwt.Signer
}

func NewAuthService(users *repo.UserRepo, signer *jwt.Signer) *AuthService {
	return &AuthService{users: users, signer: signer}
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.signer.TTL()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || plainPassword == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", appErr.ErrInvalid)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", appErr.ErrConflict
	} else if !appErr.IsNotFound(err) {
		return nil, "", err
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().Unix()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := s.signer.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	logutil.GetLogger(ctx).Info("user registered", zap.String("user_id", user.ID))
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, "", appErr.ErrUnauthorized
		}
		return nil, "", err
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	token, err := s.signer.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// CurrentUser resolves a token subject; a user that no longer exists is unauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}
