package application

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/coachbar/catalog-api/internal/domain/entity"
	"github.com/coachbar/catalog-api/internal/domain/repository"
	"github.com/coachbar/catalog-api/internal/infrastructure/postgres"
	"github.com/coachbar/catalog-api/pkg/helpers"
	"github.com/coachbar/catalog-api/pkg/imagestore"
)

// UserService implements the user directory: registration, login,
// self-service profile updates and profile picture lifecycle.
type UserService struct {
	Repo   repository.UserRepository
	JWT    *helpers.JWTManager
	Images *imagestore.Manager
	Logger *logrus.Logger
}

func NewUserService(repo repository.UserRepository, jwt *helpers.JWTManager, images *imagestore.Manager, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, JWT: jwt, Images: images, Logger: logger}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

// Register creates a new account. Email uniqueness is enforced by the
// database constraint, not a pre-check.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     in.Role,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, postgres.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a signed token embedding identity
// and role. The error is uniform for unknown email and wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return "", nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.JWT.GenerateToken(u.ID, u.Role)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return "", nil, err
	}
	return token, u, nil
}

func (s *UserService) List(ctx context.Context, q repository.UserQuery) ([]*entity.User, int64, error) {
	return s.Repo.List(ctx, q)
}

func (s *UserService) GetSelf(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UploadProfilePicture stores the new image, supersedes the previous one and
// points the profile reference at the new file. If the record write fails the
// fresh upload is removed so it cannot dangle.
func (s *UserService) UploadProfilePicture(ctx context.Context, userID string, r io.Reader) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	name, err := s.Images.Replace(ctx, u.ProfileImage, r)
	if err != nil {
		return nil, err
	}
	u.ProfileImage = name
	if err := s.Repo.Update(ctx, u); err != nil {
		if dErr := s.Images.Delete(ctx, name); dErr != nil && s.Logger != nil {
			s.Logger.WithError(dErr).WithField("file", name).Warn("cleanup of uploaded profile image failed")
		}
		return nil, err
	}
	return u, nil
}

// UpdateSelf mutates the caller's own record. Only the name is mutable here.
func (s *UserService) UpdateSelf(ctx context.Context, userID, name string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if name != "" {
		u.Name = name
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	return s.Repo.Update(ctx, u)
}
