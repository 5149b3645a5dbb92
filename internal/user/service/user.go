package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	usererrors "github.com/azmiruddin-143/Local-Guide-Server/internal/user/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/internal/user/repository"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/config"
	apperrors "github.com/azmiruddin-143/Local-Guide-Server/pkg/errors"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/jwt"
	"github.com/azmiruddin-143/Local-Guide-Server/pkg/model"
)

type RegisterInput struct {
	Name     string     `json:"name" validate:"required,min=2,max=100"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8,max=72"`
	Role     model.Role `json:"role" validate:"required,oneof=GUIDE TOURIST"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is the login/refresh response payload.
type TokenPair struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user,omitempty"`
}

type UserService interface {
	Register(ctx context.Context, input *RegisterInput) (*model.User, error)
	Login(ctx context.Context, input *LoginInput) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, updates *model.UserUpdate) error
	GetAll(ctx context.Context, role model.Role, limit, offset int) ([]*model.User, int64, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type userService struct {
	repo       repository.UserRepository
	jwtService *jwt.Service
	validate   *validator.Validate
	cfg        *config.Config
}

func NewUserService(repo repository.UserRepository, jwtService *jwt.Service, cfg *config.Config) UserService {
	return &userService{
		repo:       repo,
		jwtService: jwtService,
		validate:   validator.New(),
		cfg:        cfg,
	}
}

func (s *userService) Register(ctx context.Context, input *RegisterInput) (*model.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := s.validate.Struct(input); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "email", input.Email, "error", err)
		return nil, apperrors.Validation("Registration validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, usererrors.ErrEmailTaken) {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		s.cfg.Log.Error("Failed to create user", "email", input.Email, "error", err)
		return nil, apperrors.Internal("Failed to create account", err)
	}

	s.cfg.Log.Info("User registered successfully",
		"id", user.ID,
		"email", user.Email,
		"role", user.Role,
	)
	return user, nil
}

func (s *userService) Login(ctx context.Context, input *LoginInput) (*TokenPair, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.Validation("Login validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		s.cfg.Log.Error("Failed to look up user for login", "email", input.Email, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("This account has been deactivated")
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("User logged in", "id", user.ID, "role", user.Role)
	return pair, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.Unauthorized("Refresh token is required")
	}

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired refresh token")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("Account no longer exists")
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("This account has been deactivated")
	}

	return s.issueTokens(user)
}

func (s *userService) issueTokens(user *model.User) (*TokenPair, error) {
	access, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal("Failed to issue access token", err)
	}
	refresh, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal("Failed to issue refresh token", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, usererrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid user ID format")
		}
		s.cfg.Log.Error("Failed to get user by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, updates *model.UserUpdate) error {
	if err := s.validate.Struct(updates); err != nil {
		return apperrors.Validation("Profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	fields := bson.M{}
	if updates.Name != "" {
		fields["name"] = strings.TrimSpace(updates.Name)
	}
	if updates.PhoneNumber != "" {
		fields["phone_number"] = strings.TrimSpace(updates.PhoneNumber)
	}
	if updates.Location != "" {
		fields["location"] = strings.TrimSpace(updates.Location)
	}
	if updates.AvatarURL != "" {
		fields["avatar_url"] = updates.AvatarURL
	}
	if len(fields) == 0 {
		return apperrors.InvalidInput("No fields to update")
	}

	if _, err := s.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		s.cfg.Log.Error("Failed to update profile", "id", id, "error", err)
		return apperrors.Internal("Failed to update profile", err)
	}

	s.cfg.Log.Info("Profile updated successfully", "id", id)
	return nil
}

func (s *userService) GetAll(ctx context.Context, role model.Role, limit, offset int) ([]*model.User, int64, error) {
	if role != "" && !role.Valid() {
		return nil, 0, apperrors.InvalidInput("Invalid role filter")
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, role)
		if err != nil {
			s.cfg.Log.Error("Failed to count users", "error", err)
			errCount = apperrors.Internal("Failed to count users", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		users, err = s.repo.FindAll(sharedCtx, role, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list users", "error", err)
			errFind = apperrors.Internal("Failed to retrieve users", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return users, count, nil
}

func (s *userService) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := s.repo.Update(ctx, id, bson.M{"is_active": active}); err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, usererrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		s.cfg.Log.Error("Failed to change account status", "id", id, "error", err)
		return apperrors.Internal("Failed to change account status", err)
	}

	s.cfg.Log.Info("Account status changed", "id", id, "active", active)
	return nil
}
