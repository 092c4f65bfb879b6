package service

import (
	"context"
	"errors"
	"parkbook/internal/access"
	userserrors "parkbook/internal/users/errors"
	"parkbook/internal/users/repository"
	"parkbook/internal/users/validator"
	"parkbook/pkg/config"
	mongotx "parkbook/pkg/db/mongo"
	apperrors "parkbook/pkg/errors"
	"parkbook/pkg/model"
	"parkbook/pkg/sanitizer"
	"parkbook/pkg/validation"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const tokenType = "Bearer"

type TokenIssuer interface {
	Issue(userID string, role access.Role) (string, time.Time, error)
}

type UserService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthToken, error)
	Profile(ctx context.Context, caller access.Identity) (*model.Profile, error)
	EnsureAdmin(ctx context.Context, login, password string) error
}

type userService struct {
	repo      repository.UserRepository
	tokens    TokenIssuer
	validator *validator.UserValidator
	cfg       *config.Config
	cost      int
}

func NewUserService(repo repository.UserRepository, tokens TokenIssuer, validator *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		tokens:    tokens,
		validator: validator,
		cfg:       cfg,
		cost:      bcrypt.DefaultCost,
	}
}

// Register creates a visitor account. Staff accounts are never created here.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	req.Login = sanitizer.NormalizeLogin(req.Login)
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Surname = sanitizer.NormalizeName(req.Surname)
	if req.Phone != "" {
		phone := sanitizer.NormalizePhone(req.Phone)
		if phone == "" {
			return nil, validation.ToAppError(validation.Field("phone", "phone is not a valid phone number"))
		}
		req.Phone = phone
	}

	if err := s.validator.ValidateRegister(req); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "login", req.Login, "error", err)
		return nil, validation.ToAppError(err)
	}

	user, err := s.newUser(req.Login, req.Password, access.RoleVisitor, req.Name, req.Surname, req.Phone)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, userserrors.ErrLoginTaken):
			return nil, userserrors.LoginTaken()
		case errors.Is(err, userserrors.ErrPhoneTaken):
			return nil, userserrors.PhoneTaken()
		}
		s.cfg.Log.Error("Failed to create user", "login", req.Login, "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthToken, error) {
	req.Login = sanitizer.NormalizeLogin(req.Login)
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	user, err := s.repo.FindByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, mongotx.ErrNotFound) {
			s.cfg.Log.Warn("Login failed", "reason", "unknown login")
			return nil, userserrors.InvalidCredentials()
		}
		s.cfg.Log.Error("Failed to look up user", "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.cfg.Log.Warn("Login failed", "user_id", user.ID, "reason", "wrong password")
		return nil, userserrors.InvalidCredentials()
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, access.Role(user.Role))
	if err != nil {
		s.cfg.Log.Error("Failed to issue token", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	s.cfg.Log.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return &model.AuthToken{
		Token:     token,
		TokenType: tokenType,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *userService) Profile(ctx context.Context, caller access.Identity) (*model.Profile, error) {
	if caller.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	var user *model.User
	var count int64
	var errUser, errCount error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		user, errUser = s.repo.FindByID(ctx, caller.UserID)
	}()

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
	}()

	wg.Wait()
	if errUser != nil {
		if errors.Is(errUser, mongotx.ErrNotFound) || errors.Is(errUser, mongotx.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("User", caller.UserID)
		}
		s.cfg.Log.Error("Failed to load profile", "user_id", caller.UserID, "error", errUser)
		return nil, apperrors.Internal("Failed to load profile", errUser)
	}
	if errCount != nil {
		s.cfg.Log.Error("Failed to count users", "error", errCount)
		return nil, apperrors.Internal("Failed to load profile", errCount)
	}

	return &model.Profile{User: user, UserCount: count}, nil
}

// EnsureAdmin creates the bootstrap admin when no user holds login yet.
// An empty login disables bootstrapping.
func (s *userService) EnsureAdmin(ctx context.Context, login, password string) error {
	login = sanitizer.NormalizeLogin(login)
	if login == "" {
		return nil
	}

	existing, err := s.repo.FindByLogin(ctx, login)
	if err == nil {
		s.cfg.Log.Info("Admin bootstrap skipped, login exists", "user_id", existing.ID, "role", existing.Role)
		return nil
	}
	if !errors.Is(err, mongotx.ErrNotFound) {
		return err
	}

	user, err := s.newUser(login, password, access.RoleAdmin, "Administrator", "", "")
	if err != nil {
		return err
	}
	if err := s.validator.ValidateUser(user); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrLoginTaken) {
			return nil
		}
		return err
	}

	s.cfg.Log.Info("Admin account created", "user_id", user.ID)
	return nil
}

func (s *userService) newUser(login, password string, role access.Role, name, surname, phone string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}
	return &model.User{
		Login:        login,
		PasswordHash: string(hash),
		Role:         string(role),
		Name:         name,
		Surname:      surname,
		Phone:        phone,
	}, nil
}
