package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// UserInput is the body of user creation and registration. IsAdmin is
// honoured by Create only.
type UserInput struct {
	Name      string `json:"name"      validate:"required,min=2,max=100"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6,max=72"`
	Phone     string `json:"phone"     validate:"required"`
	IsAdmin   bool   `json:"isAdmin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type UserService struct {
	store *repositories.Store
}

func NewUserService(store *repositories.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users.All(ctx)
	if err != nil {
		return nil, persistence("list users", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	oid, err := parseID("user", id)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.store.Users.FindByID(ctx, oid)
	if err != nil {
		return models.User{}, lookup(err, "User")
	}
	return u, nil
}

// Create adds a user on behalf of an administrator.
func (s *UserService) Create(ctx context.Context, in UserInput) (models.User, error) {
	return s.create(ctx, in, in.IsAdmin)
}

// Register signs up a customer. The isAdmin field is ignored.
func (s *UserService) Register(ctx context.Context, in UserInput) (models.User, error) {
	return s.create(ctx, in, false)
}

func (s *UserService) create(ctx context.Context, in UserInput, admin bool) (models.User, error) {
	if err := check(in); err != nil {
		return models.User{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{
		Name:         in.Name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Phone:        in.Phone,
		IsAdmin:      admin,
		Street:       in.Street,
		Apartment:    in.Apartment,
		Zip:          in.Zip,
		City:         in.City,
		Country:      in.Country,
	}
	if err := s.store.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.User{}, invalidField("email", "The email has already been taken.")
		}
		return models.User{}, persistence("create user", err)
	}
	logger.WithCtx(ctx).Info("user created", "user_id", u.ID.Hex(), "admin", admin)
	return u, nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords are both NotFound.
func (s *UserService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if err := check(in); err != nil {
		return LoginResult{}, err
	}
	u, err := s.store.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return LoginResult{}, notFound("User not found")
		}
		return LoginResult{}, persistence("find user", err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		logger.WithCtx(ctx).Warn("login rejected", "user_id", u.ID.Hex())
		return LoginResult{}, notFound("Invalid Password")
	}

	token, err := auth.GenerateToken(u.ID.Hex(), u.IsAdmin)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Email: u.Email, Token: token}, nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	n, err := s.store.Users.Count(ctx)
	if err != nil {
		return 0, persistence("count users", err)
	}
	return n, nil
}

// Delete removes the user. Their orders are kept.
func (s *UserService) Delete(ctx context.Context, id string) error {
	oid, err := parseID("user", id)
	if err != nil {
		return err
	}
	if err := s.store.Users.Delete(ctx, oid); err != nil {
		return lookup(err, "User")
	}
	logger.WithCtx(ctx).Info("user deleted", "user_id", oid.Hex())
	return nil
}
