package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/Domenick1991/oceanview/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength    = 8
	defaultResetTokenTTL = 2 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrResetTokenExpired  = errors.New("reset token is invalid or expired")
)

type UsersUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, input ProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) error
}

type TokenIssuer interface {
	Issue(userID int64, username string) (string, error)
}

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// ProfileInput holds the editable profile fields. Nil fields stay unchanged.
type ProfileInput struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zip_code"`
	Country   *string `json:"country"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type UsersService struct {
	repo       repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
	resetTTL   time.Duration
	log        *logger.Logger
	now        func() time.Time
}

type UsersServiceOption func(*UsersService)

func WithBcryptCost(cost int) UsersServiceOption {
	return func(s *UsersService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func WithResetTokenTTL(ttl time.Duration) UsersServiceOption {
	return func(s *UsersService) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

func WithLogger(log *logger.Logger) UsersServiceOption {
	return func(s *UsersService) {
		s.log = log
	}
}

func WithClock(now func() time.Time) UsersServiceOption {
	return func(s *UsersService) {
		s.now = now
	}
}

func NewUsersService(repo repository.UserRepository, tokens TokenIssuer, opts ...UsersServiceOption) *UsersService {
	service := &UsersService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		resetTTL:   defaultResetTokenTTL,
		log:        logger.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *UsersService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrValidation, input.Email)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	created, err := s.repo.CreateUser(ctx, &domain.User{
		Username:  strings.TrimSpace(input.Username),
		Email:     strings.TrimSpace(input.Email),
		Password:  string(hash),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", input.Username, err)
	}
	s.log.LogSecurity("REGISTER", fmt.Sprintf("user %d registered as %s", created.ID, created.Username))
	return created, nil
}

// Login never reveals whether the username or the password was wrong.
func (s *UsersService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.LogSecurity("LOGIN_FAILED", "unknown user "+username)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.log.LogSecurity("LOGIN_FAILED", "wrong password for "+username)
		return nil, ErrInvalidCredentials
	}

	updated, err := s.repo.UpdateUser(ctx, user.ID, func(u *domain.User) error {
		now := s.now()
		u.LastLogin = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(updated.ID, updated.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: updated}, nil
}

func (s *UsersService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *UsersService) UpdateProfile(ctx context.Context, id int64, input ProfileInput) (*domain.User, error) {
	if input.Email != nil {
		if _, err := mail.ParseAddress(*input.Email); err != nil {
			return nil, fmt.Errorf("%w: invalid email %q", domain.ErrValidation, *input.Email)
		}
	}

	updated, err := s.repo.UpdateUser(ctx, id, func(u *domain.User) error {
		set(&u.Email, input.Email)
		set(&u.FirstName, input.FirstName)
		set(&u.LastName, input.LastName)
		set(&u.Phone, input.Phone)
		set(&u.Address, input.Address)
		set(&u.City, input.City)
		set(&u.State, input.State)
		set(&u.ZipCode, input.ZipCode)
		set(&u.Country, input.Country)
		u.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update profile %d: %w", id, err)
	}
	return updated, nil
}

func (s *UsersService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	if len(next) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.repo.UpdateUser(ctx, id, func(u *domain.User) error {
		u.Password = string(hash)
		u.UpdatedAt = s.now()
		return nil
	})
	if err == nil {
		s.log.LogSecurity("PASSWORD_CHANGED", fmt.Sprintf("user %d", id))
	}
	return err
}

// RequestPasswordReset stores a fresh reset token and returns it. An unknown
// email yields an empty token and no error.
func (s *UsersService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	token := uuid.NewString()
	expiry := s.now().Add(s.resetTTL)
	_, err = s.repo.UpdateUser(ctx, user.ID, func(u *domain.User) error {
		u.ResetToken = token
		u.ResetTokenExpiry = &expiry
		return nil
	})
	if err != nil {
		return "", err
	}
	s.log.LogSecurity("PASSWORD_RESET_REQUESTED", fmt.Sprintf("user %d", user.ID))
	return token, nil
}

func (s *UsersService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	user, err := s.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrResetTokenExpired
		}
		return err
	}
	if user.ResetTokenExpiry == nil || s.now().After(*user.ResetTokenExpiry) {
		return ErrResetTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.repo.UpdateUser(ctx, user.ID, func(u *domain.User) error {
		u.Password = string(hash)
		u.ResetToken = ""
		u.ResetTokenExpiry = nil
		u.UpdatedAt = s.now()
		return nil
	})
	return err
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

var _ UsersUseCase = (*UsersService)(nil)
