package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/smartshuttle/shuttle/internal/storage"
	"go.uber.org/zap"
)

// MinPasswordLength is the shortest password Register accepts, counted in
// characters.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is the raw sign-up form.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the raw sign-in form.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the result of a successful sign-up or sign-in.
type Session struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

// Service registers and authenticates users.
type Service struct {
	users  storage.UserStore
	tokens *TokenIssuer
	logger *zap.Logger
	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewService creates the service.
func NewService(users storage.UserStore, tokens *TokenIssuer, logger *zap.Logger) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dummy, err := HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}
	return &Service{users: users, tokens: tokens, logger: logger, dummyHash: dummy}, nil
}

// Tokens returns the issuer used to sign sessions.
func (s *Service) Tokens() *TokenIssuer { return s.tokens }

// Register validates in, creates a passenger account and signs a token.
// A duplicate email surfaces as storage.ErrEmailTaken, relying only on
// the store's uniqueness guarantee.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	fe := FieldErrors{}
	if name == "" {
		fe["name"] = MessageNameRequired
	}
	switch {
	case email == "":
		fe["email"] = MessageEmailRequired
	case !emailPattern.MatchString(email):
		fe["email"] = MessageEmailInvalid
	}
	switch {
	case in.Password == "":
		fe["password"] = MessagePasswordRequired
	case utf8.RuneCountInString(in.Password) < MinPasswordLength:
		fe["password"] = MessagePasswordTooShort
	}
	if len(fe) > 0 {
		return Session{}, fe
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}
	u := storage.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         storage.RolePassenger,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", zap.String("user", u.ID))
	return s.issue(AuthUser{UserID: u.ID, Name: u.Name, Role: u.Role})
}

// Login checks the credentials and signs a token.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := strings.TrimSpace(in.Email)

	fe := FieldErrors{}
	if email == "" {
		fe["email"] = MessageEmailRequired
	}
	if in.Password == "" {
		fe["password"] = MessagePasswordRequired
	}
	if len(fe) > 0 {
		return Session{}, fe
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			VerifyPassword(in.Password, s.dummyHash)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !VerifyPassword(in.Password, u.PasswordHash) {
		s.logger.Debug("password mismatch", zap.String("user", u.ID))
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(AuthUser{UserID: u.ID, Name: u.Name, Role: u.Role})
}

func (s *Service) issue(u AuthUser) (Session, error) {
	token, err := s.tokens.CreateToken(u)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{User: u, Token: token, ExpiresIn: int64(s.tokens.TTL().Seconds())}, nil
}
