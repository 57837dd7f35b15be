package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/aussiebroadwan/stackplate/internal/server/domain"
	"github.com/aussiebroadwan/stackplate/internal/server/mail"
	"github.com/aussiebroadwan/stackplate/internal/server/resetkeys"
	"github.com/aussiebroadwan/stackplate/internal/server/store"
	"github.com/aussiebroadwan/stackplate/pkg/cryptox"
	"github.com/aussiebroadwan/stackplate/pkg/slogx"
)

type AuthService struct {
	Store     store.Store
	Tokens    *TokenService
	Hasher    *cryptox.PasswordHasher
	ResetKeys resetkeys.Store
	Mailer    mail.Mailer

	// ResetWindow is how long a reset key is redeemable, zero means
	// domain.DefaultResetWindow.
	ResetWindow time.Duration

	// PublicURL is the base the reset link is built on.
	PublicURL string
	Company   string

	// AdminEmails are granted is_admin when they register.
	AdminEmails []string

	Now     func() time.Time
	NewUUID func() string
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) newUUID() string {
	if s.NewUUID != nil {
		return s.NewUUID()
	}
	return uuid.NewString()
}

func (s *AuthService) resetWindow() time.Duration {
	if s.ResetWindow > 0 {
		return s.ResetWindow
	}
	return domain.DefaultResetWindow
}

// NormalizeEmail lowercases and trims an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if err := validation.Validate(email, is.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func (in RegisterInput) validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required),
		validation.Field(&in.Password, validation.Required),
		validation.Field(&in.Email, validation.Required),
	)
	if err != nil {
		return ErrMissingFields
	}
	// Logins containing @ are looked up by email only.
	if strings.Contains(in.Username, "@") {
		return ErrInvalidUsername
	}
	return validateEmail(in.Email)
}

func (s *AuthService) isAdminEmail(email string) bool {
	for _, e := range s.AdminEmails {
		if NormalizeEmail(e) == email {
			return true
		}
	}
	return false
}

// Register creates the account and returns it with a fresh session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
	if err := in.validate(); err != nil {
		return domain.User{}, "", err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, "", err
	}

	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		UUID:         s.newUUID(),
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		IsAdmin:      s.isAdminEmail(in.Email),
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, "", ErrUserAlreadyExists
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	token, err := s.Tokens.NewSession(user.UUID)
	if err != nil {
		log.Error("failed to sign session token", slog.String("user_uuid", user.UUID))
		return domain.User{}, "", err
	}

	log.Info("user registered",
		slog.String("user_uuid", user.UUID),
		slog.Bool("is_admin", user.IsAdmin),
	)
	return user, token, nil
}

// Login accepts a username or an email address as login. A login with an @
// is an email, anything else is matched exactly against usernames.
func (s *AuthService) Login(ctx context.Context, login, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return domain.User{}, "", ErrWrongCredentials
	}
	var (
		user domain.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(login))
	} else {
		user, err = s.Store.Users().GetUserByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, "", ErrUserDoesNotExist
		}
		log.Error("failed to look up user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("stored password hash is unusable",
				slog.String("user_uuid", user.UUID),
				slog.Any("error", err),
			)
		}
		return domain.User{}, "", ErrWrongCredentials
	}

	token, err := s.Tokens.NewSession(user.UUID)
	if err != nil {
		log.Error("failed to sign session token", slog.String("user_uuid", user.UUID))
		return domain.User{}, "", err
	}
	return user, token, nil
}

// RequestAccess exchanges a verified session for an access token. The
// privilege flag is read from the store again so a revoked admin loses it
// on the next exchange.
func (s *AuthService) RequestAccess(ctx context.Context, userUUID string) (string, error) {
	user, err := s.Store.Users().GetUserByUUID(ctx, userUUID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrAccessDenied
		}
		slogx.FromContext(ctx).Error("failed to look up user", slog.Any("error", err))
		return "", ErrTokenCreation
	}
	return s.Tokens.NewAccess(user)
}

// RequestReset issues a reset key for email and mails the link. When the
// mail can't be sent the key stays stored and the caller gets the error.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)
	if email == "" {
		return ErrMissingFields
	}
	if err := validateEmail(email); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserDoesNotExist
		}
		log.Error("failed to look up user", slog.Any("error", err))
		return err
	}

	key, err := cryptox.GenerateResetKey()
	if err != nil {
		log.Error("failed to generate reset key", slog.Any("error", err))
		return err
	}

	rec := domain.ResetRecord{Email: user.Email, IssuedAt: s.now()}
	if err := s.ResetKeys.Put(ctx, key, rec); err != nil {
		log.Error("failed to store reset key", slog.Any("error", err))
		return err
	}

	err = s.Mailer.SendReset(ctx, mail.ResetMessage{
		To:       user.Email,
		Username: user.Username,
		Company:  s.Company,
		Link:     ResetLink(s.PublicURL, user.Email, key),
		Valid:    s.resetWindow(),
	})
	if err != nil {
		log.Error("failed to send reset mail",
			slog.String("user_uuid", user.UUID),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("reset mail sent", slog.String("user_uuid", user.UUID))
	return nil
}

// ResetPassword redeems key for email. The key is deleted before the new
// hash is written, so of two concurrent redemptions only one gets through.
func (s *AuthService) ResetPassword(ctx context.Context, key, email, password string) error {
	log := slogx.FromContext(ctx)

	email = NormalizeEmail(email)
	if key == "" || email == "" || password == "" {
		return ErrMissingFields
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserDoesNotExist
		}
		log.Error("failed to look up user", slog.Any("error", err))
		return err
	}

	rec, err := s.ResetKeys.Get(ctx, key)
	if err != nil {
		if errors.Is(err, resetkeys.ErrNotFound) {
			return ErrResetLinkInvalid
		}
		log.Error("failed to load reset key", slog.Any("error", err))
		return err
	}
	if rec.Email != email || rec.Expired(s.now(), s.resetWindow()) {
		return ErrResetLinkInvalid
	}

	if err := s.ResetKeys.Delete(ctx, key); err != nil {
		if errors.Is(err, resetkeys.ErrNotFound) {
			return ErrResetLinkInvalid
		}
		log.Error("failed to claim reset key", slog.Any("error", err))
		return err
	}

	hash, err := s.Hasher.Hash(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, user.UUID, hash)
	}
	if err != nil {
		log.Error("failed to update password",
			slog.String("user_uuid", user.UUID),
			slog.Any("error", err),
		)
		if perr := s.ResetKeys.Put(ctx, key, rec); perr != nil {
			log.Error("failed to restore reset key", slog.Any("error", perr))
		}
		return err
	}

	log.Info("password reset", slog.String("user_uuid", user.UUID))
	return nil
}

// ResetLink builds {base}/reset?email=..&key=..
func ResetLink(base, email, key string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("key", key)
	return strings.TrimRight(base, "/") + "/reset?" + q.Encode()
}
