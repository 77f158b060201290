package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/techversity/crm-api/internal/dto"
	"github.com/techversity/crm-api/internal/mailer"
	"github.com/techversity/crm-api/internal/models"
	"github.com/techversity/crm-api/internal/repository"
)

// Sentinel auth errors mapped to 4xx responses by the handler.
var (
	ErrEmailNotRegistered = errors.New("email not registered")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password must be at least 8 chars and contain 1 number, 1 special character, 1 uppercase and 1 lowercase letter")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongOTP           = errors.New("wrong otp")
	ErrOTPExpired         = errors.New("otp is expired")
	ErrOTPNotVerified     = errors.New("otp not verified")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	tokenLifetime = 6 * time.Hour
	otpLifetime   = 5 * time.Minute
	otpDigits     = 4
)

// AuthService covers staff sign-in, account management and the OTP reset flow.
type AuthService interface {
	SignIn(ctx context.Context, payload dto.SignInRequest) (dto.SignInResponse, error)
	AddUser(ctx context.Context, payload dto.UserCreateRequest) (dto.MemberResponse, error)
	Members(ctx context.Context) ([]dto.MemberResponse, error)
	DeleteUser(ctx context.Context, id uint) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, payload dto.VerifyOTPRequest) error
	ResetPassword(ctx context.Context, payload dto.ResetPasswordRequest) error
}

type authService struct {
	users     repository.UserRepository
	mail      mailer.Mailer
	validator *validator.Validate
	jwtSecret string
	logger    zerolog.Logger
	now       func() time.Time
	otpSource *rand.Rand
}

// NewAuthService builds the staff authentication service.
func NewAuthService(users repository.UserRepository, mail mailer.Mailer, validate *validator.Validate, jwtSecret string, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		mail:      mail,
		validator: validate,
		jwtSecret: jwtSecret,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
		otpSource: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *authService) SignIn(ctx context.Context, payload dto.SignInRequest) (dto.SignInResponse, error) {
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	payload.Password = strings.TrimSpace(payload.Password)

	if err := s.validator.Struct(payload); err != nil {
		return dto.SignInResponse{}, err
	}
	if !validPassword(payload.Password) {
		return dto.SignInResponse{}, ErrWeakPassword
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SignInResponse{}, ErrEmailNotRegistered
		}
		return dto.SignInResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil {
		return dto.SignInResponse{}, ErrInvalidPassword
	}

	token, err := s.generateToken(user)
	if err != nil {
		return dto.SignInResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user signed in")

	return dto.SignInResponse{AccessToken: token, Role: user.Role, Name: user.Name}, nil
}

func (s *authService) AddUser(ctx context.Context, payload dto.UserCreateRequest) (dto.MemberResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MemberResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.MemberResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.MemberResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.MemberResponse{}, err
	}

	user := models.User{
		Name:     strings.TrimSpace(payload.Name),
		Email:    email,
		Password: string(hashed),
		Role:     strings.ToLower(strings.TrimSpace(payload.Role)),
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.MemberResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("staff member added")

	return dto.NewMemberResponse(user), nil
}

func (s *authService) Members(ctx context.Context) ([]dto.MemberResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewMemberResponseSlice(users), nil
}

func (s *authService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", id).Msg("staff member deleted")
	return nil
}

// ForgotPassword issues a short-lived one-time code and emails it to the
// account owner. The code is stored bcrypt-hashed.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return ErrEmailNotRegistered
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmailNotRegistered
		}
		return err
	}

	otp := s.generateOTP()
	hashed, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	expiry := s.now().Add(otpLifetime)
	user.OTP = string(hashed)
	user.OTPExpiresAt = &expiry
	user.OTPVerified = false
	if err := s.users.Update(ctx, &user); err != nil {
		return err
	}

	if err := s.mail.Send(user.Email, "Forgot Password Request - Your OTP Code", mailer.OTPBody(user.Name, otp)); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password reset otp issued")
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, payload dto.VerifyOTPRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmailNotRegistered
		}
		return err
	}

	if user.OTP == "" || bcrypt.CompareHashAndPassword([]byte(user.OTP), []byte(payload.OTP)) != nil {
		return ErrWrongOTP
	}

	if user.OTPExpiresAt == nil || s.now().After(*user.OTPExpiresAt) {
		return ErrOTPExpired
	}

	user.OTPVerified = true
	return s.users.Update(ctx, &user)
}

func (s *authService) ResetPassword(ctx context.Context, payload dto.ResetPasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	if !validPassword(payload.Password) {
		return ErrWeakPassword
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmailNotRegistered
		}
		return err
	}

	if !user.OTPVerified {
		return ErrOTPNotVerified
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashed)
	user.OTP = ""
	user.OTPExpiresAt = nil
	user.OTPVerified = false
	if err := s.users.Update(ctx, &user); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password reset completed")
	return nil
}

func (s *authService) generateToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":   user.ID,
		"role": user.Role,
		"exp":  s.now().Add(tokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) generateOTP() string {
	otp := ""
	for i := 0; i < otpDigits; i++ {
		otp += fmt.Sprintf("%d", s.otpSource.Intn(10))
	}
	return otp
}

// validPassword enforces the password policy: at least 8 characters with one
// lowercase, one uppercase, one digit and one special character.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune("@$!%*?&", r):
			hasSpecial = true
		}
	}

	return hasLower && hasUpper && hasDigit && hasSpecial
}
