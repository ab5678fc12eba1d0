package service

import (
	"context"
	"errors"
	"time"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrTherapistAlreadyExists = errors.New("therapist with this email already exists")
	ErrAuthenticationFailed   = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed          = errors.New("failed to hash password")
	ErrTokenGeneration        = errors.New("failed to generate authentication token")
)

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.Therapist, error)
	Login(ctx context.Context, email, password string) (token string, therapist *domain.Therapist, err error)
}

// --- Service Implementation ---

// authService implements the AuthService interface.
type authService struct {
	therapistRepo repository.TherapistRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(therapistRepo repository.TherapistRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		therapistRepo: therapistRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register handles new therapist registration.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.Therapist, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email, and password cannot be empty")
	}

	_, err := s.therapistRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrTherapistAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	therapist := &domain.Therapist{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleTherapist,
		// ID, CreatedAt, UpdatedAt set by the repository layer
	}

	therapistID, err := s.therapistRepo.Create(ctx, therapist)
	if err != nil {
		return nil, err
	}
	therapist.ID = therapistID

	therapist.PasswordHash = ""
	return therapist, nil
}

// Login handles therapist authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, therapist *domain.Therapist, err error) {
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	therapist, err = s.therapistRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
			return
		}
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(therapist.PasswordHash), []byte(password)); err != nil {
		err = ErrAuthenticationFailed
		therapist = nil
		return
	}

	token, err = s.generateJWT(therapist)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	therapist.PasswordHash = ""
	return token, therapist, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given therapist.
func (s *authService) generateJWT(therapist *domain.Therapist) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: therapist.ID.Hex(),
		Role:   therapist.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   therapist.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "practice-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
