package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/internal/identity"
	"github.com/hunter4ass/OWLD/internal/repository"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"github.com/hunter4ass/OWLD/pkg/utils"
	"github.com/hunter4ass/OWLD/pkg/validate"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Tokens struct {
	Access  string `json:"accessToken"`
	Refresh string `json:"refreshToken"`
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, *Tokens, error)
	Login(ctx context.Context, email, password string) (*domain.User, *Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	GetMe(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input *domain.UpdateProfileInput) (*domain.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	identity identity.Client
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewAuthService(userRepo repository.UserRepository, identityClient identity.Client, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		identity: identityClient,
		logger:   logger,
		tracer:   otel.Tracer("service/auth"),
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.User, *Tokens, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", email),
	)

	if err := validate.Name(name); err != nil {
		return nil, nil, err
	}
	if err := validate.Password(password); err != nil {
		return nil, nil, err
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error hashing password",
			zap.Error(err),
		)

		return nil, nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPass),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, nil, ErrEmailTaken
		}

		logging.Error(
			ctx,
			s.logger,
			"Failed to create user",
			zap.Error(err),
		)

		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Remote profile creation is best effort, the local record stays
	// authoritative when the document store is offline.
	if err := s.identity.Create(ctx, user.ID, user.Name, user.Email); err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Remote profile creation failed, continuing with local record",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}

	logging.Info(
		ctx,
		s.logger,
		"User registered",
		zap.String("user_id", user.ID),
	)

	return user, tokens, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *Tokens, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}

		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	_, span := s.tracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	claims, err := utils.ValidateToken(refreshToken, true)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(claims.UserID)
}

// GetMe returns the profile, preferring the remote document store when it
// answers and degrading to the locally persisted record otherwise.
func (s *authService) GetMe(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.GetMe")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
	)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	lookup := s.identity.Get(ctx, userID)
	switch lookup.Status {
	case identity.LookupFound:
		user.Name = lookup.Profile.Name
		user.Email = lookup.Profile.Email
	case identity.LookupUnreachable:
		logging.Debug(
			ctx,
			s.logger,
			"Identity store unreachable, serving local profile",
			zap.String("user_id", userID),
		)
	}

	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, input *domain.UpdateProfileInput) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.UpdateProfile")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
	)

	if input.Name != nil {
		if err := validate.Name(*input.Name); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	if err := s.identity.Update(ctx, userID, identity.ProfileUpdate{
		Name:  input.Name,
		Email: input.Email,
	}); err != nil {
		logging.Warn(
			ctx,
			s.logger,
			"Remote profile update failed, local record updated",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	return user, nil
}

func (s *authService) issueTokens(userID string) (*Tokens, error) {
	access, refresh, err := utils.GenerateTokens(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &Tokens{Access: access, Refresh: refresh}, nil
}
