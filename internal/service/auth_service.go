package service

import (
	"context"
	"strings"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenExpiry = 24 * time.Hour

type IAuthService interface {
	Register(ctx context.Context, request *dto.RegisterRequest) (*dto.UserProfileResponse, error)
	Login(ctx context.Context, request *dto.LoginRequest) (*dto.LoginResponse, error)
	Profile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
}

type authService struct {
	uowFactory       unitofwork.RepositoryFactory
	jwtSecret        string
	publisherService IPublisherService
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, jwtSecret string, publisherService IPublisherService) IAuthService {
	return &authService{
		uowFactory:       uowFactory,
		jwtSecret:        jwtSecret,
		publisherService: publisherService,
	}
}

func (as *authService) Register(ctx context.Context, request *dto.RegisterRequest) (*dto.UserProfileResponse, error) {
	username := strings.ToLower(strings.TrimSpace(request.Username))

	uow := as.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().Count(ctx, specification.Filter("username", username))
	if err != nil {
		return nil, apperror.Persistence("failed to check username", err)
	}
	if existing > 0 {
		return nil, apperror.InvalidArgument("username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Persistence("failed to hash password", err)
	}

	user := &entity.User{
		Id:             uuid.New(),
		Username:       username,
		Email:          strings.ToLower(strings.TrimSpace(request.Email)),
		FullName:       request.FullName,
		HashedPassword: string(hash),
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, apperror.Persistence("failed to create user", err)
	}

	return toProfileResponse(user), nil
}

func (as *authService) Login(ctx context.Context, request *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx,
		specification.Filter("username", strings.ToLower(strings.TrimSpace(request.Username))),
	)
	if err != nil {
		return nil, apperror.Persistence("failed to load user", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperror.Unauthenticated("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(request.Password)); err != nil {
		return nil, apperror.Unauthenticated("invalid credentials")
	}

	expiresAt := time.Now().Add(accessTokenExpiry)
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(as.jwtSecret))
	if err != nil {
		return nil, apperror.Persistence("failed to sign token", err)
	}

	if as.publisherService != nil {
		as.publisherService.PublishEvent(ctx, events.New(events.TypeUserLogin, map[string]interface{}{
			"user_id":  user.Id.String(),
			"username": user.Username,
		}))
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		ExpiresAt:   expiresAt,
	}, nil
}

func (as *authService) Profile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Persistence("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	return toProfileResponse(user), nil
}

func toProfileResponse(user *entity.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		Id:        user.Id,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	}
}
