package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"referral-backend/internal/auth"
	"referral-backend/internal/database"
	"referral-backend/pkg/api"
)

type AuthService struct {
	db       *gorm.DB
	sessions *auth.Sessions
}

func NewAuthService(db *gorm.DB, sessions *auth.Sessions) *AuthService {
	return &AuthService{db: db, sessions: sessions}
}

// AddRoutes registers the unauthenticated boundary: register and login.
func (s *AuthService) AddRoutes(r chi.Router) {
	r.Post("/register", RestHandler(s.Register))
	r.Post("/login", RestHandler(s.Login))
}

// AddProtectedRoutes registers routes that require a session.
func (s *AuthService) AddProtectedRoutes(r chi.Router) {
	r.Get("/user", RestHandler(s.CurrentUser))
}

func (s *AuthService) Register(r *http.Request) (any, error) {
	req, err := ParseRequest[api.RegisterRequest](r)
	if err != nil {
		return nil, err
	}
	if req.Username == "" || req.Password == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "username and password are required")
	}

	var existing database.User
	err = s.db.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return nil, CodedErrorf(http.StatusConflict, "username already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := database.User{
		Username: req.Username,
		Password: hash,
		Name:     req.Name,
		Email:    req.Email,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return s.authResponse(user)
}

func (s *AuthService) Login(r *http.Request) (any, error) {
	req, err := ParseRequest[api.LoginRequest](r)
	if err != nil {
		return nil, err
	}

	var user database.User
	err = s.db.Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(user.Password, req.Password)) {
		return nil, CodedErrorf(http.StatusUnauthorized, "invalid username or password")
	}
	if err != nil {
		return nil, err
	}

	return s.authResponse(user)
}

func (s *AuthService) CurrentUser(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}

	var user database.User
	if err := s.db.First(&user, "id = ?", userId).Error; err != nil {
		return nil, err
	}
	return toUser(user), nil
}

func (s *AuthService) authResponse(user database.User) (any, error) {
	token, err := s.sessions.NewToken(user.Id)
	if err != nil {
		return nil, err
	}
	return api.AuthResponse{Token: token, User: toUser(user)}, nil
}

func toUser(user database.User) api.User {
	return api.User{Id: user.Id, Username: user.Username, Name: user.Name, Email: user.Email}
}
