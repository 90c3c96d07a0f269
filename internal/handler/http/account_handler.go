package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/mahdiimanzadeh/storetrack/internal/store"
	"github.com/mahdiimanzadeh/storetrack/internal/user"
)

type RegisterRequest struct {
	FirstName   string `json:"firstName" validate:"required,min=2"`
	LastName    string `json:"lastName" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	PhoneNumber string `json:"phoneNumber"`
	ImageURL    string `json:"imageUrl"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
}

type CreateStoreRequest struct {
	OwnerID  *uuid.UUID `json:"ownerId"`
	Name     string     `json:"name" validate:"required"`
	Category string     `json:"category" validate:"required"`
	Address  string     `json:"address" validate:"required"`
	City     string     `json:"city" validate:"required"`
	Image    string     `json:"image"`
}

type tokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// AuthHandler serves the public registration and login routes.
type AuthHandler struct {
	service  user.Service
	tokens   tokenIssuer
	validate *validator.Validate
}

func NewAuthHandler(service user.Service, tokens tokenIssuer) *AuthHandler {
	return &AuthHandler{
		service:  service,
		tokens:   tokens,
		validate: newValidator(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
}

// RegisterProfileRoutes mounts the routes that need an authenticated caller.
func (h *AuthHandler) RegisterProfileRoutes(router chi.Router) {
	router.Get("/auth/me", h.handleMe)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	callerID, err := checkOwner(r, nil)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to load profile")
		return
	}

	u, err := h.service.GetUserByID(r.Context(), callerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to load profile")
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	created, err := h.service.Register(r.Context(), &user.User{
		FirstName:   requestPayload.FirstName,
		LastName:    requestPayload.LastName,
		Email:       requestPayload.Email,
		PhoneNumber: requestPayload.PhoneNumber,
		ImageURL:    requestPayload.ImageURL,
	}, requestPayload.Password)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to register user")
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	authenticated, err := h.service.Authenticate(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to log in")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, authenticated)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, code int, u *user.User) {
	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to issue token")
		return
	}

	respondWithJSON(w, code, AuthResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Token:     token,
	})
}

type StoreHandler struct {
	service  store.Service
	validate *validator.Validate
}

func NewStoreHandler(service store.Service) *StoreHandler {
	return &StoreHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *StoreHandler) RegisterRoutes(router chi.Router) {
	router.Post("/store", h.handleCreateStore)
	router.Get("/store/{ownerId}", h.handleListStores)
}

func (h *StoreHandler) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateStoreRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	ownerID, err := checkOwner(r, requestPayload.OwnerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to create store")
		return
	}

	created, err := h.service.Create(r.Context(), ownerID, store.Store{
		Name:     requestPayload.Name,
		Category: requestPayload.Category,
		Address:  requestPayload.Address,
		City:     requestPayload.City,
		Image:    requestPayload.Image,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to create store")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *StoreHandler) handleListStores(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromPath(r)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list stores")
		return
	}

	stores, err := h.service.ListByUser(r.Context(), ownerID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to list stores")
		return
	}

	respondWithJSON(w, http.StatusOK, stores)
}
