// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/stockroom/internal/platform/middleware"
	requestutil "github.com/taibuivan/stockroom/internal/platform/request"
	"github.com/taibuivan/stockroom/internal/platform/respond"
	"github.com/taibuivan/stockroom/internal/platform/validate"
)

// Handler implements the /auth HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] with the authentication routes.
//
// # Endpoints
//   - POST /register : Creates an account.
//   - POST /login    : Exchanges credentials for an access token.
//   - GET  /profile  : Returns the caller's identity (token required).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.With(middleware.RequireAuth).Get("/profile", handler.profile)

	return router
}

// credentialsRequest is the payload of both register and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// register handles POST /auth/register.
//
// # Returns
//   - 201 with {id, username}.
//   - 400 on malformed JSON or invalid fields.
//   - 409 when the username is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authService.Register(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, identity)
}

// login handles POST /auth/login.
//
// # Returns
//   - 201 with {access_token}.
//   - 400 when a field is missing.
//   - 401 with "Invalid credentials" on any mismatch.
//   - 429 while the username is locked out.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, input.Username).
		Custom(FieldPassword, input.Password == "", "This field is required")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.Authenticate(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, token)
}

// profile handles GET /auth/profile.
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authService.Profile(request.Context(), claims.UserID())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity)
}
