package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/accounts/api/http/presenter"
	"github.com/artem13815/accounts/pkg/account"
)

type UsersHandler struct {
	useCase account.UseCase
}

func NewUsersHandler(useCase account.UseCase) *UsersHandler {
	return &UsersHandler{useCase: useCase}
}

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message         string `json:"message"`
	Username        string `json:"username"`
	AccessToken     string `json:"access_token"`
	AccessTokenType string `json:"access_token_type"`
}

// userResponse is the public projection of a user: never the digest.
type userResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register handles user registration.
// @Summary Register user
// @Tags    users
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} handlers.userResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 422 {object} presenter.ErrorResponse
// @Router  /users/register [post]
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusUnprocessableEntity, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusUnprocessableEntity, "username, email and password are required")
	}

	user, err := h.useCase.Register(c.Context(), account.RegisterInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, account.ErrUsernameTaken) {
			return presenter.Error(c, http.StatusBadRequest, "Username already exists")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to register user")
	}

	return presenter.JSON(c, http.StatusCreated, userResponse{Username: user.Username, Email: user.Email})
}

// Login handles user login and issues an access token.
// @Summary Login
// @Tags    users
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} handlers.loginResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 422 {object} presenter.ErrorResponse
// @Router  /users/login [post]
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusUnprocessableEntity, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusUnprocessableEntity, "username and password are required")
	}

	result, err := h.useCase.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			return presenter.Error(c, http.StatusUnauthorized, "Invalid username or password")
		}
		return presenter.Error(c, http.StatusInternalServerError, "failed to login")
	}

	return presenter.JSON(c, http.StatusOK, loginResponse{
		Message:         "Login successful",
		Username:        result.User.Username,
		AccessToken:     result.AccessToken,
		AccessTokenType: "bearer",
	})
}

// ListAll returns the public view of every user. Protected: the auth
// middleware has already resolved the caller before this runs.
// @Summary List all users
// @Tags    users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} handlers.userResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /users/all [get]
func (h *UsersHandler) ListAll(c *fiber.Ctx) error {
	users, err := h.useCase.List(c.Context())
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list users")
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{Username: u.Username, Email: u.Email})
	}
	return presenter.JSON(c, http.StatusOK, out)
}
