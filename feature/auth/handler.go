package auth

import (
	"errors"

	"profile-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for authentication.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the auth routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/signup", h.HandleSignup)
	app.Post("/login", h.HandleLogin)
	app.Post("/validate", h.HandleValidate)
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type validateRequest struct {
	Token string `json:"token"`
}

// HandleSignup registers a new identity.
// @Summary Sign Up
// @Description Register a new user under a unique username and return a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.signupRequest true "Signup request"
// @Success 200 {object} map[string]string "token and subjectId"
// @Failure 400 {object} map[string]string "Malformed request"
// @Failure 401 {object} map[string]string "Username already exists"
// @Failure 500 {object} map[string]string "Credential or profile write failure"
// @Router /signup [post]
func (h *Handler) HandleSignup(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req signupRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username, email and password are required",
		})
	}

	token, subjectID, err := h.service.Register(c.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, ErrUsernameTaken) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Username already exists",
		})
	}
	if err != nil {
		l.Error("Signup failed", zap.String("username", req.Username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "signup failed",
		})
	}

	return c.JSON(fiber.Map{"token": token, "subjectId": subjectID})
}

// HandleLogin authenticates a returning user by username or email.
// @Summary Log In
// @Description Authenticate by username or email and return a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.loginRequest true "Login request"
// @Success 200 {object} map[string]string "token and username"
// @Failure 400 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Internal error"
// @Router /login [post]
func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req loginRequest
	if err := c.BodyParser(&req); err != nil || req.Identifier == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "identifier and password are required",
		})
	}

	token, username, err := h.service.Login(c.Context(), req.Identifier, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid credentials",
		})
	}
	if err != nil {
		l.Error("Login failed", zap.String("identifier", req.Identifier), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "login failed",
		})
	}

	return c.JSON(fiber.Map{"token": token, "username": username})
}

// HandleValidate checks a session token.
// @Summary Validate Token
// @Description Verify a session token's signature and expiry.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.validateRequest true "Validate request"
// @Success 200 {object} map[string]interface{} "valid and username"
// @Failure 400 {object} map[string]interface{} "No token provided"
// @Failure 401 {object} map[string]interface{} "Invalid token"
// @Router /validate [post]
func (h *Handler) HandleValidate(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"valid": false,
			"error": "No token provided",
		})
	}

	claims, err := h.service.Validate(req.Token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"valid": false,
			"error": "invalid token",
		})
	}

	return c.JSON(fiber.Map{"valid": true, "username": claims.Username})
}
