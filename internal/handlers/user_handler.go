package handlers

import (
	"errors"
	"net/mail"
	"strconv"

	"github.com/cardpayhq/cardpay-backend/internal/apperr"
	"github.com/cardpayhq/cardpay-backend/internal/dto"
	"github.com/cardpayhq/cardpay-backend/internal/middleware"
	"github.com/cardpayhq/cardpay-backend/internal/models"
	"github.com/cardpayhq/cardpay-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService    *services.UserService
	sessionService *services.SessionService
}

func NewUserHandler(userService *services.UserService, sessionService *services.SessionService) *UserHandler {
	return &UserHandler{userService: userService, sessionService: sessionService}
}

func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	if req.FirstName == "" || req.LastName == "" || req.EmailAddress == "" || req.Password == "" {
		return apperr.Validation("firstName, lastName, emailAddress and password are required")
	}
	if _, err := mail.ParseAddress(req.EmailAddress); err != nil {
		return apperr.Validation("Invalid email")
	}
	if req.Password != req.ConfirmPassword {
		return apperr.Validation("Passwords do not match")
	}

	user, err := h.userService.CreateUser(c.Context(), services.CreateUserParams{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) || errors.Is(err, services.ErrNoCustomerFromProvider) {
			return apperr.Conflict(err.Error())
		}
		return err
	}

	tokens, err := h.issueTokens(c, user)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.Response{
		Status:  true,
		Message: "Account created successfully!",
		Data:    dto.AuthData{Tokens: *tokens},
	})
}

func (h *UserHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if req.EmailAddress == "" || req.Password == "" {
		return apperr.Validation("emailAddress and password are required")
	}

	user, err := h.userService.Authenticate(req.EmailAddress, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return apperr.Conflict(err.Error())
		}
		return err
	}

	tokens, err := h.issueTokens(c, user)
	if err != nil {
		return err
	}

	return c.JSON(dto.Response{
		Status:  true,
		Message: "Logged in successfully!",
		Data:    dto.AuthData{Tokens: *tokens},
	})
}

func (h *UserHandler) Whoami(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	aggregate, err := h.userService.GetUserAggregate(user.ID)
	if err != nil {
		return err
	}

	return c.JSON(dto.Response{
		Status:  true,
		Message: "User retrieved!",
		Data:    aggregate,
	})
}

func (h *UserHandler) ListPayments(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	limit, page, err := paginationParams(c)
	if err != nil {
		return err
	}

	payments, pagination, err := h.userService.ListPayments(user.ID, limit, page)
	if err != nil {
		return err
	}

	return c.JSON(dto.Response{
		Status:     true,
		Message:    "User Payment/s retrieved!",
		Data:       payments,
		Pagination: pagination,
	})
}

func (h *UserHandler) ListCards(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	limit, page, err := paginationParams(c)
	if err != nil {
		return err
	}

	cards, pagination, err := h.userService.ListCards(user.ID, limit, page)
	if err != nil {
		return err
	}

	return c.JSON(dto.Response{
		Status:     true,
		Message:    "User Card/s retrieved!",
		Data:       cards,
		Pagination: pagination,
	})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if req.FirstName == "" || req.LastName == "" || req.EmailAddress == "" {
		return apperr.Validation("firstName, lastName and emailAddress are required")
	}
	if _, err := mail.ParseAddress(req.EmailAddress); err != nil {
		return apperr.Validation("Invalid email")
	}

	user := middleware.CurrentUser(c)

	updated, err := h.userService.UpdateUser(c.Context(), user.ID, services.UpdateUserParams{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return apperr.Conflict(err.Error())
		}
		return err
	}

	return c.JSON(dto.Response{
		Status:  true,
		Message: "User updated!",
		Data:    updated,
	})
}

// Delete soft-deletes the account and closes the session it was called with.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	if err := h.userService.DeleteUser(c.Context(), user.ID); err != nil {
		return err
	}
	if _, err := h.sessionService.DeactivateSession(middleware.CurrentSessionID(c)); err != nil {
		if !errors.Is(err, services.ErrSessionNotFound) {
			return err
		}
	}

	return c.JSON(dto.Response{
		Status:  true,
		Message: "User deleted!",
	})
}

// issueTokens opens a session for the request's origin and signs the token
// pair bound to it.
func (h *UserHandler) issueTokens(c *fiber.Ctx, user *models.User) (*dto.TokenPair, error) {
	var ip, device *string
	if v := c.IP(); v != "" {
		ip = &v
	}
	if v := c.Get(fiber.HeaderUserAgent); v != "" {
		device = &v
	}

	session, err := h.sessionService.NewSession(user.ID, ip, device)
	if err != nil {
		return nil, err
	}

	data := services.SessionData{UserID: user.ID, SessionID: session.ID}

	accessToken, err := h.sessionService.SignToken(data, services.TokenAccess)
	if err != nil {
		return nil, err
	}
	refreshToken, err := h.sessionService.SignToken(data, services.TokenRefresh)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func paginationParams(c *fiber.Ctx) (int, int, error) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, apperr.Validation("Type of limit is not number")
	}
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		return 0, 0, apperr.Validation("Type of page is not number")
	}
	if limit <= 0 || page <= 0 {
		return 0, 0, apperr.Validation("limit and page must be positive")
	}
	return limit, page, nil
}
