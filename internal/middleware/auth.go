package middleware

import (
	"errors"
	"strings"

	"github.com/cardpayhq/cardpay-backend/internal/dto"
	"github.com/cardpayhq/cardpay-backend/internal/models"
	"github.com/cardpayhq/cardpay-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	localsUser      = "user"
	localsSessionID = "session_id"

	// RefreshHeader is the side channel for the refresh token;
	// ReissuedTokenHeader carries a freshly issued access token back.
	RefreshHeader       = "x-refresh"
	ReissuedTokenHeader = "x-access-token"
)

// Deserialize resolves the bearer token to an identity and attaches it to the
// request. It never rejects: a missing, invalid or unrecoverable token leaves
// the request anonymous for Authorized to deal with. An expired access token
// paired with a refresh token bound to a still-active session yields a fresh
// access token via the response header.
func Deserialize(users *services.UserService, sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if accessToken == "" {
			return c.Next()
		}

		result := sessions.VerifyToken(accessToken)
		if result.Valid {
			if err := resolveIdentity(c, users, result.Claims.Data); err != nil {
				return err
			}
			return c.Next()
		}

		refreshToken := c.Get(RefreshHeader)
		if result.Expired && refreshToken != "" {
			newAccessToken, err := sessions.ReissueAccessToken(refreshToken)
			if err != nil {
				return err
			}
			if newAccessToken != "" {
				c.Set(ReissuedTokenHeader, newAccessToken)

				reissued := sessions.VerifyToken(newAccessToken)
				if reissued.Valid {
					if err := resolveIdentity(c, users, reissued.Claims.Data); err != nil {
						return err
					}
				}
			}
		}

		return c.Next()
	}
}

// Authorized rejects requests that Deserialize left anonymous.
func Authorized() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Status: false,
				Error: dto.ErrorBody{
					Type:    "client error",
					Message: "Forbidden",
				},
			})
		}
		return c.Next()
	}
}

func resolveIdentity(c *fiber.Ctx, users *services.UserService, data services.SessionData) error {
	user, err := users.GetUserWithCards(data.UserID)
	if errors.Is(err, services.ErrUserNotFound) {
		// A token referencing a vanished user is treated as anonymous.
		return nil
	}
	if err != nil {
		return err
	}

	c.Locals(localsUser, user)
	c.Locals(localsSessionID, data.SessionID)
	return nil
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(localsUser).(*models.User); ok {
		return user
	}
	return nil
}

func CurrentSessionID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(localsSessionID).(uint); ok {
		return id
	}
	return 0
}
