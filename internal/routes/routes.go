package routes

import (
	"time"

	"github.com/cardpayhq/cardpay-backend/internal/handlers"
	"github.com/cardpayhq/cardpay-backend/internal/middleware"
	"github.com/cardpayhq/cardpay-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Deps struct {
	UserService    *services.UserService
	SessionService *services.SessionService

	UserHandler    *handlers.UserHandler
	SessionHandler *handlers.SessionHandler
	CardHandler    *handlers.CardHandler
	PaymentHandler *handlers.PaymentHandler
	HealthHandler  *handlers.HealthHandler
}

func Setup(app *fiber.App, deps Deps) {
	v1 := app.Group("/v1")

	// General API rate limiter: 60 req/min per IP
	v1.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	v1.Get("/healthz", deps.HealthHandler.Check)

	// Identity resolution runs on every request; routes that need it gate on
	// middleware.Authorized below.
	v1.Use(middleware.Deserialize(deps.UserService, deps.SessionService))

	user := v1.Group("/user")

	// Stricter limit on credential endpoints: 10 req/min per IP
	authLimiter := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	user.Post("/signup", authLimiter, deps.UserHandler.Signup)
	user.Post("/signin", authLimiter, deps.UserHandler.Signin)

	user.Get("/whoami", middleware.Authorized(), deps.UserHandler.Whoami)
	user.Put("/", middleware.Authorized(), deps.UserHandler.Update)
	user.Delete("/", middleware.Authorized(), deps.UserHandler.Delete)
	user.Get("/payments", middleware.Authorized(), deps.UserHandler.ListPayments)
	user.Get("/cards", middleware.Authorized(), deps.UserHandler.ListCards)

	session := v1.Group("/session", middleware.Authorized())
	session.Get("/", deps.SessionHandler.GetCurrent)
	session.Delete("/", deps.SessionHandler.Logout)

	card := v1.Group("/card", middleware.Authorized())
	card.Post("/", deps.CardHandler.Add)
	card.Get("/:cardId", deps.CardHandler.Get)
	card.Delete("/:cardId", deps.CardHandler.Disable)

	payment := v1.Group("/payment", middleware.Authorized())
	payment.Post("/init", deps.PaymentHandler.Init)
	payment.Post("/debit/:reference", deps.PaymentHandler.Debit)
	payment.Get("/:paymentId", deps.PaymentHandler.Get)
	payment.Delete("/cancel/:paymentId", deps.PaymentHandler.Cancel)
}
