package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/cardpayhq/cardpay-backend/internal/config"
	"github.com/cardpayhq/cardpay-backend/internal/database"
	"github.com/cardpayhq/cardpay-backend/internal/handlers"
	"github.com/cardpayhq/cardpay-backend/internal/provider/providertest"
	"github.com/cardpayhq/cardpay-backend/internal/routes"
	"github.com/cardpayhq/cardpay-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	gateway *providertest.Gateway
	cfg     *config.Config

	users    *services.UserService
	sessions *services.SessionService
	cards    *services.CardService
	payments *services.PaymentService

	seq int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppEnv:          "test",
		JWTSecret:       "test-secret",
		AccessTokenTTL:  5 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}

	gateway := providertest.New()

	sessionService := services.NewSessionService(db, cfg)
	userService := services.NewUserService(db, gateway)
	cardService := services.NewCardService(db, gateway)
	paymentService := services.NewPaymentService(db, gateway)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(cfg),
	})

	routes.Setup(app, routes.Deps{
		UserService:    userService,
		SessionService: sessionService,
		UserHandler:    handlers.NewUserHandler(userService, sessionService),
		SessionHandler: handlers.NewSessionHandler(sessionService),
		CardHandler:    handlers.NewCardHandler(cardService),
		PaymentHandler: handlers.NewPaymentHandler(paymentService),
		HealthHandler:  handlers.NewHealthHandler(db),
	})

	return &testEnv{
		app:      app,
		db:       db,
		gateway:  gateway,
		cfg:      cfg,
		users:    userService,
		sessions: sessionService,
		cards:    cardService,
		payments: paymentService,
	}
}

// request fires a JSON request at the app and decodes the response body into a
// generic map alongside the raw *http.Response.
func (e *testEnv) request(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	decoded := map[string]any{}
	if len(payload) > 0 {
		require.NoError(t, json.Unmarshal(payload, &decoded), "body: %s", payload)
	}
	return resp, decoded
}

func bearer(token string) map[string]string {
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + token}
}

// signup registers a user through the API and returns the token pair.
func (e *testEnv) signup(t *testing.T, email string) (access, refresh string) {
	t.Helper()

	resp, body := e.request(t, http.MethodPost, "/v1/user/signup", map[string]any{
		"firstName":       "Ada",
		"lastName":        "Lovelace",
		"emailAddress":    email,
		"password":        "hunter22",
		"confirmPassword": "hunter22",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tokens := body["data"].(map[string]any)["tokens"].(map[string]any)
	return tokens["access_token"].(string), tokens["refresh_token"].(string)
}

// addCard registers a card for the authenticated user and returns its id.
func (e *testEnv) addCard(t *testing.T, access string) uint {
	t.Helper()

	e.seq++
	resp, body := e.request(t, http.MethodPost, "/v1/card/", map[string]any{
		"cardToken":         "cnon:tok",
		"verificationToken": fmt.Sprintf("verif-%d", e.seq),
		"cardholderName":    "Ada Lovelace",
	}, bearer(access))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return uint(body["data"].(map[string]any)["id"].(float64))
}

// initPayment creates an initiated payment and returns its id and reference.
func (e *testEnv) initPayment(t *testing.T, access string, cardID uint, amount string) (uint, string) {
	t.Helper()

	resp, body := e.request(t, http.MethodPost, "/v1/payment/init", map[string]any{
		"cardId":   cardID,
		"amount":   amount,
		"currency": "USD",
	}, bearer(access))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := body["data"].(map[string]any)
	return uint(data["id"].(float64)), data["reference"].(string)
}

func errorBody(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	require.Equal(t, false, body["status"])
	return body["error"].(map[string]any)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodGet, "/v1/healthz", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "ok", body["db"])
}
