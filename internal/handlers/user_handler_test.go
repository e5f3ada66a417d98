package handlers_test

import (
	"net/http"
	"testing"

	"github.com/cardpayhq/cardpay-backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodPost, "/v1/user/signup", map[string]any{
		"firstName":       "Ada",
		"lastName":        "Lovelace",
		"emailAddress":    "ada@example.com",
		"password":        "hunter22",
		"confirmPassword": "hunter22",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, true, body["status"])
	require.Equal(t, "Account created successfully!", body["message"])

	tokens := body["data"].(map[string]any)["tokens"].(map[string]any)
	require.NotEmpty(t, tokens["access_token"])
	require.NotEmpty(t, tokens["refresh_token"])

	// Signup opens an active session.
	var session models.Session
	require.NoError(t, env.db.First(&session).Error)
	require.True(t, session.IsActive)
}

func TestSignup_Validation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{
			name:    "missing fields",
			body:    map[string]any{"firstName": "Ada"},
			message: "firstName, lastName, emailAddress and password are required",
		},
		{
			name: "bad email",
			body: map[string]any{
				"firstName": "Ada", "lastName": "Lovelace",
				"emailAddress": "not-an-email", "password": "x", "confirmPassword": "x",
			},
			message: "Invalid email",
		},
		{
			name: "password mismatch",
			body: map[string]any{
				"firstName": "Ada", "lastName": "Lovelace",
				"emailAddress": "ada@example.com", "password": "one", "confirmPassword": "two",
			},
			message: "Passwords do not match",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := env.request(t, http.MethodPost, "/v1/user/signup", tc.body, nil)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			errBody := errorBody(t, body)
			require.Equal(t, "client error", errBody["type"])
			require.Equal(t, tc.message, errBody["message"])
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "ada@example.com")

	resp, body := env.request(t, http.MethodPost, "/v1/user/signup", map[string]any{
		"firstName":       "Ada",
		"lastName":        "Lovelace",
		"emailAddress":    "ADA@example.com",
		"password":        "hunter22",
		"confirmPassword": "hunter22",
	}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "user with email address already exist", errorBody(t, body)["message"])
}

func TestSignin(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "ada@example.com")

	resp, body := env.request(t, http.MethodPost, "/v1/user/signin", map[string]any{
		"emailAddress": "ada@example.com",
		"password":     "hunter22",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Logged in successfully!", body["message"])

	tokens := body["data"].(map[string]any)["tokens"].(map[string]any)
	require.NotEmpty(t, tokens["access_token"])
	require.NotEmpty(t, tokens["refresh_token"])
}

func TestSignin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "ada@example.com")

	resp, body := env.request(t, http.MethodPost, "/v1/user/signin", map[string]any{
		"emailAddress": "ada@example.com",
		"password":     "wrong",
	}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "incorrect email address or password", errorBody(t, body)["message"])

	// Only the signup session exists; the failed signin opened nothing.
	var count int64
	require.NoError(t, env.db.Model(&models.Session{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestWhoami_RedactsSensitiveFields(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.signup(t, "ada@example.com")
	env.addCard(t, access)

	resp, body := env.request(t, http.MethodGet, "/v1/user/whoami", nil, bearer(access))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "User retrieved!", body["message"])

	data := body["data"].(map[string]any)
	require.Equal(t, "ada@example.com", data["emailAddress"])
	require.NotContains(t, data, "password")
	require.NotContains(t, data, "Password")
	require.NotContains(t, data, "metadata")

	cards := data["cards"].([]any)
	require.Len(t, cards, 1)
	card := cards[0].(map[string]any)
	require.NotContains(t, card, "providerCardId")
	require.NotContains(t, card, "verificationToken")
	require.NotContains(t, card, "metadata")
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.signup(t, "ada@example.com")

	resp, body := env.request(t, http.MethodPut, "/v1/user/", map[string]any{
		"firstName":    "Augusta",
		"lastName":     "King",
		"emailAddress": "Augusta@Example.com",
	}, bearer(access))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "User updated!", body["message"])

	data := body["data"].(map[string]any)
	require.Equal(t, "Augusta", data["firstName"])
	require.Equal(t, "augusta@example.com", data["emailAddress"])

	var user models.User
	require.NoError(t, env.db.First(&user).Error)
	require.Equal(t, "King", user.LastName)
	require.Equal(t, "augusta@example.com", user.EmailAddress)
}

func TestUpdateUser_EmailTaken(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "taken@example.com")
	access, _ := env.signup(t, "ada@example.com")

	resp, body := env.request(t, http.MethodPut, "/v1/user/", map[string]any{
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"emailAddress": "taken@example.com",
	}, bearer(access))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "user with email address already exist", errorBody(t, body)["message"])
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.signup(t, "ada@example.com")

	resp, body := env.request(t, http.MethodDelete, "/v1/user/", nil, bearer(access))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "User deleted!", body["message"])

	// The token now resolves to nobody.
	resp, _ = env.request(t, http.MethodGet, "/v1/user/whoami", nil, bearer(access))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestListPayments(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.signup(t, "ada@example.com")
	cardID := env.addCard(t, access)

	for i := 0; i < 5; i++ {
		env.initPayment(t, access, cardID, "10.00")
	}

	resp, body := env.request(t, http.MethodGet, "/v1/user/payments?limit=2&page=2", nil, bearer(access))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "User Payment/s retrieved!", body["message"])
	require.Len(t, body["data"].([]any), 2)

	pagination := body["pagination"].(map[string]any)
	require.EqualValues(t, 2, pagination["limit"])
	require.EqualValues(t, 2, pagination["currentPage"])
	require.EqualValues(t, 3, pagination["totalPages"])
	require.EqualValues(t, 5, pagination["totalRows"])
}

func TestListPayments_NonNumericPagination(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.signup(t, "ada@example.com")

	resp, body := env.request(t, http.MethodGet, "/v1/user/payments?limit=abc", nil, bearer(access))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Type of limit is not number", errorBody(t, body)["message"])

	resp, body = env.request(t, http.MethodGet, "/v1/user/payments?page=xyz", nil, bearer(access))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Type of page is not number", errorBody(t, body)["message"])
}

func TestListCards(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.signup(t, "ada@example.com")
	env.addCard(t, access)
	env.addCard(t, access)

	resp, body := env.request(t, http.MethodGet, "/v1/user/cards", nil, bearer(access))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "User Card/s retrieved!", body["message"])
	require.Len(t, body["data"].([]any), 2)
	require.NotNil(t, body["pagination"])
}
