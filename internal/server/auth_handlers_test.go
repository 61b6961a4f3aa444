package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	resetDB(t)

	t.Run("missing fields", func(t *testing.T) {
		status, body := doJSON(t, "POST", "/api/auth/signup", "", fiber.Map{"username": "ada"})
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("weak password", func(t *testing.T) {
		status, _ := doJSON(t, "POST", "/api/auth/signup", "", fiber.Map{
			"username": "ada", "email": "ada@example.com", "password": "short",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("bad username", func(t *testing.T) {
		status, _ := doJSON(t, "POST", "/api/auth/signup", "", fiber.Map{
			"username": "_ada", "email": "ada@example.com", "password": "SuperSecret1!",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("success", func(t *testing.T) {
		status, body := doJSON(t, "POST", "/api/auth/signup", "", fiber.Map{
			"username": "ada", "email": "ada@example.com", "password": "SuperSecret1!",
		})
		require.Equal(t, fiber.StatusCreated, status)
		assert.NotEmpty(t, body["token"])
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ada", user["username"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		status, _ := doJSON(t, "POST", "/api/auth/signup", "", fiber.Map{
			"username": "ada2", "email": "ada@example.com", "password": "SuperSecret1!",
		})
		assert.Equal(t, fiber.StatusConflict, status)
	})
}

func TestLogin(t *testing.T) {
	resetDB(t)

	status, _ := doJSON(t, "POST", "/api/auth/signup", "", fiber.Map{
		"username": "grace", "email": "grace@example.com", "password": "SuperSecret1!",
	})
	require.Equal(t, fiber.StatusCreated, status)

	t.Run("unknown email", func(t *testing.T) {
		status, _ := doJSON(t, "POST", "/api/auth/login", "", fiber.Map{
			"email": "nobody@example.com", "password": "SuperSecret1!",
		})
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("wrong password", func(t *testing.T) {
		status, _ := doJSON(t, "POST", "/api/auth/login", "", fiber.Map{
			"email": "grace@example.com", "password": "WrongSecret1!",
		})
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("success", func(t *testing.T) {
		status, body := doJSON(t, "POST", "/api/auth/login", "", fiber.Map{
			"email": "grace@example.com", "password": "SuperSecret1!",
		})
		require.Equal(t, fiber.StatusOK, status)
		assert.NotEmpty(t, body["token"])
	})
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	resetDB(t)

	for _, path := range []string{
		"/api/users/me",
		"/api/notifications/",
	} {
		status, _ := doJSON(t, "GET", path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
	}

	status, _ := doJSON(t, "POST", "/api/posts/", "", fiber.Map{"content": "x"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	resetDB(t)
	_, token := createTestUser(t, "mortal", false)

	status, _ := doJSON(t, "POST", "/api/admin/memewar/start", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}
