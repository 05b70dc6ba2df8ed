package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coachbar/catalog-api/internal/domain/entity"
)

func TestLoginEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "Ada", "ada@example.com", "secret1", entity.RoleUser)

	w := api.doJSON(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataField(t, w)
	require.NotEmpty(t, data["token"])
	user := data["user"].(map[string]any)
	require.Equal(t, "ada@example.com", user["email"])
	require.NotContains(t, w.Body.String(), "secret1", "password material must not leak")

	// Unknown email and wrong password are the same answer on the wire.
	for _, body := range []map[string]string{
		{"email": "nobody@example.com", "password": "secret1"},
		{"email": "ada@example.com", "password": "wrong-pass"},
	} {
		w = api.doJSON(t, http.MethodPost, "/api/users/login", "", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "Invalid credentials")
	}
}

func TestRegisterAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	user := api.seedUser(t, "Ada", "ada@example.com", "secret1", entity.RoleUser)
	admin := api.seedUser(t, "Admin", "admin@example.com", "secret1", entity.RoleAdmin)

	body := map[string]string{"name": "Bob", "email": "bob@example.com", "password": "secret1", "role": "user"}

	w := api.doJSON(t, http.MethodPost, "/api/users/register", "", body)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.doJSON(t, http.MethodPost, "/api/users/register", api.token(t, user.ID, user.Role), body)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = api.doJSON(t, http.MethodPost, "/api/users/register", api.token(t, admin.ID, admin.Role), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, "bob@example.com", dataField(t, w)["email"])

	// Duplicate email conflicts.
	w = api.doJSON(t, http.MethodPost, "/api/users/register", api.token(t, admin.ID, admin.Role), body)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "User already exists")
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)
	admin := api.seedUser(t, "Admin", "admin@example.com", "secret1", entity.RoleAdmin)
	token := api.token(t, admin.ID, admin.Role)

	for name, body := range map[string]map[string]string{
		"short password": {"name": "Bob", "email": "bob@example.com", "password": "12345", "role": "user"},
		"bad email":      {"name": "Bob", "email": "not-an-email", "password": "secret1", "role": "user"},
		"bad role":       {"name": "Bob", "email": "bob@example.com", "password": "secret1", "role": "root"},
		"missing name":   {"email": "bob@example.com", "password": "secret1", "role": "user"},
	} {
		w := api.doJSON(t, http.MethodPost, "/api/users/register", token, body)
		require.Equal(t, http.StatusBadRequest, w.Code, "case %q: %s", name, w.Body.String())
	}
}

func TestListUsersAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	user := api.seedUser(t, "Ada", "ada@example.com", "secret1", entity.RoleUser)
	admin := api.seedUser(t, "Admin", "admin@example.com", "secret1", entity.RoleAdmin)

	w := api.doJSON(t, http.MethodGet, "/api/users", api.token(t, user.ID, user.Role), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = api.doJSON(t, http.MethodGet, "/api/users", api.token(t, admin.ID, admin.Role), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	require.Equal(t, float64(2), data["total"])
	users := data["users"].([]any)
	require.Len(t, users, 2)
	require.Equal(t, "Ada", users[0].(map[string]any)["name"])
}

func TestMeAndUpdateSelf(t *testing.T) {
	api := newTestAPI(t)
	u := api.seedUser(t, "Ada", "ada@example.com", "secret1", entity.RoleUser)
	token := api.token(t, u.ID, u.Role)

	w := api.doJSON(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Ada", dataField(t, w)["name"])

	w = api.doJSON(t, http.MethodPut, "/api/users/update", token, map[string]string{"name": "Ada Lovelace"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Ada Lovelace", dataField(t, w)["name"])

	w = api.doJSON(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, "Ada Lovelace", dataField(t, w)["name"])
}

func TestUpdatePasswordEndpoint(t *testing.T) {
	api := newTestAPI(t)
	u := api.seedUser(t, "Ada", "ada@example.com", "secret1", entity.RoleUser)
	token := api.token(t, u.ID, u.Role)

	w := api.doJSON(t, http.MethodPut, "/api/users/update-password", token, map[string]string{
		"oldPassword": "wrong-old", "newPassword": "newpass1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid old password")

	w = api.doJSON(t, http.MethodPut, "/api/users/update-password", token, map[string]string{
		"oldPassword": "secret1", "newPassword": "newpass1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.doJSON(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "ada@example.com", "password": "newpass1",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUploadProfilePicture(t *testing.T) {
	api := newTestAPI(t)
	u := api.seedUser(t, "Ada", "ada@example.com", "secret1", entity.RoleUser)
	token := api.token(t, u.ID, u.Role)

	w := api.doMultipart(t, http.MethodPost, "/api/users/upload-profile-pic", token, nil, "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Image is required")

	w = api.doMultipart(t, http.MethodPost, "/api/users/upload-profile-pic", token, nil, "profile", testPNG(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := dataField(t, w)["profile"].(string)
	require.NotEmpty(t, first)
	require.Len(t, uploadedFiles(t, api.uploadDir), 1)

	// A second upload supersedes the first file.
	w = api.doMultipart(t, http.MethodPost, "/api/users/upload-profile-pic", token, nil, "profile", testPNG(t))
	require.Equal(t, http.StatusOK, w.Code)
	second := dataField(t, w)["profile"].(string)
	require.NotEqual(t, first, second)

	files := uploadedFiles(t, api.uploadDir)
	require.Len(t, files, 1)
	require.Equal(t, second, files[0])
}
