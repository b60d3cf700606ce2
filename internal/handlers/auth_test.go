package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"vetclinic-server/internal/models"
)

func TestRegisterLoginAndProfile(t *testing.T) {
	router, _, _ := newTestServer(t)

	token := registerAndLogin(t, router, "Bob", "bob@example.com", "secret1")

	w := doRequest(t, router, http.MethodGet, "/api/v1/auth/profile", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: status %d body %s", w.Code, w.Body.String())
	}
	var profile models.UsuarioSanitized
	decodeData(t, w, &profile)
	if profile.Email != "bob@example.com" {
		t.Errorf("unexpected email: %q", profile.Email)
	}
	if profile.Rol != models.RolCliente {
		t.Errorf("expected rol cliente, got %q", profile.Rol)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("profile response leaks password field: %s", w.Body.String())
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _, _ := newTestServer(t)

	payload := gin.H{"nombre": "Bob", "email": "bob@example.com", "password": "secret1"}
	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("first register: status %d", w.Code)
	}
	w = doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d body %s", w.Code, w.Body.String())
	}
}

func TestRegisterMissingFields(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "no-name@example.com", "password": "secret1",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _, _ := newTestServer(t)
	registerAndLogin(t, router, "Bob", "bob@example.com", "secret1")

	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "whatever",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: expected 401, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "bob@example.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Success {
		t.Errorf("failed login reported success")
	}
}

func TestProfileRequiresToken(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/auth/profile", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/auth/profile", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: expected 401, got %d", w.Code)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	router, _, _ := newTestServer(t)
	token := registerAndLogin(t, router, "Bob", "bob@example.com", "secret1")

	w := doRequest(t, router, http.MethodPut, "/api/v1/auth/profile", token, gin.H{
		"telefono": "555-0001",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update profile: status %d body %s", w.Code, w.Body.String())
	}
	var profile models.UsuarioSanitized
	decodeData(t, w, &profile)
	if profile.Telefono != "555-0001" {
		t.Errorf("telefono not updated: %q", profile.Telefono)
	}
	if profile.Nombre != "Bob" || profile.Email != "bob@example.com" {
		t.Errorf("unrelated fields changed: nombre=%q email=%q", profile.Nombre, profile.Email)
	}
}

func TestUpdateProfilePassword(t *testing.T) {
	router, _, _ := newTestServer(t)
	token := registerAndLogin(t, router, "Bob", "bob@example.com", "secret1")

	w := doRequest(t, router, http.MethodPut, "/api/v1/auth/profile", token, gin.H{
		"password": "new-secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update password: status %d", w.Code)
	}

	w = doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "bob@example.com", "password": "secret1",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("old password still accepted")
	}
	w = doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "bob@example.com", "password": "new-secret",
	})
	if w.Code != http.StatusOK {
		t.Errorf("new password rejected: status %d", w.Code)
	}
}

func TestClienteTokenRejectedOnAdminRoutes(t *testing.T) {
	router, _, _ := newTestServer(t)
	token := registerAndLogin(t, router, "Bob", "bob@example.com", "secret1")

	for _, path := range []string{
		"/api/v1/users",
		"/api/v1/mascotas/admin/all",
		"/api/v1/citas/admin/all",
		"/api/v1/admin/stats",
	} {
		w := doRequest(t, router, http.MethodGet, path, token, nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s with cliente token: expected 403, got %d", path, w.Code)
		}
	}
}
