package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"vetclinic-server/internal/config"
	"vetclinic-server/internal/models"
	"vetclinic-server/internal/routes"
	"vetclinic-server/internal/utils"
)

var dbSeq atomic.Int64

// openTestDB opens a private in-memory database. The name is unique per call
// so parallel tests do not share state; cache=shared keeps the database alive
// across the pooled connections.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
	}
}

// newTestServer wires the full router against an in-memory database.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB, *config.Config) {
	return newTestServerWithRedis(t, nil)
}

func newTestServerWithRedis(t *testing.T, rdb *redis.Client) (*gin.Engine, *gorm.DB, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	cfg := testConfig()
	router := gin.New()
	routes.SetupRoutes(router, db, rdb, cfg)
	return router, db, cfg
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doRequest performs one request against the router. token may be empty.
func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	resp := decodeResponse(t, w)
	if err := json.Unmarshal(resp.Data, out); err != nil {
		t.Fatalf("decode data %q: %v", string(resp.Data), err)
	}
}

// registerAndLogin creates a cliente account through the API and returns
// its token.
func registerAndLogin(t *testing.T, router *gin.Engine, nombre, email, password string) string {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"nombre":   nombre,
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}

	w = doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &data)
	if data.Token == "" {
		t.Fatalf("login %s: empty token", email)
	}
	return data.Token
}

// newAdmin creates an admin row directly and returns the user and a token.
func newAdmin(t *testing.T, db *gorm.DB, cfg *config.Config, email string) (*models.Usuario, string) {
	t.Helper()
	admin := models.Usuario{
		Nombre: "Admin",
		Email:  email,
		Rol:    models.RolAdmin,
		Estado: models.EstadoActivo,
	}
	if err := admin.SetPassword("admin-password"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	token, err := utils.GenerateToken(&admin, cfg)
	if err != nil {
		t.Fatalf("generate admin token: %v", err)
	}
	return &admin, token
}

// createMascota registers a pet for the token's owner and returns its ID.
func createMascota(t *testing.T, router *gin.Engine, token, nombre, tipo string) string {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/v1/mascotas", token, gin.H{
		"nombre": nombre,
		"tipo":   tipo,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create mascota: status %d body %s", w.Code, w.Body.String())
	}
	var mascota models.Mascota
	decodeData(t, w, &mascota)
	return mascota.ID
}

// createCita books an appointment and returns its ID.
func createCita(t *testing.T, router *gin.Engine, token, mascotaID, fecha, hora string) string {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/v1/citas", token, gin.H{
		"mascota_id":    mascotaID,
		"fecha":         fecha,
		"hora":          hora,
		"tipo_servicio": "Consulta general",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create cita: status %d body %s", w.Code, w.Body.String())
	}
	var cita models.Cita
	decodeData(t, w, &cita)
	return cita.ID
}
