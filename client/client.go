// Package client is the session layer consuming apps use against the
// vetclinic API: it persists the bearer token and cached profile across
// restarts and attaches the token to every authenticated request. It is a
// thin wrapper with no retries or token refresh.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotLoggedIn is returned for authenticated calls without a session.
	ErrNotLoggedIn = errors.New("vetclinic: not logged in")
	// ErrUnauthorized is returned when the server rejects the token.
	ErrUnauthorized = errors.New("vetclinic: unauthorized")
)

// APIError carries a non-auth error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vetclinic: api error (status %d): %s", e.StatusCode, e.Message)
}

// Config for the API client. BaseURL is required; StateFile, when set, is
// where the session survives restarts.
type Config struct {
	BaseURL   string
	StateFile string
	Timeout   time.Duration
}

// Usuario mirrors the user payload of the API.
type Usuario struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	Email     string `json:"email"`
	Telefono  string `json:"telefono,omitempty"`
	Direccion string `json:"direccion,omitempty"`
	Rol       string `json:"rol"`
	Estado    string `json:"estado,omitempty"`
}

// Mascota mirrors the pet payload of the API.
type Mascota struct {
	ID        string   `json:"id"`
	Nombre    string   `json:"nombre"`
	Tipo      string   `json:"tipo"`
	Raza      string   `json:"raza,omitempty"`
	Edad      *int     `json:"edad,omitempty"`
	Peso      *float64 `json:"peso,omitempty"`
	Color     string   `json:"color,omitempty"`
	UsuarioID string   `json:"usuario_id"`
}

// Cita mirrors the appointment payload of the API.
type Cita struct {
	ID           string   `json:"id"`
	UsuarioID    string   `json:"usuario_id"`
	MascotaID    string   `json:"mascota_id"`
	Fecha        string   `json:"fecha"`
	Hora         string   `json:"hora"`
	TipoServicio string   `json:"tipo_servicio"`
	Descripcion  string   `json:"descripcion,omitempty"`
	Estado       string   `json:"estado"`
	Costo        *float64 `json:"costo,omitempty"`
}

type sessionState struct {
	Token string   `json:"token"`
	User  *Usuario `json:"user,omitempty"`
}

// Client is a vetclinic API client holding one user session.
type Client struct {
	baseURL    string
	stateFile  string
	httpClient *http.Client

	mu      sync.Mutex
	session sessionState
}

// New builds a client and restores any persisted session.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("vetclinic: BaseURL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		stateFile:  cfg.StateFile,
		httpClient: &http.Client{Timeout: timeout},
	}

	if c.stateFile != "" {
		data, err := os.ReadFile(c.stateFile)
		if err == nil {
			// A corrupt state file just means starting logged out.
			_ = json.Unmarshal(data, &c.session)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("vetclinic: read state file: %w", err)
		}
	}

	return c, nil
}

// LoggedIn reports whether a token is held.
func (c *Client) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Token != ""
}

// Token returns the current bearer token, empty when logged out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Token
}

// CurrentUser returns the cached profile from the last login or profile call.
func (c *Client) CurrentUser() *Usuario {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.User == nil {
		return nil
	}
	u := *c.session.User
	return &u
}

func (c *Client) saveState() error {
	if c.stateFile == "" {
		return nil
	}
	data, err := json.Marshal(c.session)
	if err != nil {
		return err
	}
	return os.WriteFile(c.stateFile, data, 0o600)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do performs one request and decodes the envelope. out may be nil when the
// caller does not care about data.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, auth bool, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		token := c.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("vetclinic: invalid response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("vetclinic: decode data: %w", err)
		}
	}
	return nil
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Nombre    string `json:"nombre"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Telefono  string `json:"telefono,omitempty"`
	Direccion string `json:"direccion,omitempty"`
}

// Register creates a new cliente account. It does not log in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*Usuario, error) {
	var user Usuario
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", in, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the session (token plus cached profile).
func (c *Client) Login(ctx context.Context, email, password string) (*Usuario, error) {
	var data struct {
		User  Usuario `json:"user"`
		Token string  `json:"token"`
	}
	payload := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", payload, false, &data); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = sessionState{Token: data.Token, User: &data.User}
	err := c.saveState()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &data.User, nil
}

// Logout clears the persisted session. The token is stateless server-side,
// so forgetting it is all a logout takes.
func (c *Client) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = sessionState{}
	return c.saveState()
}

// Profile fetches the authenticated user's profile and refreshes the cache.
func (c *Client) Profile(ctx context.Context) (*Usuario, error) {
	var user Usuario
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/profile", nil, true, &user); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session.User = &user
	err := c.saveState()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate holds the fields a user may change. Zero values are omitted.
type ProfileUpdate struct {
	Nombre    string `json:"nombre,omitempty"`
	Telefono  string `json:"telefono,omitempty"`
	Direccion string `json:"direccion,omitempty"`
	Password  string `json:"password,omitempty"`
}

// UpdateProfile applies a partial profile update and refreshes the cache.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Usuario, error) {
	var user Usuario
	if err := c.do(ctx, http.MethodPut, "/api/v1/auth/profile", update, true, &user); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session.User = &user
	err := c.saveState()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Mascotas lists the caller's pets.
func (c *Client) Mascotas(ctx context.Context) ([]Mascota, error) {
	var mascotas []Mascota
	if err := c.do(ctx, http.MethodGet, "/api/v1/mascotas", nil, true, &mascotas); err != nil {
		return nil, err
	}
	return mascotas, nil
}

// NuevaMascota is the payload for registering a pet.
type NuevaMascota struct {
	Nombre string   `json:"nombre"`
	Tipo   string   `json:"tipo"`
	Raza   string   `json:"raza,omitempty"`
	Edad   *int     `json:"edad,omitempty"`
	Peso   *float64 `json:"peso,omitempty"`
	Color  string   `json:"color,omitempty"`
}

// CrearMascota registers a pet for the caller.
func (c *Client) CrearMascota(ctx context.Context, in NuevaMascota) (*Mascota, error) {
	var mascota Mascota
	if err := c.do(ctx, http.MethodPost, "/api/v1/mascotas", in, true, &mascota); err != nil {
		return nil, err
	}
	return &mascota, nil
}

// Citas lists the caller's appointments.
func (c *Client) Citas(ctx context.Context) ([]Cita, error) {
	var citas []Cita
	if err := c.do(ctx, http.MethodGet, "/api/v1/citas", nil, true, &citas); err != nil {
		return nil, err
	}
	return citas, nil
}

// NuevaCita is the payload for booking an appointment.
type NuevaCita struct {
	MascotaID    string `json:"mascota_id"`
	Fecha        string `json:"fecha"`
	Hora         string `json:"hora"`
	TipoServicio string `json:"tipo_servicio"`
	Descripcion  string `json:"descripcion,omitempty"`
}

// CrearCita books an appointment for one of the caller's pets.
func (c *Client) CrearCita(ctx context.Context, in NuevaCita) (*Cita, error) {
	var cita Cita
	if err := c.do(ctx, http.MethodPost, "/api/v1/citas", in, true, &cita); err != nil {
		return nil, err
	}
	return &cita, nil
}

// CancelarCita cancels an appointment.
func (c *Client) CancelarCita(ctx context.Context, citaID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/citas/"+citaID+"/cancel", nil, true, nil)
}
