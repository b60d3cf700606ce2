package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Rol enum
type Rol string

const (
	RolCliente Rol = "cliente"
	RolAdmin   Rol = "admin"
)

// EstadoActivo is the default account state. Nothing transitions it today,
// it exists so admin tooling can disable accounts without deleting them.
const EstadoActivo = "activo"

// Usuario represents an account in the system, either a pet owner (cliente)
// or a clinic administrator.
type Usuario struct {
	BaseModel
	Nombre    string `gorm:"size:255;not null" json:"nombre"`
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Telefono  string `gorm:"size:20" json:"telefono,omitempty"`
	Direccion string `gorm:"size:255" json:"direccion,omitempty"`
	Rol       Rol    `gorm:"size:20;default:'cliente'" json:"rol"`
	Estado    string `gorm:"size:50;default:'activo'" json:"estado"`

	// Relations (not always preloaded)
	Mascotas []Mascota `gorm:"foreignKey:UsuarioID;constraint:OnDelete:CASCADE" json:"-"`
	Citas    []Cita    `gorm:"foreignKey:UsuarioID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the table name aligned with the existing schema.
func (Usuario) TableName() string { return "usuarios" }

// UsuarioSanitized represents the user data that is safe to send in API responses.
type UsuarioSanitized struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	Telefono  string    `json:"telefono,omitempty"`
	Direccion string    `json:"direccion,omitempty"`
	Rol       Rol       `json:"rol"`
	Estado    string    `json:"estado"`
	CreatedAt time.Time `json:"fecha_creacion"`
}

// SetPassword hashes a password and sets it on the user
func (u *Usuario) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *Usuario) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UsuarioSanitized struct from a Usuario model, excluding sensitive data.
func (u *Usuario) Sanitize() UsuarioSanitized {
	return UsuarioSanitized{
		ID:        u.ID,
		Nombre:    u.Nombre,
		Email:     u.Email,
		Telefono:  u.Telefono,
		Direccion: u.Direccion,
		Rol:       u.Rol,
		Estado:    u.Estado,
		CreatedAt: u.CreatedAt,
	}
}
