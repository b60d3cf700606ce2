package models

import (
	"gorm.io/gorm"
)

// EstadoCita represents the lifecycle state of an appointment
type EstadoCita string

const (
	EstadoPendiente  EstadoCita = "pendiente"
	EstadoConfirmada EstadoCita = "confirmada"
	EstadoCompletada EstadoCita = "completada"
	EstadoCancelada  EstadoCita = "cancelada"
)

// Cita represents a scheduled veterinary appointment. Fecha is YYYY-MM-DD
// and Hora HH:MM, matching the DATE/TIME columns of the original schema.
type Cita struct {
	BaseModel
	UsuarioID    string     `gorm:"size:36;not null;index" json:"usuario_id"`
	MascotaID    string     `gorm:"size:36;not null;index" json:"mascota_id"`
	Fecha        string     `gorm:"size:10;not null;index" json:"fecha"`
	Hora         string     `gorm:"size:5;not null" json:"hora"`
	TipoServicio string     `gorm:"size:255;not null" json:"tipo_servicio"`
	Descripcion  string     `gorm:"type:text" json:"descripcion,omitempty"`
	Estado       EstadoCita `gorm:"size:20;default:'pendiente'" json:"estado"`
	Costo        *float64   `gorm:"type:decimal(10,2)" json:"costo,omitempty"`
	NotasAdmin   string     `gorm:"type:text" json:"notas_admin,omitempty"`

	// SlotKey holds "fecha|hora" while the cita is active and NULL otherwise.
	// The unique index is what enforces single-booking per slot; concurrent
	// inserts for the same slot lose with a duplicate-key error.
	SlotKey *string `gorm:"size:20;uniqueIndex" json:"-"`

	// Relations
	Usuario Usuario `gorm:"foreignKey:UsuarioID;constraint:OnDelete:CASCADE" json:"-"`
	Mascota Mascota `gorm:"foreignKey:MascotaID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the table name aligned with the existing schema.
func (Cita) TableName() string { return "citas" }

// EsActiva reports whether the cita currently occupies its slot.
func (c *Cita) EsActiva() bool {
	return c.Estado == EstadoPendiente || c.Estado == EstadoConfirmada
}

// BeforeSave keeps SlotKey in sync with the lifecycle state, so cancelling or
// completing a cita frees the slot.
func (c *Cita) BeforeSave(tx *gorm.DB) error {
	if c.Estado == "" {
		c.Estado = EstadoPendiente
	}
	if c.EsActiva() {
		key := c.Fecha + "|" + c.Hora
		c.SlotKey = &key
	} else {
		c.SlotKey = nil
	}
	return nil
}
