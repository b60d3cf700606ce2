package models

// Mascota represents a pet, owned by exactly one Usuario.
type Mascota struct {
	BaseModel
	Nombre    string   `gorm:"size:255;not null" json:"nombre"`
	Tipo      string   `gorm:"size:100;not null" json:"tipo"`
	Raza      string   `gorm:"size:100" json:"raza,omitempty"`
	Edad      *int     `json:"edad,omitempty"`
	Peso      *float64 `gorm:"type:decimal(5,2)" json:"peso,omitempty"`
	Color     string   `gorm:"size:100" json:"color,omitempty"`
	UsuarioID string   `gorm:"size:36;not null;index" json:"usuario_id"`

	// Relations
	Usuario Usuario `gorm:"foreignKey:UsuarioID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the table name aligned with the existing schema.
func (Mascota) TableName() string { return "mascotas" }
