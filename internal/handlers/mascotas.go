package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vetclinic-server/internal/middleware"
	"vetclinic-server/internal/models"
	"vetclinic-server/internal/utils"
)

// MascotaHandler handles pet related requests.
type MascotaHandler struct {
	DB *gorm.DB
}

// NewMascotaHandler creates a new MascotaHandler.
func NewMascotaHandler(db *gorm.DB) *MascotaHandler {
	return &MascotaHandler{DB: db}
}

// CreateMascotaRequest represents the request body for registering a pet.
type CreateMascotaRequest struct {
	Nombre string   `json:"nombre" binding:"required"`
	Tipo   string   `json:"tipo" binding:"required"`
	Raza   string   `json:"raza"`
	Edad   *int     `json:"edad"`
	Peso   *float64 `json:"peso"`
	Color  string   `json:"color"`
}

// CreateMascota registers a new pet owned by the caller.
func (h *MascotaHandler) CreateMascota(c *gin.Context) {
	var req CreateMascotaRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	mascota := models.Mascota{
		Nombre:    req.Nombre,
		Tipo:      req.Tipo,
		Raza:      req.Raza,
		Edad:      req.Edad,
		Peso:      req.Peso,
		Color:     req.Color,
		UsuarioID: userID,
	}

	if err := h.DB.Create(&mascota).Error; err != nil {
		utils.InternalServerError(c, "Failed to create pet: "+err.Error())
		return
	}

	utils.Created(c, "Pet created successfully", mascota)
}

// GetMascotas lists the caller's pets, newest first.
func (h *MascotaHandler) GetMascotas(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var mascotas []models.Mascota
	if err := h.DB.Where("usuario_id = ?", userID).Order("created_at DESC").Find(&mascotas).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch pets: "+err.Error())
		return
	}

	utils.Success(c, "Pets fetched successfully", mascotas)
}

// findOwnedMascota loads a pet scoped to its owner. Cross-tenant lookups are
// indistinguishable from missing rows.
func (h *MascotaHandler) findOwnedMascota(c *gin.Context, mascotaID string) (*models.Mascota, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	var mascota models.Mascota
	if err := h.DB.Where("id = ? AND usuario_id = ?", mascotaID, userID).First(&mascota).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Pet not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &mascota, true
}

// GetMascotaByID fetches one of the caller's pets.
func (h *MascotaHandler) GetMascotaByID(c *gin.Context) {
	mascota, ok := h.findOwnedMascota(c, c.Param("id"))
	if !ok {
		return
	}
	utils.Success(c, "Pet fetched successfully", mascota)
}

// UpdateMascotaRequest represents the request body for updating a pet.
type UpdateMascotaRequest struct {
	Nombre string   `json:"nombre"`
	Tipo   string   `json:"tipo"`
	Raza   string   `json:"raza"`
	Edad   *int     `json:"edad"`
	Peso   *float64 `json:"peso"`
	Color  string   `json:"color"`
}

// UpdateMascota applies a partial update to one of the caller's pets.
func (h *MascotaHandler) UpdateMascota(c *gin.Context) {
	var req UpdateMascotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	mascota, ok := h.findOwnedMascota(c, c.Param("id"))
	if !ok {
		return
	}

	if req.Nombre != "" {
		mascota.Nombre = req.Nombre
	}
	if req.Tipo != "" {
		mascota.Tipo = req.Tipo
	}
	if req.Raza != "" {
		mascota.Raza = req.Raza
	}
	if req.Edad != nil {
		mascota.Edad = req.Edad
	}
	if req.Peso != nil {
		mascota.Peso = req.Peso
	}
	if req.Color != "" {
		mascota.Color = req.Color
	}

	if err := h.DB.Save(mascota).Error; err != nil {
		utils.InternalServerError(c, "Failed to update pet: "+err.Error())
		return
	}

	utils.Success(c, "Pet updated successfully", mascota)
}

// DeleteMascota removes one of the caller's pets along with its appointments.
func (h *MascotaHandler) DeleteMascota(c *gin.Context) {
	mascota, ok := h.findOwnedMascota(c, c.Param("id"))
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mascota_id = ?", mascota.ID).Delete(&models.Cita{}).Error; err != nil {
			return err
		}
		return tx.Delete(mascota).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete pet: "+err.Error())
		return
	}

	utils.Success(c, "Pet deleted successfully", nil)
}

// MascotaConDuenio is a pet row joined with its owner's identity, for the
// admin listing.
type MascotaConDuenio struct {
	models.Mascota
	UsuarioNombre string `json:"usuario_nombre"`
	UsuarioEmail  string `json:"usuario_email"`
}

// GetAllMascotas lists every pet with owner identity (admin).
func (h *MascotaHandler) GetAllMascotas(c *gin.Context) {
	var mascotas []MascotaConDuenio
	err := h.DB.Model(&models.Mascota{}).
		Select("mascotas.*, usuarios.nombre AS usuario_nombre, usuarios.email AS usuario_email").
		Joins("LEFT JOIN usuarios ON usuarios.id = mascotas.usuario_id").
		Order("mascotas.created_at DESC").
		Scan(&mascotas).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch pets: "+err.Error())
		return
	}

	utils.Success(c, "Pets fetched successfully", mascotas)
}
