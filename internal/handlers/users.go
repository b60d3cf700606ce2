package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vetclinic-server/internal/middleware"
	"vetclinic-server/internal/models"
	"vetclinic-server/internal/utils"
)

// UserHandler handles user-management requests (admin operations).
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// GetUsers handles fetching all users (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	var users []models.Usuario
	if err := h.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UsuarioSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitized)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	var user models.Usuario
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user by an admin.
// Email stays immutable here as well.
type UpdateUserRequest struct {
	Nombre    string `json:"nombre"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
	Rol       string `json:"rol"`
	Estado    string `json:"estado"`
	Password  string `json:"password"`
}

// UpdateUser handles updating a user by ID (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.Usuario
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Nombre != "" {
		user.Nombre = req.Nombre
	}
	if req.Telefono != "" {
		user.Telefono = req.Telefono
	}
	if req.Direccion != "" {
		user.Direccion = req.Direccion
	}
	if req.Rol != "" {
		rol := models.Rol(req.Rol)
		if rol != models.RolCliente && rol != models.RolAdmin {
			utils.BadRequest(c, "Invalid rol: "+req.Rol)
			return
		}
		user.Rol = rol
	}
	if req.Estado != "" {
		user.Estado = req.Estado
	}
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			utils.InternalServerError(c, "Failed to hash password: "+err.Error())
			return
		}
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser handles deleting a user by ID (admin). Admins cannot delete
// their own account, and the user's pets and appointments go with it.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	targetID := c.Param("id")

	callerID, _ := middleware.GetUserIDFromContext(c)
	if callerID == targetID {
		utils.BadRequest(c, "You cannot delete your own account")
		return
	}

	var user models.Usuario
	if err := h.DB.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("usuario_id = ?", user.ID).Delete(&models.Cita{}).Error; err != nil {
			return err
		}
		if err := tx.Where("usuario_id = ?", user.ID).Delete(&models.Mascota{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	utils.Success(c, "User deleted successfully", nil)
}
