package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vetclinic-server/internal/middleware"
	"vetclinic-server/internal/models"
	"vetclinic-server/internal/utils"
)

// CitaHandler handles appointment related requests.
type CitaHandler struct {
	DB *gorm.DB
}

// NewCitaHandler creates a new CitaHandler.
func NewCitaHandler(db *gorm.DB) *CitaHandler {
	return &CitaHandler{DB: db}
}

// isDuplicateKey reports whether err comes from a unique-index violation.
// The string checks cover drivers that do not translate to
// gorm.ErrDuplicatedKey.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// slotTaken reports whether an active cita (other than excludeID) already
// occupies the (fecha, hora) slot. This is only the friendly pre-check; the
// unique index on slot_key is what actually closes the race.
func (h *CitaHandler) slotTaken(fecha, hora, excludeID string) (bool, error) {
	var count int64
	query := h.DB.Model(&models.Cita{}).
		Where("fecha = ? AND hora = ? AND estado IN ?", fecha, hora,
			[]models.EstadoCita{models.EstadoPendiente, models.EstadoConfirmada})
	if excludeID != "" {
		query = query.Where("id != ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateCitaRequest represents the request body for booking an appointment.
type CreateCitaRequest struct {
	MascotaID    string `json:"mascota_id" binding:"required"`
	Fecha        string `json:"fecha" binding:"required"`
	Hora         string `json:"hora" binding:"required"`
	TipoServicio string `json:"tipo_servicio" binding:"required"`
	Descripcion  string `json:"descripcion"`
}

// CreateCita books an appointment for one of the caller's pets. The slot must
// not be held by another active cita.
func (h *CitaHandler) CreateCita(c *gin.Context) {
	var req CreateCitaRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	// The pet must belong to the caller at creation time.
	var mascota models.Mascota
	if err := h.DB.Where("id = ? AND usuario_id = ?", req.MascotaID, userID).First(&mascota).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Pet not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	taken, err := h.slotTaken(req.Fecha, req.Hora, "")
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if taken {
		utils.Conflict(c, "An appointment already exists for that slot")
		return
	}

	cita := models.Cita{
		UsuarioID:    userID,
		MascotaID:    req.MascotaID,
		Fecha:        req.Fecha,
		Hora:         req.Hora,
		TipoServicio: req.TipoServicio,
		Descripcion:  req.Descripcion,
		Estado:       models.EstadoPendiente,
	}

	if err := h.DB.Create(&cita).Error; err != nil {
		if isDuplicateKey(err) {
			utils.Conflict(c, "An appointment already exists for that slot")
			return
		}
		utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		return
	}

	utils.Created(c, "Appointment created successfully", cita)
}

// CitaConDetalles is a cita row joined with pet and owner identity.
type CitaConDetalles struct {
	models.Cita
	MascotaNombre string `json:"mascota_nombre"`
	MascotaTipo   string `json:"mascota_tipo"`
	UsuarioNombre string `json:"usuario_nombre,omitempty"`
	UsuarioEmail  string `json:"usuario_email,omitempty"`
}

// GetCitas lists the caller's appointments with pet details, newest slot first.
func (h *CitaHandler) GetCitas(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var citas []CitaConDetalles
	err := h.DB.Model(&models.Cita{}).
		Select("citas.*, mascotas.nombre AS mascota_nombre, mascotas.tipo AS mascota_tipo").
		Joins("JOIN mascotas ON mascotas.id = citas.mascota_id").
		Where("citas.usuario_id = ?", userID).
		Order("citas.fecha DESC, citas.hora DESC").
		Scan(&citas).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", citas)
}

// GetAllCitas lists every appointment with pet and owner contact details (admin).
func (h *CitaHandler) GetAllCitas(c *gin.Context) {
	var citas []CitaConDetalles
	err := h.DB.Model(&models.Cita{}).
		Select("citas.*, mascotas.nombre AS mascota_nombre, mascotas.tipo AS mascota_tipo, usuarios.nombre AS usuario_nombre, usuarios.email AS usuario_email").
		Joins("JOIN mascotas ON mascotas.id = citas.mascota_id").
		Joins("JOIN usuarios ON usuarios.id = citas.usuario_id").
		Order("citas.fecha DESC, citas.hora DESC").
		Scan(&citas).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", citas)
}

// GetCitaByID fetches a single appointment. Accessible by the owner or an admin.
func (h *CitaHandler) GetCitaByID(c *gin.Context) {
	var cita models.Cita
	if err := h.DB.First(&cita, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRol, _ := middleware.GetUserRolFromContext(c)
	if userRol != models.RolAdmin && cita.UsuarioID != userID {
		utils.Forbidden(c, "You do not have access to this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", cita)
}

// UpdateCitaRequest represents the request body for updating an appointment.
// Estado, costo and notas_admin are only honored for admins.
type UpdateCitaRequest struct {
	Fecha        string            `json:"fecha"`
	Hora         string            `json:"hora"`
	TipoServicio string            `json:"tipo_servicio"`
	Descripcion  *string           `json:"descripcion"`
	Estado       models.EstadoCita `json:"estado"`
	Costo        *float64          `json:"costo"`
	NotasAdmin   *string           `json:"notas_admin"`
}

func validEstado(e models.EstadoCita) bool {
	switch e {
	case models.EstadoPendiente, models.EstadoConfirmada, models.EstadoCompletada, models.EstadoCancelada:
		return true
	}
	return false
}

// UpdateCita applies a partial update. Clients may only touch their own
// pendiente citas and only the scheduling fields; admins may update anything.
func (h *CitaHandler) UpdateCita(c *gin.Context) {
	var req UpdateCitaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var cita models.Cita
	if err := h.DB.First(&cita, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRol, _ := middleware.GetUserRolFromContext(c)
	isAdmin := userRol == models.RolAdmin

	if !isAdmin {
		if cita.UsuarioID != userID {
			utils.Forbidden(c, "You do not have access to this appointment")
			return
		}
		if cita.Estado != models.EstadoPendiente {
			utils.BadRequest(c, "Only pendiente appointments can be modified")
			return
		}
	}

	if req.Fecha != "" {
		cita.Fecha = req.Fecha
	}
	if req.Hora != "" {
		cita.Hora = req.Hora
	}
	if req.TipoServicio != "" {
		cita.TipoServicio = req.TipoServicio
	}
	if req.Descripcion != nil {
		cita.Descripcion = *req.Descripcion
	}
	if isAdmin {
		if req.Estado != "" {
			if !validEstado(req.Estado) {
				utils.BadRequest(c, "Invalid estado: "+string(req.Estado))
				return
			}
			cita.Estado = req.Estado
		}
		if req.Costo != nil {
			cita.Costo = req.Costo
		}
		if req.NotasAdmin != nil {
			cita.NotasAdmin = *req.NotasAdmin
		}
	}

	// Moving an active cita may land on an occupied slot.
	if cita.EsActiva() {
		taken, err := h.slotTaken(cita.Fecha, cita.Hora, cita.ID)
		if err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		if taken {
			utils.Conflict(c, "An appointment already exists for that slot")
			return
		}
	}

	if err := h.DB.Save(&cita).Error; err != nil {
		if isDuplicateKey(err) {
			utils.Conflict(c, "An appointment already exists for that slot")
			return
		}
		utils.InternalServerError(c, "Failed to update appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment updated successfully", cita)
}

// CancelCita moves an appointment to cancelada, freeing its slot. Completed
// appointments cannot be reopened for cancellation.
func (h *CitaHandler) CancelCita(c *gin.Context) {
	var cita models.Cita
	if err := h.DB.First(&cita, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRol, _ := middleware.GetUserRolFromContext(c)
	if userRol != models.RolAdmin && cita.UsuarioID != userID {
		utils.Forbidden(c, "You do not have access to this appointment")
		return
	}

	if cita.Estado == models.EstadoCompletada {
		utils.BadRequest(c, "A completed appointment cannot be cancelled")
		return
	}

	cita.Estado = models.EstadoCancelada
	if err := h.DB.Save(&cita).Error; err != nil {
		utils.InternalServerError(c, "Failed to cancel appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment cancelled", cita)
}

// DeleteCita removes an appointment outright (admin).
func (h *CitaHandler) DeleteCita(c *gin.Context) {
	var cita models.Cita
	if err := h.DB.First(&cita, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&cita).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment deleted", nil)
}
