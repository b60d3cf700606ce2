package seed

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"

	"vetclinic-server/internal/config"
	"vetclinic-server/internal/models"
)

// Run ensures the accounts the product depends on exist, and optionally
// loads demo data. Called once at boot, before the server starts listening.
func Run(db *gorm.DB, cfg *config.Config) error {
	if err := ensureUser(db, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, "Administrador", models.RolAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if cfg.Seed.Demo {
		if err := Demo(db, 8); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}
	return nil
}

// ensureUser creates the account if missing. The role is written on the row
// itself; there are no runtime role overrides anywhere else.
func ensureUser(db *gorm.DB, email, password, nombre string, rol models.Rol) error {
	var existing models.Usuario
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user := models.Usuario{
		Nombre: nombre,
		Email:  email,
		Rol:    rol,
		Estado: models.EstadoActivo,
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	log.Printf("seed: created %s account %s", rol, email)
	return nil
}

var tiposMascota = []string{"perro", "gato", "conejo", "ave"}

var tiposServicio = []string{
	"Consulta general",
	"Vacunación",
	"Desparasitación",
	"Peluquería",
	"Cirugía menor",
}

// Demo fills the database with generated clients, pets and appointments so
// the dashboard has something to show. Slots are spread over future days so
// the uniqueness rule never trips.
func Demo(db *gorm.DB, clients int) error {
	gofakeit.Seed(time.Now().UnixNano())

	slot := 0
	for i := 0; i < clients; i++ {
		user := models.Usuario{
			Nombre:    gofakeit.Name(),
			Email:     gofakeit.Email(),
			Telefono:  gofakeit.Phone(),
			Direccion: gofakeit.Address().Street,
			Rol:       models.RolCliente,
			Estado:    models.EstadoActivo,
		}
		if err := user.SetPassword(gofakeit.Password(true, true, true, false, false, 12)); err != nil {
			return err
		}
		if err := db.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue // generated email collided, skip this client
			}
			return err
		}

		pets := gofakeit.Number(1, 3)
		for p := 0; p < pets; p++ {
			tipo := tiposMascota[gofakeit.Number(0, len(tiposMascota)-1)]
			raza := ""
			switch tipo {
			case "perro":
				raza = gofakeit.Dog()
			case "gato":
				raza = gofakeit.Cat()
			}
			edad := gofakeit.Number(1, 15)
			peso := gofakeit.Float64Range(0.5, 45)
			mascota := models.Mascota{
				Nombre:    gofakeit.PetName(),
				Tipo:      tipo,
				Raza:      raza,
				Edad:      &edad,
				Peso:      &peso,
				Color:     gofakeit.Color(),
				UsuarioID: user.ID,
			}
			if err := db.Create(&mascota).Error; err != nil {
				return err
			}

			// One future appointment per pet, each in its own slot.
			fecha := time.Now().AddDate(0, 0, 1+slot/8).Format("2006-01-02")
			hora := fmt.Sprintf("%02d:00", 9+slot%8)
			slot++
			cita := models.Cita{
				UsuarioID:    user.ID,
				MascotaID:    mascota.ID,
				Fecha:        fecha,
				Hora:         hora,
				TipoServicio: tiposServicio[gofakeit.Number(0, len(tiposServicio)-1)],
				Estado:       models.EstadoPendiente,
			}
			if err := db.Create(&cita).Error; err != nil {
				return err
			}
		}
	}
	log.Printf("seed: demo data loaded (%d clients)", clients)
	return nil
}
