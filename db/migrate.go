package db

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rgcouk/biglittle/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	if err := RunMigrations(DB); err != nil {
		logrus.Fatal("failed to run migrations: ", err)
	}

	logrus.Info("migrations applied successfully")
}

// RunMigrations applies the schema to the given connection. Split from
// Migrate so tests can run it against their own database.
func RunMigrations(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Facility{},
		&models.Unit{},
		&models.Booking{},
		&models.Payment{},
		&models.AuditEntry{},
		&models.Integration{},
	)
	if err != nil {
		return err
	}

	// At most one active booking per unit, enforced at the database so
	// concurrent booking transactions cannot both commit. Partial index
	// syntax is shared by postgres and sqlite.
	return gdb.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_one_active_per_unit
		ON bookings(unit_id) WHERE status = 'active' AND deleted_at IS NULL`).Error
}
