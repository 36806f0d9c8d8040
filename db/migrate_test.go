package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rgcouk/biglittle/models"
)

func migratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, RunMigrations(gdb))
	return gdb
}

// The database itself rejects a second active booking on a unit, so the
// invariant holds even when two requests race past the availability check.
func TestOneActiveBookingPerUnit(t *testing.T) {
	gdb := migratedDB(t)

	first := models.Booking{UnitID: 1, MonthlyRatePence: 10000, StartDate: time.Now()}
	require.NoError(t, gdb.Create(&first).Error)

	second := models.Booking{UnitID: 1, MonthlyRatePence: 10000, StartDate: time.Now()}
	assert.Error(t, gdb.Create(&second).Error)

	// A different unit is unaffected.
	other := models.Booking{UnitID: 2, MonthlyRatePence: 9000, StartDate: time.Now()}
	assert.NoError(t, gdb.Create(&other).Error)
}

func TestEndedBookingFreesTheUnit(t *testing.T) {
	gdb := migratedDB(t)

	first := models.Booking{UnitID: 1, MonthlyRatePence: 10000, StartDate: time.Now()}
	require.NoError(t, gdb.Create(&first).Error)
	require.NoError(t, first.End(gdb, time.Now()))

	second := models.Booking{UnitID: 1, MonthlyRatePence: 12000, StartDate: time.Now()}
	assert.NoError(t, gdb.Create(&second).Error, "ended bookings don't block new ones")
}
