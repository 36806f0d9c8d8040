package db

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rgcouk/biglittle/utils"
)

var DB *gorm.DB

func GetDB() *gorm.DB {
	return DB
}

// Init establishes the DB connection without running migrations. Transient
// connection failures are retried up to 3 times with exponential delay;
// exhaustion is fatal rather than an infinite retry loop.
func Init() {
	err := godotenv.Load()
	if err != nil {
		logrus.Debug("no .env file found, using environment variables directly")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logrus.Fatal("DATABASE_URL is not set")
	}

	var db *gorm.DB
	attempt := 0
	err = utils.WithRetry(3, time.Second, func() error {
		attempt++
		var openErr error
		db, openErr = gorm.Open(postgres.Open(dbURL), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
		if openErr != nil {
			logrus.WithFields(logrus.Fields{
				"attempt": attempt,
				"error":   openErr,
			}).Warn("database connection failed")
		}
		return openErr
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	DB = db
	logrus.Info("database connection established")
}
