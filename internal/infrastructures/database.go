package infrastructures

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDatabase() *gorm.DB {
	// TranslateError turns driver duplicate-key failures into
	// gorm.ErrDuplicatedKey, which the allocation path relies on.
	db, err := gorm.Open(postgres.Open(Config.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	return db
}
