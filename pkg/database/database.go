package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gateway-service/internal/model"
	"gateway-service/internal/store"
	"gateway-service/pkg/config"
)

// InitDB opens the PostgreSQL connection, applies pool settings, runs the
// schema migration and seeds the reference device types.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DB.LogLevel),
		// unique-index violations surface as gorm.ErrDuplicatedKey so the
		// store can report them as duplicates
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := db.AutoMigrate(
		&model.Tenant{},
		&model.DeviceType{},
		&model.Gateway{},
		&model.PeripheralDevice{},
		&model.GatewayLog{},
	); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	if err := seedDeviceTypes(db); err != nil {
		return nil, fmt.Errorf("failed to seed device types: %w", err)
	}

	return db, nil
}

// seedDeviceTypes inserts the reference device types if they are missing
func seedDeviceTypes(db *gorm.DB) error {
	for _, dt := range store.SeedDeviceTypes() {
		rec := model.DeviceType{Name: dt.Name, Description: dt.Description}
		if err := db.Where(model.DeviceType{Name: dt.Name}).FirstOrCreate(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}
