package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jobtracker_backend/internal/config"
	"jobtracker_backend/internal/logger"
	"jobtracker_backend/internal/models"
)

// Open connects GORM to PostgreSQL, applies the pool settings and pings.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger:         logger.NewGormLogger(cfg.Server.Env),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	return db, nil
}

// Models lists every table the service owns.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.JobApplication{},
		&models.Resume{},
		&models.Reminder{},
		&models.AnalyticsSnapshot{},
	}
}

// indexes are not expressible as struct tags.
var indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_job_applications_user_external
		ON job_applications (user_id, external_id) WHERE external_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_job_applications_tags
		ON job_applications USING GIN (tags)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_due
		ON reminders (reminder_date) WHERE status = 'pending' AND email_sent = false`,
}

// AutoMigrate creates or updates the schema.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	logger.Info("AutoMigrate completed", "tables", len(Models()))
	return nil
}
