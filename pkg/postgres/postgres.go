package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"queueline-app/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS queues (
			id BIGSERIAL PRIMARY KEY,
			business_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			avg_service_time INTEGER NOT NULL DEFAULT 5,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS queue_history (
			id BIGSERIAL PRIMARY KEY,
			ticket_id VARCHAR(36) UNIQUE NOT NULL,
			queue_id BIGINT REFERENCES queues(id),
			user_id BIGINT NOT NULL,
			position INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			join_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			leave_time TIMESTAMP,
			wait_time BIGINT,
			alerts_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			alert_threshold INTEGER NOT NULL DEFAULT 3,
			alert_channels VARCHAR(255) NOT NULL DEFAULT '',
			alert_email VARCHAR(255) NOT NULL DEFAULT '',
			alert_telegram_id VARCHAR(100) NOT NULL DEFAULT '',
			alerts_sent BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			channel VARCHAR(20) NOT NULL,
			message TEXT NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_queues_business_id ON queues(business_id)`,
		`CREATE INDEX IF NOT EXISTS idx_history_queue_status ON queue_history(queue_id, status)`,
		// One active ticket per user across all queues, enforced at the
		// storage level so concurrent joins into different queues cannot
		// both commit.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_history_user_active ON queue_history(user_id) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_join ON queue_history(user_id, join_time)`,
		`CREATE INDEX IF NOT EXISTS idx_history_alerts ON queue_history(alerts_enabled, alerts_sent) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS idx_history_leave_time ON queue_history(leave_time)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id, created_at)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
