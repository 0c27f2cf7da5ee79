package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Users table: username-only accounts, no email required
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(20) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			avatar_url TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Per-user gameplay progress. The state column is the engine's
		// serialized record; unknown fields written by newer clients are
		// preserved across read-modify-write (see internal/progress).
		`CREATE TABLE IF NOT EXISTS user_progress (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			state JSONB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Premium subscription state synced from RevenueCat
		`CREATE TABLE IF NOT EXISTS subscriptions (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			product_id VARCHAR(255) NOT NULL,
			entitlement VARCHAR(100) NOT NULL,
			store VARCHAR(50),
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			expires_at TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Content violations recorded by the moderation service
		`CREATE TABLE IF NOT EXISTS violations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			user_id UUID REFERENCES users(id) ON DELETE SET NULL,
			ip_address VARCHAR(255) NOT NULL,
			type VARCHAR(50) NOT NULL,
			content TEXT NOT NULL,
			action_taken VARCHAR(50) NOT NULL
		)`,

		// Blocked IPs table
		`CREATE TABLE IF NOT EXISTS blocked_ips (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMP NOT NULL,
			ip_address VARCHAR(255) NOT NULL,
			reason TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// In-app feedback form
		`CREATE TABLE IF NOT EXISTS feedbacks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			user_id UUID REFERENCES users(id) ON DELETE SET NULL,
			feedback TEXT NOT NULL,
			ip_address VARCHAR(255)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users(LOWER(username))`,
		`CREATE INDEX IF NOT EXISTS idx_user_progress_updated_at ON user_progress(updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_is_active ON subscriptions(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_expires_at ON subscriptions(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_violations_ip_address ON violations(ip_address)`,
		`CREATE INDEX IF NOT EXISTS idx_violations_created_at ON violations(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_blocked_ips_ip_address ON blocked_ips(ip_address)`,
		`CREATE INDEX IF NOT EXISTS idx_blocked_ips_is_active ON blocked_ips(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_feedbacks_created_at ON feedbacks(created_at)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
