// Command seed creates the database schema and, when requested, a
// SUPERADMIN account, so a fresh environment can be brought up without
// hand-written SQL.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bssic/school-portal-api/pkg/config"
	"github.com/bssic/school-portal-api/pkg/database"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		revoked BOOLEAN NOT NULL DEFAULT FALSE,
		revoked_at TIMESTAMPTZ,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		user_id TEXT,
		action TEXT NOT NULL,
		resource TEXT NOT NULL,
		resource_id TEXT,
		old_values JSONB,
		new_values JSONB,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS admission_applications (
		id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL,
		father_name TEXT NOT NULL,
		mother_name TEXT NOT NULL,
		date_of_birth TEXT NOT NULL,
		mobile TEXT NOT NULL,
		address TEXT NOT NULL,
		email TEXT NOT NULL,
		previous_school TEXT NOT NULL,
		class_name TEXT NOT NULL,
		document_urls TEXT[] NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_admission_applications_status ON admission_applications (status)`,
	`CREATE TABLE IF NOT EXISTS student_results (
		roll_number BIGINT PRIMARY KEY,
		student_name TEXT NOT NULL,
		class_name TEXT NOT NULL,
		subjects JSONB NOT NULL,
		total_marks BIGINT NOT NULL,
		percentage BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_student_results_class ON student_results (class_name)`,
	`CREATE TABLE IF NOT EXISTS contact_submissions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func main() {
	adminEmail := flag.String("admin-email", "", "create a SUPERADMIN with this email if no admin exists")
	adminPassword := flag.String("admin-password", "", "password for the seeded SUPERADMIN")
	adminName := flag.String("admin-name", "Super Admin", "full name for the seeded SUPERADMIN")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
	}
	log.Println("schema applied")

	if *adminEmail == "" {
		return
	}
	if *adminPassword == "" {
		log.Fatal("-admin-password is required with -admin-email")
	}

	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role IN ('SUPERADMIN', 'ADMIN') AND active = TRUE`); err != nil {
		log.Fatalf("failed to count admins: %v", err)
	}
	if count > 0 {
		log.Println("an admin already exists, skipping superadmin seed")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	const insert = `INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'SUPERADMIN', TRUE, NOW(), NOW())`
	if _, err := db.ExecContext(ctx, insert, uuid.NewString(), strings.ToLower(*adminEmail), string(hash), *adminName); err != nil {
		log.Fatalf("failed to seed superadmin: %v", err)
	}
	log.Printf("superadmin %s created", strings.ToLower(*adminEmail))
}
