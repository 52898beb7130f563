// Command seed creates the schema and loads reference data plus demo
// accounts for local development. Safe to run repeatedly.
package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/grc-api/pkg/config"
	"github.com/noah-isme/grc-api/pkg/database"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		revoked BOOLEAN NOT NULL DEFAULT FALSE,
		revoked_at TIMESTAMPTZ,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS class_levels (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		sort_order INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS fields (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS axes (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		field_id UUID NOT NULL REFERENCES fields(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS subjects (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		field_id UUID NOT NULL REFERENCES fields(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS lecturers (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		full_name TEXT NOT NULL,
		is_hod BOOLEAN NOT NULL DEFAULT FALSE,
		field_id UUID REFERENCES fields(id),
		cellule_member BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS lecturer_subjects (
		lecturer_id UUID NOT NULL REFERENCES lecturers(id) ON DELETE CASCADE,
		subject_id UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
		position INT NOT NULL DEFAULT 0,
		PRIMARY KEY (lecturer_id, subject_id)
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		full_name TEXT NOT NULL,
		matricule TEXT NOT NULL UNIQUE,
		class_level_id UUID NOT NULL REFERENCES class_levels(id),
		field_id UUID REFERENCES fields(id)
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES students(id),
		matricule TEXT NOT NULL,
		student_name TEXT NOT NULL,
		class_level_id UUID NOT NULL REFERENCES class_levels(id),
		field_id UUID NOT NULL REFERENCES fields(id),
		axis_id UUID REFERENCES axes(id),
		subject_id UUID NOT NULL REFERENCES subjects(id),
		type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		current_score DOUBLE PRECISION NOT NULL,
		assigned_to UUID REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'sent',
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		closed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_assigned_to ON requests(assigned_to)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_student ON requests(student_id)`,
	`CREATE TABLE IF NOT EXISTS request_logs (
		id UUID PRIMARY KEY,
		request_id UUID NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
		action TEXT NOT NULL,
		from_status TEXT,
		to_status TEXT NOT NULL,
		actor_id UUID,
		actor_name TEXT NOT NULL DEFAULT '',
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
		note TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_request_logs_request ON request_logs(request_id, timestamp)`,
	`CREATE TABLE IF NOT EXISTS request_results (
		id UUID PRIMARY KEY,
		request_id UUID NOT NULL UNIQUE REFERENCES requests(id) ON DELETE CASCADE,
		disposition TEXT NOT NULL,
		new_score DOUBLE PRECISION,
		reason TEXT,
		created_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id UUID PRIMARY KEY,
		request_id UUID NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
		uploaded_by UUID,
		file_path TEXT NOT NULL,
		filename TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size BIGINT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read)`,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("load config: %v", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		fail("connect: %v", err)
	}
	defer db.Close() //nolint:errcheck

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			fail("schema: %v", err)
		}
	}
	fmt.Println("schema ready")

	if err := seedReference(db); err != nil {
		fail("reference data: %v", err)
	}
	if err := seedAccounts(db); err != nil {
		fail("demo accounts: %v", err)
	}
	fmt.Println("seed complete")
}

func seedReference(db *sqlx.DB) error {
	levels := []struct {
		id, name string
		order    int
	}{
		{"0c8e1fca-0001-4000-8000-000000000001", "Level 1", 1},
		{"0c8e1fca-0001-4000-8000-000000000002", "Level 2", 2},
		{"0c8e1fca-0001-4000-8000-000000000003", "Level 3", 3},
	}
	for _, l := range levels {
		if _, err := db.Exec(
			`INSERT INTO class_levels (id, name, sort_order) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING`,
			l.id, l.name, l.order); err != nil {
			return err
		}
	}

	fields := []struct{ id, code, name string }{
		{"0c8e1fca-0002-4000-8000-000000000001", "GL", "Software Engineering"},
		{"0c8e1fca-0002-4000-8000-000000000002", "GI", "Computer Engineering"},
	}
	for _, f := range fields {
		if _, err := db.Exec(
			`INSERT INTO fields (id, code, name) VALUES ($1, $2, $3) ON CONFLICT (code) DO NOTHING`,
			f.id, f.code, f.name); err != nil {
			return err
		}
	}

	subjects := []struct{ id, code, name, fieldID string }{
		{"0c8e1fca-0003-4000-8000-000000000001", "ALG", "Algorithmique", fields[0].id},
		{"0c8e1fca-0003-4000-8000-000000000002", "BD", "Bases de données", fields[0].id},
		{"0c8e1fca-0003-4000-8000-000000000003", "RES", "Réseaux", fields[1].id},
	}
	for _, s := range subjects {
		if _, err := db.Exec(
			`INSERT INTO subjects (id, code, name, field_id) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			s.id, s.code, s.name, s.fieldID); err != nil {
			return err
		}
	}
	return nil
}

func seedAccounts(db *sqlx.DB) error {
	password, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	accounts := []struct{ id, email, name, role string }{
		{"0c8e1fca-0010-4000-8000-000000000001", "admin@univ.test", "Administrator", "ADMIN"},
		{"0c8e1fca-0010-4000-8000-000000000002", "fotso@univ.test", "Dr. Fotso", "LECTURER"},
		{"0c8e1fca-0010-4000-8000-000000000003", "kamga@univ.test", "Prof. Kamga", "LECTURER"},
		{"0c8e1fca-0010-4000-8000-000000000004", "tchoua@univ.test", "M. Tchoua", "LECTURER"},
		{"0c8e1fca-0010-4000-8000-000000000005", "ngono@univ.test", "Ngono Marie", "STUDENT"},
	}
	for _, a := range accounts {
		if _, err := db.Exec(
			`INSERT INTO users (id, email, password_hash, full_name, role) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO NOTHING`,
			a.id, a.email, string(password), a.name, a.role); err != nil {
			return err
		}
	}

	fieldGL := "0c8e1fca-0002-4000-8000-000000000001"
	lecturers := []struct {
		id, userID, name string
		isHOD, cellule   bool
		fieldID          *string
	}{
		{"0c8e1fca-0020-4000-8000-000000000001", accounts[1].id, "Dr. Fotso", false, false, nil},
		{"0c8e1fca-0020-4000-8000-000000000002", accounts[2].id, "Prof. Kamga", true, false, &fieldGL},
		{"0c8e1fca-0020-4000-8000-000000000003", accounts[3].id, "M. Tchoua", false, true, nil},
	}
	for _, l := range lecturers {
		if _, err := db.Exec(
			`INSERT INTO lecturers (id, user_id, full_name, is_hod, field_id, cellule_member)
			VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (user_id) DO NOTHING`,
			l.id, l.userID, l.name, l.isHOD, l.fieldID, l.cellule); err != nil {
			return err
		}
	}
	if _, err := db.Exec(
		`INSERT INTO lecturer_subjects (lecturer_id, subject_id, position) VALUES ($1, $2, 0)
		ON CONFLICT DO NOTHING`,
		lecturers[0].id, "0c8e1fca-0003-4000-8000-000000000001"); err != nil {
		return err
	}

	if _, err := db.Exec(
		`INSERT INTO students (id, user_id, full_name, matricule, class_level_id, field_id)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (matricule) DO NOTHING`,
		"0c8e1fca-0030-4000-8000-000000000001", accounts[4].id, "Ngono Marie", "20G60123",
		"0c8e1fca-0001-4000-8000-000000000003", fieldGL); err != nil {
		return err
	}
	return nil
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
