// Command testdb aprovisiona la base de datos de pruebas de integracion:
// crea el esquema minimo y siembra una cuenta demo. Sale con codigo 1 ante
// cualquier fallo.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"trustlens/internal/config"
	"trustlens/internal/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	bio TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT 'user',
	plan TEXT NOT NULL DEFAULT 'free',
	usage_limit INT NOT NULL DEFAULT 100,
	usage_count INT NOT NULL DEFAULT 0,
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const (
	demoEmail    = "demo@trustlens.io"
	demoPassword = "demo-password"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		log.Fatalf("db ping: %v", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash demo password: %v", err)
	}

	const seed = `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, plan, email_verified)
		VALUES ($1, $2, $3, 'Demo', 'User', 'admin', 'pro', TRUE)
		ON CONFLICT (email) DO NOTHING
	`
	if _, err := pool.Exec(ctx, seed, uuid.NewString(), demoEmail, string(hash)); err != nil {
		log.Fatalf("seed demo user: %v", err)
	}

	log.Printf("test database ready, demo account %s", demoEmail)
}
