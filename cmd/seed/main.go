// seed creates the schema if needed and inserts demo users and loans into
// the local dev database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mayutangba/loanbook/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                   TEXT PRIMARY KEY,
	email                TEXT NOT NULL UNIQUE,
	password_hash        TEXT NOT NULL,
	nickname             TEXT NOT NULL DEFAULT '',
	is_verification_sent BOOLEAN NOT NULL DEFAULT FALSE,
	is_verified          BOOLEAN NOT NULL DEFAULT FALSE,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS loans (
	id          BIGSERIAL PRIMARY KEY,
	lender_id   TEXT NOT NULL,
	borrower_id TEXT NOT NULL,
	amount      NUMERIC(18,2) NOT NULL CHECK (amount > 0),
	date        TIMESTAMPTZ NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	pair_lo     TEXT GENERATED ALWAYS AS (LEAST(lender_id, borrower_id)) STORED,
	pair_hi     TEXT GENERATED ALWAYS AS (GREATEST(lender_id, borrower_id)) STORED,
	CHECK (lender_id <> borrower_id)
);

CREATE INDEX IF NOT EXISTS loans_pair_date_idx ON loans (pair_lo, pair_hi, date DESC, id);
CREATE INDEX IF NOT EXISTS loans_borrower_date_idx ON loans (borrower_id, date DESC);
`

const seedPassword = "password123"

type seedUser struct {
	email    string
	verified bool
}

var users = []seedUser{
	{"alice@seed.local", true},
	{"bob@seed.local", true},
	{"carol@seed.local", false},
}

type seedLoan struct {
	lender   string
	borrower string
	amount   string
	daysAgo  int
	name     string
	category string
}

var loans = []seedLoan{
	{"alice@seed.local", "bob@seed.local", "100.00", 9, "Concert tickets", "leisure"},
	{"bob@seed.local", "alice@seed.local", "30.00", 8, "Lunch", "food"},
	{"alice@seed.local", "bob@seed.local", "12.50", 3, "Taxi split", "transport"},
	{"alice@seed.local", "carol@seed.local", "250.00", 5, "Rent advance", "housing"},
	{"carol@seed.local", "bob@seed.local", "18.00", 1, "Groceries", "food"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash seed password: %v", err)
	}

	ids := make(map[string]string, len(users))
	for _, u := range users {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO users (id, email, password_hash, nickname, is_verification_sent, is_verified)
			VALUES ($1, $2, $3, split_part($2, '@', 1), $4, $4)
			ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			uuid.NewString(), u.email, string(hash), u.verified,
		).Scan(&id)
		if err != nil {
			log.Fatalf("upsert user %s: %v", u.email, err)
		}
		ids[u.email] = id
	}

	var inserted int
	for _, l := range loans {
		date := time.Now().AddDate(0, 0, -l.daysAgo)
		_, err := pool.Exec(ctx, `
			INSERT INTO loans (lender_id, borrower_id, amount, date, name, category)
			VALUES ($1, $2, $3::numeric, $4, $5, $6)`,
			ids[l.lender], ids[l.borrower], l.amount, date, l.name, l.category,
		)
		if err != nil {
			log.Fatalf("insert loan %q: %v", l.name, err)
		}
		inserted++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Users:         %d  (password %q, carol is unverified)\n", len(users), seedPassword)
	fmt.Printf("  Loans created: %d\n", inserted)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in as alice:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/auth/login \\")
	fmt.Println("      -H 'Content-Type: application/json' \\")
	fmt.Printf("      -d '{\"email\":\"alice@seed.local\",\"password\":\"%s\"}'\n", seedPassword)
	fmt.Println()
	fmt.Println("  Step 2 — check the balance against bob (positive = bob owes alice):")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Printf("    curl -s 'http://localhost:8080/loans/balance?peer=%s' -H \"Authorization: Bearer $JWT\"\n", ids["bob@seed.local"])
	fmt.Println()
	fmt.Println("  Step 3 — carol's verification flow: sign in as carol, then:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/auth/resend -H \"Authorization: Bearer $JWT\"")
	fmt.Println("    # Copy the signed URL from the server log (local dev logs emails) and open it.")
}
