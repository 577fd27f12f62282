package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	tables := []string{
		"comments",
		"user_votes",
		"legislator_votes",
		"funding_records",
		"legislators",
		"bills",
	}

	for _, table := range tables {
		if _, err := conn.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
		fmt.Printf("Dropped table: %s\n", table)
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS bills (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			session TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			briefing TEXT NOT NULL DEFAULT '',
			yes_votes BIGINT NOT NULL DEFAULT 0,
			no_votes BIGINT NOT NULL DEFAULT 0,
			user_vote TEXT,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS legislators (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			party TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			district TEXT NOT NULL DEFAULT '',
			chamber TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			top_issues TEXT[] NOT NULL DEFAULT '{}',
			contact_email TEXT NOT NULL DEFAULT '',
			contact_phone TEXT NOT NULL DEFAULT '',
			contact_office TEXT NOT NULL DEFAULT '',
			twitter TEXT NOT NULL DEFAULT '',
			facebook TEXT NOT NULL DEFAULT '',
			instagram TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS funding_records (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			legislator_id UUID NOT NULL REFERENCES legislators(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			date TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS legislator_votes (
			id UUID PRIMARY KEY,
			bill_id UUID NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
			legislator_id UUID NOT NULL REFERENCES legislators(id) ON DELETE CASCADE,
			vote TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			UNIQUE (bill_id, legislator_id)
		)`,

		`CREATE TABLE IF NOT EXISTS user_votes (
			bill_id UUID NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			vote TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (bill_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			bill_id UUID NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
			author TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			parent_id UUID REFERENCES comments(id) ON DELETE CASCADE,
			upvotes BIGINT NOT NULL DEFAULT 0,
			user_has_upvoted BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_legislator_votes_bill ON legislator_votes(bill_id)`,
		`CREATE INDEX IF NOT EXISTS idx_legislator_votes_legislator ON legislator_votes(legislator_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_votes_user ON user_votes(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_bill ON comments(bill_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_funding_records_legislator ON funding_records(legislator_id)`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}

	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	seed := []string{
		`INSERT INTO bills (id, title, summary, state, body, session, tags, briefing)
		 VALUES
			('11111111-1111-1111-1111-111111111111', 'Clean Water Infrastructure Act',
			 'Funds replacement of lead service lines statewide.', 'CA', 'Senate', '2025-2026',
			 '{environment,infrastructure}', 'Allocates bond revenue to municipal water districts.'),
			('22222222-2222-2222-2222-222222222222', 'Rural Broadband Expansion Act',
			 'Grants for last-mile fiber in underserved counties.', 'CA', 'Assembly', '2025-2026',
			 '{technology,infrastructure}', 'Matches federal broadband funds with state grants.')
		 ON CONFLICT (id) DO NOTHING`,

		`INSERT INTO legislators (id, name, party, state, district, chamber, top_issues,
			contact_email, twitter)
		 VALUES
			('33333333-3333-3333-3333-333333333333', 'Dana Whitfield', 'Independent', 'CA',
			 'SD-07', 'Senate', '{water,housing}', 'dana.whitfield@example.gov', '@senwhitfield'),
			('44444444-4444-4444-4444-444444444444', 'Marcus Oyelaran', 'Unity', 'CA',
			 'AD-21', 'Assembly', '{broadband,education}', 'marcus.oyelaran@example.gov', '@asmoyelaran')
		 ON CONFLICT (id) DO NOTHING`,

		`INSERT INTO funding_records (legislator_id, source, amount, date)
		 SELECT '33333333-3333-3333-3333-333333333333', 'Water Alliance PAC', 12500.00, NOW() - INTERVAL '90 days'
		 WHERE NOT EXISTS (
			SELECT 1 FROM funding_records
			WHERE legislator_id = '33333333-3333-3333-3333-333333333333' AND source = 'Water Alliance PAC'
		 )`,

		`INSERT INTO legislator_votes (id, bill_id, legislator_id, vote, date)
		 VALUES
			('55555555-5555-5555-5555-555555555555', '11111111-1111-1111-1111-111111111111',
			 '33333333-3333-3333-3333-333333333333', 'yes', NOW() - INTERVAL '30 days'),
			('66666666-6666-6666-6666-666666666666', '11111111-1111-1111-1111-111111111111',
			 '44444444-4444-4444-4444-444444444444', 'not_present', NOW() - INTERVAL '30 days'),
			('77777777-7777-7777-7777-777777777777', '22222222-2222-2222-2222-222222222222',
			 '44444444-4444-4444-4444-444444444444', 'yes', NOW() - INTERVAL '14 days')
		 ON CONFLICT (bill_id, legislator_id) DO NOTHING`,
	}

	for _, stmt := range seed {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}

	return nil
}
