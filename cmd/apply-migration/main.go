package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/lib/pq"

	"github.com/CareO-HQ/careo-sub007/internal/config"
	"github.com/CareO-HQ/careo-sub007/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <migration_file.sql>", os.Args[0])
	}

	migrationFile := os.Args[1]
	sqlContent, err := os.ReadFile(migrationFile)
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Connected to database: %s\n\n", cfg.Database.Database)

	statements := migrationStatements(string(sqlContent))
	for i, stmt := range statements {
		fmt.Printf("Executing statement %d/%d...\n", i+1, len(statements))
		if _, err := db.Exec(stmt); err != nil {
			preview := stmt
			if len(preview) > 100 {
				preview = preview[:100]
			}
			log.Fatalf("Failed to execute statement %d: %v\nStatement: %s", i+1, err, preview)
		}
	}

	fmt.Println("Migration completed successfully")
}

// migrationStatements splits SQL on semicolons and drops empty chunks.
// Leading comment lines are stripped per chunk so a statement that starts
// with a comment still executes.
func migrationStatements(sqlContent string) []string {
	var out []string
	for _, chunk := range strings.Split(sqlContent, ";") {
		stmt := strings.TrimSpace(chunk)
		for strings.HasPrefix(stmt, "--") {
			nl := strings.Index(stmt, "\n")
			if nl < 0 {
				stmt = ""
				break
			}
			stmt = strings.TrimSpace(stmt[nl+1:])
		}
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
