package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

// Applies every .sql file in the migrations directory in name order, one
// transaction per file. Files use CREATE ... IF NOT EXISTS so reruns are
// harmless. Pass --list to print the contact tables instead of migrating.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("[migrate] DATABASE_URL is required")
	}

	dir := "migrations"
	listOnly := false
	for _, a := range os.Args[1:] {
		if a == "--list" {
			listOnly = true
		} else {
			dir = a
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("[migrate] open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("[migrate] ping database: %v", err)
	}

	if listOnly {
		if err := listTables(db); err != nil {
			log.Fatalf("[migrate] list tables: %v", err)
		}
		return
	}

	files, err := migrationFiles(dir)
	if err != nil {
		log.Fatalf("[migrate] %v", err)
	}

	failed := 0
	for _, f := range files {
		fmt.Printf("  %s ... ", f)
		if err := applyFile(db, filepath.Join(dir, f)); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			failed++
			continue
		}
		fmt.Println("OK")
	}
	log.Printf("[migrate] applied %d of %d files", len(files)-failed, len(files))
	if failed > 0 {
		os.Exit(1)
	}
}

func listTables(db *sql.DB) error {
	rows, err := db.Query(`SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename LIKE 'contact%'
		ORDER BY tablename`)
	if err != nil {
		return err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		fmt.Println(" ", name)
		n++
	}
	fmt.Printf("Total: %d tables\n", n)
	return rows.Err()
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func applyFile(db *sql.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(data)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
