package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. It expects a MySQL
// instance at localhost:3306 with a database named 'warehouse_test' and
// skips the test when none is reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/warehouse_test"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB removes all rows written by a test and closes the handle.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"Component", "Product", "Article"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the warehouse schema used by the tests.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createArticleTable := `
	CREATE TABLE IF NOT EXISTS Article (
		id BIGINT NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		stock INT NOT NULL
	)`

	createProductTable := `
	CREATE TABLE IF NOT EXISTS Product (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE
	)`

	createComponentTable := `
	CREATE TABLE IF NOT EXISTS Component (
		productId BIGINT NOT NULL,
		articleId BIGINT NOT NULL,
		amount INT NOT NULL,
		PRIMARY KEY (productId, articleId),
		FOREIGN KEY (productId) REFERENCES Product(id) ON DELETE CASCADE,
		FOREIGN KEY (articleId) REFERENCES Article(id),
		INDEX idx_article (articleId)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Article", createArticleTable},
		{"Product", createProductTable},
		{"Component", createComponentTable},
	}

	for _, tbl := range tables {
		_, err := db.Exec(tbl.query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
