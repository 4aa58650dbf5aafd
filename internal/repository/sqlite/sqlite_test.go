package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/zgjun/noto-backend/internal/model"
)

// newTestDB opens a fresh database in a per-test temp directory. A file
// path instead of ":memory:" because database/sql pools connections and
// each in-memory connection would see its own empty database.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// createTestUser inserts a user and returns it with the generated ID set.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Name:         "Test " + username,
		Username:     username,
		PasswordHash: "$2a$04$fakehashfortestingonly",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return user
}

// createTestFile inserts a file owned by userID and returns it.
func createTestFile(t *testing.T, db *DB, userID, name string) *model.File {
	t.Helper()

	file := &model.File{
		UserID:      userID,
		Name:        name,
		ContentType: "application/pdf",
		Data:        []byte("fake pdf bytes"),
	}
	if err := db.Files().Create(context.Background(), file); err != nil {
		t.Fatalf("creating file %s: %v", name, err)
	}
	return file
}
