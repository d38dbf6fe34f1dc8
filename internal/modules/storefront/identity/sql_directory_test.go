package identity

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/gaborage/go-bricks/database"
	dbtest "github.com/gaborage/go-bricks/database/testing"
	dbtypes "github.com/gaborage/go-bricks/database/types"
)

var userColumns = []string{"merchant_user_id", "email", "phone", "first_name", "last_name", "loyalty_tier", "password"}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}
	return string(hash)
}

func TestSQLDirectoryFindByCredentials(t *testing.T) {
	ctx := context.Background()
	hash := hashPassword(t, "duke@2025")

	t.Run("matching password", func(t *testing.T) {
		db := dbtest.NewTestDB(dbtypes.PostgreSQL)
		db.ExpectQuery("SELECT").
			WillReturnRows(
				dbtest.NewRowSet(userColumns...).
					AddRow("DUKE-USR-1001", "arjun@example.test", "+919876543210", "Arjun", "Sharma", "Platinum", hash),
			)

		dir := NewSQLDirectory(func(context.Context) (database.Interface, error) { return db, nil })
		user, err := dir.FindByCredentials(ctx, "arjun@example.test", "duke@2025")

		if err != nil {
			t.Fatalf("FindByCredentials() unexpected error = %v", err)
		}
		if user.MerchantUserID != "DUKE-USR-1001" || user.LoyaltyTier != "Platinum" {
			t.Errorf("FindByCredentials() user = %+v", user)
		}
		if user.Password != "" {
			t.Error("password hash must not leave the directory")
		}
		dbtest.AssertQueryExecuted(t, db, "SELECT")
	})

	t.Run("wrong password", func(t *testing.T) {
		db := dbtest.NewTestDB(dbtypes.PostgreSQL)
		db.ExpectQuery("SELECT").
			WillReturnRows(
				dbtest.NewRowSet(userColumns...).
					AddRow("DUKE-USR-1001", "arjun@example.test", "", "Arjun", "Sharma", "Platinum", hash),
			)

		dir := NewSQLDirectory(func(context.Context) (database.Interface, error) { return db, nil })
		_, err := dir.FindByCredentials(ctx, "arjun@example.test", "nope")

		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("FindByCredentials() error = %v, want %v", err, ErrUserNotFound)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		db := dbtest.NewTestDB(dbtypes.PostgreSQL)
		db.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)

		dir := NewSQLDirectory(func(context.Context) (database.Interface, error) { return db, nil })
		_, err := dir.FindByCredentials(ctx, "nobody@example.test", "x")

		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("FindByCredentials() error = %v, want %v", err, ErrUserNotFound)
		}
	})

	t.Run("database unavailable", func(t *testing.T) {
		dir := NewSQLDirectory(func(context.Context) (database.Interface, error) {
			return nil, errors.New("crm database not configured")
		})
		_, err := dir.FindByCredentials(ctx, "a@b.test", "x")

		if err == nil || errors.Is(err, ErrUserNotFound) {
			t.Errorf("FindByCredentials() error = %v, want connection error", err)
		}
	})
}

func TestSQLDirectoryExists(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		count int
		want  bool
	}{
		{"taken", 1, true},
		{"free", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := dbtest.NewTestDB(dbtypes.PostgreSQL)
			db.ExpectQuery("SELECT").WillReturnRows(dbtest.NewRowSet("count").AddRow(tt.count))

			dir := NewSQLDirectory(func(context.Context) (database.Interface, error) { return db, nil })
			got, err := dir.Exists(ctx, "DUKE-USR-2001")

			if err != nil {
				t.Fatalf("Exists() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("query error", func(t *testing.T) {
		db := dbtest.NewTestDB(dbtypes.PostgreSQL)
		db.ExpectQuery("SELECT").WillReturnError(errors.New("database error"))

		dir := NewSQLDirectory(func(context.Context) (database.Interface, error) { return db, nil })
		if _, err := dir.Exists(ctx, "x"); err == nil {
			t.Error("Exists() expected error, got nil")
		}
	})
}
