package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks/database"
)

const (
	usersTable          = "crm_users"
	dbUnavailableErrMsg = "failed to get crm database connection: %w"
)

// SQLDirectory reads users from the crm_users table of the named "crm" database.
// Passwords are stored as bcrypt hashes.
type SQLDirectory struct {
	getDB func(context.Context) (database.Interface, error)
}

// NewSQLDirectory expects getDB to wrap deps.DBByName(ctx, "crm").
func NewSQLDirectory(getDB func(context.Context) (database.Interface, error)) *SQLDirectory {
	return &SQLDirectory{getDB: getDB}
}

func (d *SQLDirectory) FindByCredentials(ctx context.Context, email, password string) (*domain.DirectoryUser, error) {
	db, err := d.getDB(ctx)
	if err != nil {
		return nil, fmt.Errorf(dbUnavailableErrMsg, err)
	}

	qb := database.NewQueryBuilder(database.PostgreSQL)
	f := qb.Filter()
	query, args, err := qb.Select("merchant_user_id", "email", "phone", "first_name", "last_name", "loyalty_tier", "password").
		From(usersTable).
		Where(f.Eq("email", email)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var user domain.DirectoryUser
	row := db.QueryRow(ctx, query, args...)
	err = row.Scan(
		&user.MerchantUserID,
		&user.Email,
		&user.Phone,
		&user.FirstName,
		&user.LastName,
		&user.LoyaltyTier,
		&user.Password,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUserNotFound
	}
	user.Password = ""

	return &user, nil
}

func (d *SQLDirectory) Exists(ctx context.Context, merchantUserID string) (bool, error) {
	db, err := d.getDB(ctx)
	if err != nil {
		return false, fmt.Errorf(dbUnavailableErrMsg, err)
	}

	qb := database.NewQueryBuilder(database.PostgreSQL)
	f := qb.Filter()
	query, args, err := qb.Select("COUNT(*)").
		From(usersTable).
		Where(f.Eq("merchant_user_id", merchantUserID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}
