package storage

import (
	"context"
	"database/sql"
	"errors"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/meal-mate-devs/payouts/internal"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type UserStorage interface {
	// AddUser returns ErrAlreadyExists when either the login or the chef is taken.
	AddUser(ctx context.Context, login string, hashedPass string, chefID internal.ChefID) (internal.UserID, error)
	GetUser(ctx context.Context, login string) (internal.UserID, string, error)
	GetChefID(ctx context.Context, userID internal.UserID) (internal.ChefID, error)
	Close()
}

func DoMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://./migrations", "postgres", driver)
	if err != nil {
		return err
	}
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
