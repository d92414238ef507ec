package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/meal-mate-devs/payouts/internal"
)

type DBUserStorage struct {
	db             *sql.DB
	insertUser     *sql.Stmt
	getUserByLogin *sql.Stmt
	getChefIDByID  *sql.Stmt
}

var _ UserStorage = (*DBUserStorage)(nil)

func NewDBUserStorage(db *sql.DB) (*DBUserStorage, error) {
	stmtInsertUser, err := db.Prepare("INSERT INTO users (login, password, chef_id) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING RETURNING id")
	if err != nil {
		return nil, err
	}
	stmtGetUserByLogin, err := db.Prepare("SELECT id, password FROM users WHERE login = $1")
	if err != nil {
		return nil, err
	}
	stmtGetChefIDByID, err := db.Prepare("SELECT chef_id FROM users WHERE id = $1")
	if err != nil {
		return nil, err
	}

	return &DBUserStorage{
		db:             db,
		insertUser:     stmtInsertUser,
		getUserByLogin: stmtGetUserByLogin,
		getChefIDByID:  stmtGetChefIDByID,
	}, nil
}

func (d *DBUserStorage) Close() {
	d.insertUser.Close()
	d.getUserByLogin.Close()
	d.getChefIDByID.Close()
}

func (d *DBUserStorage) AddUser(ctx context.Context, login string, hashedPass string, chefID internal.ChefID) (internal.UserID, error) {
	row := d.insertUser.QueryRowContext(ctx, login, hashedPass, chefID)
	var id internal.UserID
	err := row.Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAlreadyExists
	} else if err != nil {
		return 0, fmt.Errorf("insert user error: %w", err)
	}
	return id, nil
}

func (d *DBUserStorage) GetUser(ctx context.Context, login string) (internal.UserID, string, error) {
	row := d.getUserByLogin.QueryRowContext(ctx, login)
	var id internal.UserID
	var pass string
	err := row.Scan(&id, &pass)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrNotFound
	} else if err != nil {
		return 0, "", fmt.Errorf("get user error: %w", err)
	}
	return id, pass, nil
}

func (d *DBUserStorage) GetChefID(ctx context.Context, userID internal.UserID) (internal.ChefID, error) {
	row := d.getChefIDByID.QueryRowContext(ctx, userID)
	var chefID internal.ChefID
	err := row.Scan(&chefID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("get chef id error: %w", err)
	}
	return chefID, nil
}
