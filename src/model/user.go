package model

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User owns trades, tags, notes and upload history. The ID is an opaque uuid string.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// CreateUser inserts u, assigning a new uuid and timestamps. Password must already be hashed.
func (u *User) CreateUser(db Querier) error {
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := db.Exec(`
	INSERT INTO users (id, username, email, password, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.Password, u.CreatedAt, u.UpdatedAt)
	return err
}

const userColumns = `id, username, email, password, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func GetUserByID(db Querier, id string) (*User, error) {
	return scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func GetUserByUsername(db Querier, username string) (*User, error) {
	return scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func GetUserByEmail(db Querier, email string) (*User, error) {
	return scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// DeleteUser removes the user; trades, tags, notes and upload history cascade.
func DeleteUser(db Querier, id string) error {
	res, err := db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash for the user.
func UpdatePassword(db Querier, id, hashedPassword string) error {
	res, err := db.Exec(`UPDATE users SET password = ?, updated_at = ? WHERE id = ?`, hashedPassword, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error updating password for user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
