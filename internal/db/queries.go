package db

import (
	"fmt"
)

// DefaultCredits is the balance a user starts with, and the floor the
// daily refill tops accounts back up to. Must match the credits column
// default in schema.sql.
const DefaultCredits = 500

// DefaultModel is the tier assigned on first contact. Must match the
// model column default in schema.sql.
const DefaultModel = "gpt-3.5-turbo"

type User struct {
	ID        string `json:"user_id"`
	Model     string `json:"model"`
	Credits   int64  `json:"credits"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// GetUser loads a user account, creating it with defaults on first contact.
func (d *DB) GetUser(userID string) (User, error) {
	if _, err := d.conn.Exec(
		"INSERT OR IGNORE INTO users (user_id) VALUES (?)", userID,
	); err != nil {
		return User{}, fmt.Errorf("creating user %s: %w", userID, err)
	}
	var u User
	err := d.conn.QueryRow(
		"SELECT user_id, model, credits, created_at, updated_at FROM users WHERE user_id = ?",
		userID,
	).Scan(&u.ID, &u.Model, &u.Credits, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("loading user %s: %w", userID, err)
	}
	return u, nil
}

// DebitCredits subtracts amount from a user's balance and returns the new
// balance. The relative UPDATE is atomic inside sqlite, so two concurrent
// pipelines for the same user cannot lose a write. The balance may dip
// slightly below zero when budgeting rounding leaves slack; that drift is
// accepted rather than rejected.
func (d *DB) DebitCredits(userID string, amount int64) (int64, error) {
	return d.adjustCredits(userID, -amount)
}

// AddCredits adds amount to a user's balance and returns the new balance.
// Used to refund charges for answers that were never delivered.
func (d *DB) AddCredits(userID string, amount int64) (int64, error) {
	return d.adjustCredits(userID, amount)
}

func (d *DB) adjustCredits(userID string, delta int64) (int64, error) {
	res, err := d.conn.Exec(
		"UPDATE users SET credits = credits + ?, updated_at = datetime('now') WHERE user_id = ?",
		delta, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("adjusting credits for %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("adjusting credits for %s: %w", userID, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("adjusting credits: no such user %s", userID)
	}
	var balance int64
	if err := d.conn.QueryRow(
		"SELECT credits FROM users WHERE user_id = ?", userID,
	).Scan(&balance); err != nil {
		return 0, fmt.Errorf("reading balance for %s: %w", userID, err)
	}
	return balance, nil
}

// SetModel switches a user's model tier.
func (d *DB) SetModel(userID, model string) error {
	if _, err := d.conn.Exec(
		"INSERT OR IGNORE INTO users (user_id) VALUES (?)", userID,
	); err != nil {
		return fmt.Errorf("creating user %s: %w", userID, err)
	}
	if _, err := d.conn.Exec(
		"UPDATE users SET model = ?, updated_at = datetime('now') WHERE user_id = ?",
		model, userID,
	); err != nil {
		return fmt.Errorf("setting model for %s: %w", userID, err)
	}
	return nil
}

// TopUpBelow raises every balance under floor back up to floor and
// returns how many accounts were refilled.
func (d *DB) TopUpBelow(floor int64) (int64, error) {
	res, err := d.conn.Exec(
		"UPDATE users SET credits = ?, updated_at = datetime('now') WHERE credits < ?",
		floor, floor,
	)
	if err != nil {
		return 0, fmt.Errorf("refilling credits: %w", err)
	}
	return res.RowsAffected()
}
