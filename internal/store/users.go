package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/model"
)

// CreateUser inserts a new account. Email is stored lower-cased. Returns
// ErrUserExists when the email or username is taken.
func (s *Store) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	username := strings.TrimSpace(u.Username)

	taken, err := s.identityTaken(ctx, email, username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}

	created := &model.User{
		ID:               uuid.New().String(),
		Username:         username,
		Email:            email,
		Password:         u.Password,
		Qualifications:   u.Qualifications,
		FieldsOfInterest: u.FieldsOfInterest,
		CreatedAt:        time.Now(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password, qualifications, fields_of_interest, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.Username, created.Email, created.Password,
		created.Qualifications, created.FieldsOfInterest, created.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", logging.Field{Key: "username", Value: created.Username})
	return created, nil
}

// GetUserByEmail fetches a user by (case-insensitive) email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

// GetUserByID fetches a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password, qualifications, fields_of_interest, created_at
		 FROM users WHERE `+where, arg)

	var u model.User
	var createdAt int64
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Qualifications, &u.FieldsOfInterest, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	return &u, nil
}

// UpdateUser persists profile changes. Uniqueness of the new email/username
// against other accounts is enforced here, returning ErrUserExists.
func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	email := strings.ToLower(strings.TrimSpace(u.Email))

	taken, err := s.identityTaken(ctx, email, u.Username, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrUserExists
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password = ?, qualifications = ?, fields_of_interest = ?
		 WHERE id = ?`,
		u.Username, email, u.Password, u.Qualifications, u.FieldsOfInterest, u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// identityTaken reports whether email or username belongs to a different
// account than excludeID.
func (s *Store) identityTaken(ctx context.Context, email, username, excludeID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE (email = ? OR username = ?) AND id != ?`,
		email, username, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("identity lookup: %w", err)
	}
	return n > 0, nil
}
