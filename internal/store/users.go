package store

import (
	"context"
	"fmt"

	"github.com/aretw0/quill/pkg/domain"
)

// AddUser inserts a user and returns its ID.
func (s *Store) AddUser(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, create_time) VALUES (?, ?)`,
		name, s.now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("add user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add user: %w", err)
	}
	return id, nil
}

// QueryUsers returns users with exactly the given name, or every user when name is empty,
// ordered by ID.
func (s *Store) QueryUsers(ctx context.Context, name string) ([]domain.User, error) {
	query := `SELECT id, name, create_time FROM users`
	var args []any
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.CreateTime); err != nil {
			return nil, fmt.Errorf("query users: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return users, nil
}

// UpdateUser renames a user and returns the number of rows affected.
func (s *Store) UpdateUser(ctx context.Context, id int64, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return 0, fmt.Errorf("update user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update user %d: %w", id, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("update user %d: %w", id, domain.ErrUserNotFound)
	}
	return n, nil
}

// DeleteUser removes a user and returns the number of rows affected (0 when absent).
func (s *Store) DeleteUser(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete user %d: %w", id, err)
	}
	return res.RowsAffected()
}
