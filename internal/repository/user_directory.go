package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillswap/skillswap-server/internal/model"
	"github.com/skillswap/skillswap-server/internal/repository/base"
)

// UserDirectory reads the marketplace users table. The booking core
// only checks existence and standing; user data is owned elsewhere.
type UserDirectory struct {
	*base.Repository
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{Repository: base.NewRepository(pool)}
}

// Resolve looks a user up by id, returning (nil, nil) when unknown.
func (r *UserDirectory) Resolve(ctx context.Context, id uuid.UUID) (*model.DirectoryUser, error) {
	query := `SELECT id, status, role FROM users WHERE id = $1`

	var u model.DirectoryUser
	err := r.QueryRow(ctx, query, id).Scan(&u.ID, &u.Status, &u.Role)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	return &u, nil
}
