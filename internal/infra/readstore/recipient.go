package readstore

import (
	"context"
	"errors"
	"strings"

	"mentorhub-notify/internal/infra"
	"mentorhub-notify/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecipientReadStore struct {
	pool *pgxpool.Pool
}

func NewRecipientReadStore(pool *pgxpool.Pool) *RecipientReadStore {
	return &RecipientReadStore{pool: pool}
}

const findRecipientSQL = `
SELECT id, email, phone, first_name, last_name
FROM users
WHERE id = $1`

func (s *RecipientReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.RecipientView, error) {
	row := s.pool.QueryRow(ctx, findRecipientSQL, id)

	var (
		view                queries.RecipientView
		firstName, lastName string
	)
	err := row.Scan(&view.ID, &view.Email, &view.Phone, &firstName, &lastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("recipient not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find recipient", err)
	}

	view.DisplayName = strings.TrimSpace(firstName + " " + lastName)
	return &view, nil
}
