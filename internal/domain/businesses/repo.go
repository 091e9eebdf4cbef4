package businesses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bizledger/internal/apperr"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, ownerID int64, name, industry string) (*Business, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO businesses (owner_id, name, industry)
		VALUES ($1,$2,$3)
		RETURNING id, owner_id, name, industry, created_at
	`, ownerID, name, industry)

	var b Business
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Industry, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Business, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, COALESCE(industry,''), created_at
		FROM businesses WHERE id = $1
	`, id)

	var b Business
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Industry, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// ListForUser возвращает бизнесы, где пользователь владелец или участник,
// с его ролью для каждого.
func (r *Repo) ListForUser(ctx context.Context, userID int64) ([]BusinessWithRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.owner_id, b.name, COALESCE(b.industry,''), b.created_at,
		       CASE WHEN b.owner_id = $1 THEN 'owner' ELSE m.role END
		FROM businesses b
		LEFT JOIN business_members m ON m.business_id = b.id AND m.user_id = $1
		WHERE b.owner_id = $1 OR m.user_id = $1
		ORDER BY b.created_at, b.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BusinessWithRole
	for rows.Next() {
		var b BusinessWithRole
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Industry, &b.CreatedAt, &b.Role); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ResolveRole — единственная точка определения роли (владелец → membership → none).
// Для несуществующего бизнеса возвращает apperr.ErrNotFound: граница доступа
// обязана различать "нет бизнеса" и "нет прав".
func (r *Repo) ResolveRole(ctx context.Context, userID, businessID int64) (Role, error) {
	b, err := r.GetByID(ctx, businessID)
	if err != nil {
		return RoleNone, err
	}
	if b == nil {
		return RoleNone, apperr.ErrNotFound
	}
	if b.OwnerID == userID {
		return RoleOwner, nil
	}

	row := r.pool.QueryRow(ctx, `
		SELECT role FROM business_members WHERE business_id = $1 AND user_id = $2
	`, businessID, userID)
	var role Role
	if err := row.Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RoleNone, nil
		}
		return RoleNone, err
	}
	return role, nil
}

func (r *Repo) AddMember(ctx context.Context, businessID, userID int64, role Role) (*Member, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO business_members (business_id, user_id, role)
		VALUES ($1,$2,$3)
		RETURNING id, business_id, user_id, role
	`, businessID, userID, string(role))

	var m Member
	if err := row.Scan(&m.ID, &m.BusinessID, &m.UserID, &m.Role); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.ErrDuplicateMembership
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) ListMembers(ctx context.Context, businessID int64) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.business_id, m.user_id, u.username, m.role
		FROM business_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.business_id = $1
		ORDER BY m.id
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.BusinessID, &m.UserID, &m.Username, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteMember(ctx context.Context, businessID, userID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM business_members WHERE business_id = $1 AND user_id = $2
	`, businessID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
