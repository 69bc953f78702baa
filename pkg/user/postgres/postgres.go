// Package postgres implements a PostgreSQL-backed user repository.
package postgres

import (
	"context"
	"database/sql"

	"deliveryflow/pkg/user"
)

const (
	queryCreate = `
		INSERT INTO users (name, email, password_hash, notifications)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	querySelect = `
		SELECT id, name, email, password_hash, phone, birth_date, address,
		       city, country, postal_code, notifications, created_at, updated_at
		FROM users`

	queryUpdate = `
		UPDATE users SET
			name        = COALESCE($1, name),
			phone       = COALESCE($2, phone),
			birth_date  = COALESCE($3, birth_date),
			address     = COALESCE($4, address),
			city        = COALESCE($5, city),
			country     = COALESCE($6, country),
			postal_code = COALESCE($7, postal_code),
			updated_at  = NOW()
		WHERE id = $8
		RETURNING id, name, email, password_hash, phone, birth_date, address,
		          city, country, postal_code, notifications, created_at, updated_at`
)

// Repository persists users in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository. The caller must ensure the users
// table exists.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and fills in its id and timestamps.
func (r *Repository) Create(ctx context.Context, u *user.User) error {
	return r.db.QueryRowContext(ctx, queryCreate,
		u.Name, u.Email, u.PasswordHash, u.Notifications,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// GetByID retrieves a user by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, querySelect+" WHERE id = $1", id))
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, querySelect+" WHERE email = $1", email))
}

// Update applies the non-nil fields of up and returns the updated user.
func (r *Repository) Update(ctx context.Context, id int64, up user.Update) (*user.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, queryUpdate,
		up.Name, up.Phone, up.BirthDate, up.Address, up.City, up.Country, up.PostalCode, id,
	))
}

func (r *Repository) scanOne(row *sql.Row) (*user.User, error) {
	u := &user.User{}
	var (
		phone      sql.NullString
		birthDate  sql.NullTime
		address    sql.NullString
		city       sql.NullString
		country    sql.NullString
		postalCode sql.NullString
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&phone, &birthDate, &address, &city, &country, &postalCode,
		&u.Notifications, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		u.Phone = &phone.String
	}
	if birthDate.Valid {
		u.BirthDate = &birthDate.Time
	}
	if address.Valid {
		u.Address = &address.String
	}
	if city.Valid {
		u.City = &city.String
	}
	if country.Valid {
		u.Country = &country.String
	}
	if postalCode.Valid {
		u.PostalCode = &postalCode.String
	}
	return u, nil
}
