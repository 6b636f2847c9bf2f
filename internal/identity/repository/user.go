package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tigabum/christian-platform/internal/common/cache"
	"github.com/tigabum/christian-platform/internal/common/db"
)

type UserRole string

const (
	UserRoleAsker     UserRole = "asker"
	UserRoleResponder UserRole = "responder"
	UserRoleAdmin     UserRole = "admin"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Expertise    []string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ResponderFilter narrows ListResponders results. Status accepts
// "active" or "inactive"; empty means both.
type ResponderFilter struct {
	Status    string
	Search    string
	Expertise string
}

type UserRepository interface {
	Create(ctx context.Context, tx db.Transaction, user *User) (int64, error)
	GetByID(ctx context.Context, tx db.Transaction, id int64) (*User, error)
	GetByEmail(ctx context.Context, tx db.Transaction, email string) (*User, error)
	ExistsByEmail(ctx context.Context, tx db.Transaction, email string) (bool, error)
	Update(ctx context.Context, tx db.Transaction, user *User) error
	UpdatePassword(ctx context.Context, tx db.Transaction, userID int64, newHash string) error
	ListResponders(ctx context.Context, filter ResponderFilter) ([]*User, error)
	CountResponders(ctx context.Context) (int64, error)
}

type MySQLUserRepository struct {
	dbProvider db.Provider
	cache      cache.Cache
	ttl        time.Duration
	emptyTTL   time.Duration
}

func NewUserRepository(provider db.Provider, cacheClient cache.Cache) UserRepository {
	return NewUserRepositoryWithTTL(provider, cacheClient, defaultUserCacheTTL, defaultUserCacheEmptyTTL)
}

func NewUserRepositoryWithTTL(provider db.Provider, cacheClient cache.Cache, ttl, emptyTTL time.Duration) UserRepository {
	if ttl <= 0 {
		ttl = defaultUserCacheTTL
	}
	if emptyTTL <= 0 {
		emptyTTL = defaultUserCacheEmptyTTL
	}
	return &MySQLUserRepository{
		dbProvider: provider,
		cache:      cacheClient,
		ttl:        ttl,
		emptyTTL:   emptyTTL,
	}
}

const userColumns = "id, name, email, password_hash, role, expertise, active, created_at, updated_at"

const (
	userInfoKeyPrefix  = "user:info:"
	userEmailKeyPrefix = "user:email:"

	defaultUserCacheTTL      = 30 * time.Minute
	defaultUserCacheEmptyTTL = 5 * time.Minute
)

func (r *MySQLUserRepository) Create(ctx context.Context, tx db.Transaction, user *User) (int64, error) {
	if user == nil {
		return 0, errors.New("user is nil")
	}

	role := user.Role
	if role == "" {
		role = UserRoleAsker
	}

	expertise, err := marshalExpertise(user.Expertise)
	if err != nil {
		return 0, err
	}

	query := "INSERT INTO users (name, email, password_hash, role, expertise, active) VALUES (?, ?, ?, ?, ?, ?)"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return 0, err
	}
	result, err := querier.Exec(ctx, query, user.Name, user.Email, user.PasswordHash, role, expertise, user.Active)
	if err != nil {
		if key, ok := db.UniqueViolation(err); ok {
			normalizedKey := strings.ToLower(strings.TrimSpace(key))
			if strings.Contains(normalizedKey, "email") {
				return 0, ErrEmailExists
			}
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	if r.cache != nil {
		user.ID = id
		user.Role = role
		r.setCache(ctx, user)
	}
	return id, nil
}

func (r *MySQLUserRepository) GetByID(ctx context.Context, tx db.Transaction, id int64) (*User, error) {
	if r.cache != nil && tx == nil {
		user, err := cache.GetWithCached[*User](
			ctx,
			r.cache,
			userInfoKey(id),
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(user *User) bool { return user == nil },
			marshalUser,
			unmarshalUser,
			func(ctx context.Context) (*User, error) {
				user, err := r.getByIDFromDB(ctx, nil, id)
				if err != nil {
					if errors.Is(err, ErrUserNotFound) {
						return nil, nil
					}
					return nil, err
				}
				return user, nil
			},
		)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		return user, nil
	}
	return r.getByIDFromDB(ctx, tx, id)
}

func (r *MySQLUserRepository) GetByEmail(ctx context.Context, tx db.Transaction, email string) (*User, error) {
	if r.cache != nil && tx == nil {
		user, err := cache.GetWithCached[*User](
			ctx,
			r.cache,
			userEmailKey(email),
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(user *User) bool { return user == nil },
			marshalUser,
			unmarshalUser,
			func(ctx context.Context) (*User, error) {
				user, err := r.getByEmailFromDB(ctx, nil, email)
				if err != nil {
					if errors.Is(err, ErrUserNotFound) {
						return nil, nil
					}
					return nil, err
				}
				return user, nil
			},
		)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		return user, nil
	}
	return r.getByEmailFromDB(ctx, tx, email)
}

func (r *MySQLUserRepository) ExistsByEmail(ctx context.Context, tx db.Transaction, email string) (bool, error) {
	query := "SELECT 1 FROM users WHERE email = ?"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return false, err
	}
	row := querier.QueryRow(ctx, query, email)
	var one int
	if err := row.Scan(&one); err != nil {
		if db.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *MySQLUserRepository) Update(ctx context.Context, tx db.Transaction, user *User) error {
	if user == nil {
		return errors.New("user is nil")
	}

	var email string
	if r.cache != nil {
		var err error
		email, err = r.getUserEmail(ctx, tx, user.ID)
		if err != nil {
			return err
		}
	}

	expertise, err := marshalExpertise(user.Expertise)
	if err != nil {
		return err
	}

	query := "UPDATE users SET name = ?, email = ?, expertise = ?, active = ?, updated_at = NOW() WHERE id = ?"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return err
	}
	result, err := querier.Exec(ctx, query, user.Name, user.Email, expertise, user.Active, user.ID)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return ErrEmailExists
		}
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	if r.cache != nil {
		r.deleteCache(ctx, user.ID, email)
		if user.Email != "" && user.Email != email {
			_ = r.cache.Del(ctx, userEmailKey(user.Email))
		}
	}
	return nil
}

func (r *MySQLUserRepository) UpdatePassword(ctx context.Context, tx db.Transaction, userID int64, newHash string) error {
	var email string
	if r.cache != nil {
		var err error
		email, err = r.getUserEmail(ctx, tx, userID)
		if err != nil {
			return err
		}
	}

	query := "UPDATE users SET password_hash = ?, updated_at = NOW() WHERE id = ?"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return err
	}
	result, err := querier.Exec(ctx, query, newHash, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	if r.cache != nil {
		r.deleteCache(ctx, userID, email)
	}
	return nil
}

func (r *MySQLUserRepository) ListResponders(ctx context.Context, filter ResponderFilter) ([]*User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE role = ?"
	args := []interface{}{UserRoleResponder}

	switch strings.ToLower(strings.TrimSpace(filter.Status)) {
	case "active":
		query += " AND active = 1"
	case "inactive":
		query += " AND active = 0"
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += " AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ?)"
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern, pattern)
	}
	if expertise := strings.TrimSpace(filter.Expertise); expertise != "" {
		query += " AND JSON_CONTAINS(expertise, JSON_QUOTE(?))"
		args = append(args, expertise)
	}
	query += " ORDER BY created_at DESC"

	querier, err := db.GetProviderQuerier(r.dbProvider, nil)
	if err != nil {
		return nil, err
	}
	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MySQLUserRepository) CountResponders(ctx context.Context) (int64, error) {
	query := "SELECT COUNT(*) FROM users WHERE role = ?"
	querier, err := db.GetProviderQuerier(r.dbProvider, nil)
	if err != nil {
		return 0, err
	}
	row := querier.QueryRow(ctx, query, UserRoleResponder)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MySQLUserRepository) getByIDFromDB(ctx context.Context, tx db.Transaction, id int64) (*User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return nil, err
	}
	row := querier.QueryRow(ctx, query, id)
	user, err := scanUser(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *MySQLUserRepository) getByEmailFromDB(ctx context.Context, tx db.Transaction, email string) (*User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return nil, err
	}
	row := querier.QueryRow(ctx, query, email)
	user, err := scanUser(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *MySQLUserRepository) getUserEmail(ctx context.Context, tx db.Transaction, userID int64) (string, error) {
	query := "SELECT email FROM users WHERE id = ?"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return "", err
	}
	row := querier.QueryRow(ctx, query, userID)
	var email string
	if err := row.Scan(&email); err != nil {
		if db.IsNoRows(err) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return email, nil
}

func (r *MySQLUserRepository) setCache(ctx context.Context, user *User) {
	if r.cache == nil || user == nil {
		return
	}

	data := marshalUser(user)
	if data == "" {
		return
	}

	_ = r.cache.Set(ctx, userInfoKey(user.ID), data, cache.JitterTTL(r.ttl))
	if user.Email != "" {
		_ = r.cache.Set(ctx, userEmailKey(user.Email), data, cache.JitterTTL(r.ttl))
	}
}

func (r *MySQLUserRepository) deleteCache(ctx context.Context, userID int64, email string) {
	if r.cache == nil {
		return
	}
	keys := make([]string, 0, 2)
	if userID != 0 {
		keys = append(keys, userInfoKey(userID))
	}
	if email != "" {
		keys = append(keys, userEmailKey(email))
	}
	if len(keys) == 0 {
		return
	}
	_ = r.cache.Del(ctx, keys...)
}

func userInfoKey(id int64) string {
	return fmt.Sprintf("%s%d", userInfoKeyPrefix, id)
}

func userEmailKey(email string) string {
	return userEmailKeyPrefix + strings.ToLower(email)
}

func marshalUser(user *User) string {
	payload, err := json.Marshal(user)
	if err != nil {
		return ""
	}
	return string(payload)
}

func unmarshalUser(data string) (*User, error) {
	if data == "" {
		return nil, nil
	}
	var user User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func marshalExpertise(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	payload, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal expertise failed: %w", err)
	}
	return sql.NullString{String: string(payload), Valid: true}, nil
}

func scanUser(scanner db.Scanner) (*User, error) {
	var user User
	var expertise sql.NullString

	err := scanner.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&expertise,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expertise.Valid && expertise.String != "" {
		if err := json.Unmarshal([]byte(expertise.String), &user.Expertise); err != nil {
			return nil, fmt.Errorf("decode expertise failed: %w", err)
		}
	}
	return &user, nil
}
