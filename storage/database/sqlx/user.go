package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/user"
)

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB) *userRepository {
	return &userRepository{db: db}
}

// orderable whitelists the columns filters may sort on.
var orderable = map[string]bool{
	"name":       true,
	"username":   true,
	"email":      true,
	"created_at": true,
	"last_login": true,
}

func orderBy(orderings []core.DBOrdering) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if orderable[ord.Field] {
			clauses = append(clauses, ord.String())
		}
	}
	if len(clauses) == 0 {
		return ` ORDER BY created_at`
	}
	return ` ORDER BY ` + strings.Join(clauses, ", ")
}

// dbUser is the users table row.
type dbUser struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (repo *userRepository) row(usr user.User) dbUser {
	return dbUser{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        usr.Roles,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo *userRepository) unrow(u dbUser) user.User {
	return user.User{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		IsActive:     u.IsActive.Ptr(),
		Roles:        u.Roles,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLogin:    u.LastLogin.Time,
	}
}

func (repo *userRepository) unrowSlice(rows []dbUser) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, u := range rows {
		users = append(users, repo.unrow(u))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo *userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT username, email FROM users WHERE (LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2))`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		query += ` AND NOT (id = ANY($3))`
		args = append(args, pq.Array(ids))
	}

	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	for _, u := range rows {
		if strings.EqualFold(u.Username, username) {
			return user.ErrUsernameExists
		}
		if strings.EqualFold(u.Email, email) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.row(usr)
	query := `
INSERT INTO users (id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []dbUser
	query := `SELECT * FROM users ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "retrieving users")
	}
	return repo.unrowSlice(rows), nil
}

func (repo *userRepository) getUser(ctx context.Context, query string, args ...interface{}) (user.User, error) {
	var row dbUser
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "retrieving user")
	}
	return repo.unrow(row), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM users WHERE LOWER(username) = LOWER($1)`, username)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	query := `SELECT * FROM users WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)`
	return repo.getUser(ctx, query, username)
}

func (repo *userRepository) QueryUsersByRolePrefix(ctx context.Context, prefix string) ([]user.User, error) {
	var rows []dbUser
	query := `
SELECT * FROM users
WHERE is_active = TRUE AND EXISTS (SELECT 1 FROM unnest(roles) AS role WHERE role LIKE $1)
ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, query, prefix+"%"); err != nil {
		return nil, errors.Wrap(err, "retrieving users by role")
	}
	return repo.unrowSlice(rows), nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	query := `SELECT * FROM users WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += fmt.Sprintf(` AND (name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)`, p)
	}
	if filter.Roles != nil {
		query += fmt.Sprintf(` AND roles && %s`, arg(pq.Array(filter.Roles)))
	}
	if filter.IsActive != nil {
		query += fmt.Sprintf(` AND is_active = %s`, arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		query += fmt.Sprintf(` AND created_at >= %s`, arg(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		query += fmt.Sprintf(` AND created_at <= %s`, arg(filter.CreatedTo))
	}
	query += orderBy(filter.Ordering)

	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return repo.unrowSlice(rows), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	sets := make([]string, 0, 8)
	var args []interface{}
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if usr.Name != "" {
		set("name", usr.Name)
	}
	if usr.Username != "" {
		set("username", usr.Username)
	}
	if usr.Email != "" {
		set("email", usr.Email)
	}
	if usr.Roles != nil {
		set("roles", pq.Array(usr.Roles))
	}
	if usr.PasswordHash != nil {
		set("password_hash", usr.PasswordHash)
	}
	if !usr.UpdatedAt.IsZero() {
		set("updated_at", usr.UpdatedAt.UTC())
	}
	if !usr.LastLogin.IsZero() {
		set("last_login", usr.LastLogin.UTC())
	}
	if isActive != nil {
		set("is_active", *isActive)
	}
	if len(sets) == 0 {
		return repo.GetUserByID(ctx, usr.ID)
	}

	args = append(args, usr.ID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING *`, strings.Join(sets, ", "), len(args))

	var row dbUser
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user")
	}
	return repo.unrow(row), nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
