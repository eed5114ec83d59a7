package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tripmates/backend/internal/db"
	"github.com/tripmates/backend/internal/models"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for the user directory.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user profile.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.UserProfile) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, email, password_hash, display_name, photo_url, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, user.ID, user.Email, user.Password, user.DisplayName, user.PhotoURL, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByEmail fetches a user profile by email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.UserProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, password_hash, display_name, photo_url, is_active, created_at, updated_at
        FROM users
        WHERE email = $1
    `, email)

	return scanUser(row, "select user by email")
}

// FindByID fetches a user profile by id.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.UserProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, password_hash, display_name, photo_url, is_active, created_at, updated_at
        FROM users
        WHERE id = $1
    `, id)

	return scanUser(row, "select user by id")
}

// Search returns profiles whose display name or email starts with the query,
// excluding the given user id. Matching is case-insensitive.
func (r *PostgresUserRepository) Search(ctx context.Context, query, excludeID string, limit int) ([]models.UserProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if limit <= 0 {
		limit = 20
	}

	rows, err := conn.Query(ctx, `
        SELECT id, email, password_hash, display_name, photo_url, is_active, created_at, updated_at
        FROM users
        WHERE id <> $2
          AND (lower(display_name) LIKE lower($1) || '%' OR lower(email) LIKE lower($1) || '%')
        ORDER BY display_name, email
        LIMIT $3
    `, query, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.UserProfile
	for rows.Next() {
		var user models.UserProfile
		if err := rows.Scan(&user.ID, &user.Email, &user.Password, &user.DisplayName, &user.PhotoURL, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Update modifies an existing user profile.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.UserProfile) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET email = $2, password_hash = $3, display_name = $4, photo_url = $5, updated_at = $6
        WHERE id = $1
    `, user.ID, user.Email, user.Password, user.DisplayName, user.PhotoURL, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetActive flips the presence flag on a profile.
func (r *PostgresUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET is_active = $2, updated_at = NOW()
        WHERE id = $1
    `, id, active)
	if err != nil {
		return fmt.Errorf("update user active flag: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(row pgx.Row, op string) (models.UserProfile, error) {
	var user models.UserProfile
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.DisplayName, &user.PhotoURL, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserProfile{}, ErrNotFound
		}
		return models.UserProfile{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// PostgresRequestRepository provides PostgreSQL-backed persistence for friend requests.
type PostgresRequestRepository struct {
	pool db.Pool
}

// NewPostgresRequestRepository constructs a friend request repository backed by PostgreSQL.
func NewPostgresRequestRepository(pool db.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{pool: pool}
}

// Insert persists a new pending friend request. The id is generated here and
// sent_at is assigned by the database at write time.
func (r *PostgresRequestRepository) Insert(ctx context.Context, from, to string) (models.FriendRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	request := models.FriendRequest{
		ID:     uuid.NewString(),
		From:   from,
		To:     to,
		Status: models.RequestStatusPending,
	}

	row := conn.QueryRow(ctx, `
        INSERT INTO friend_requests (id, from_id, to_id, status)
        VALUES ($1, $2, $3, $4)
        RETURNING sent_at
    `, request.ID, request.From, request.To, request.Status)
	if err := row.Scan(&request.SentAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return models.FriendRequest{}, ErrConflict
			case "23503":
				return models.FriendRequest{}, ErrNotFound
			}
		}
		return models.FriendRequest{}, fmt.Errorf("insert friend request: %w", err)
	}

	request.SentAt = request.SentAt.UTC()
	return request, nil
}

// FindByID loads a friend request by id.
func (r *PostgresRequestRepository) FindByID(ctx context.Context, requestID string) (models.FriendRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, from_id, to_id, status, sent_at
        FROM friend_requests
        WHERE id = $1
    `, requestID)

	var request models.FriendRequest
	if err := row.Scan(&request.ID, &request.From, &request.To, &request.Status, &request.SentAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.FriendRequest{}, ErrNotFound
		}
		return models.FriendRequest{}, fmt.Errorf("select friend request: %w", err)
	}

	request.SentAt = request.SentAt.UTC()
	return request, nil
}

// Delete removes a friend request record.
func (r *PostgresRequestRepository) Delete(ctx context.Context, requestID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM friend_requests
        WHERE id = $1
    `, requestID)
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListPendingBetween returns pending requests between the pair in either direction.
func (r *PostgresRequestRepository) ListPendingBetween(ctx context.Context, userA, userB string) ([]models.FriendRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, from_id, to_id, status, sent_at
        FROM friend_requests
        WHERE status = $3
          AND ((from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1))
        ORDER BY sent_at
    `, userA, userB, models.RequestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("query friend requests between pair: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListIncoming returns pending requests addressed to the user, newest first.
func (r *PostgresRequestRepository) ListIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return r.listPendingFor(ctx, "to_id", userID)
}

// ListOutgoing returns pending requests sent by the user, newest first.
func (r *PostgresRequestRepository) ListOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return r.listPendingFor(ctx, "from_id", userID)
}

func (r *PostgresRequestRepository) listPendingFor(ctx context.Context, column, userID string) ([]models.FriendRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, from_id, to_id, status, sent_at
        FROM friend_requests
        WHERE `+column+` = $1 AND status = $2
        ORDER BY sent_at DESC
    `, userID, models.RequestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("query pending friend requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	for rows.Next() {
		var request models.FriendRequest
		if err := rows.Scan(&request.ID, &request.From, &request.To, &request.Status, &request.SentAt); err != nil {
			return nil, fmt.Errorf("scan friend request: %w", err)
		}
		request.SentAt = request.SentAt.UTC()
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friend requests: %w", err)
	}

	return requests, nil
}

// PostgresFriendSetRepository persists one friend-set row per user.
type PostgresFriendSetRepository struct {
	pool db.Pool
}

// NewPostgresFriendSetRepository constructs a friend-set repository backed by PostgreSQL.
func NewPostgresFriendSetRepository(pool db.Pool) *PostgresFriendSetRepository {
	return &PostgresFriendSetRepository{pool: pool}
}

// Get loads a user's friend set. A missing row reads as an empty set.
func (r *PostgresFriendSetRepository) Get(ctx context.Context, userID string) (models.FriendSet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.FriendSet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT friend_ids, added_at
        FROM friends
        WHERE user_id = $1
    `, userID)

	set := models.FriendSet{UserID: userID, AddedAt: make(map[string]time.Time)}
	var addedAt []byte
	if err := row.Scan(&set.FriendIDs, &addedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return set, nil
		}
		return models.FriendSet{}, fmt.Errorf("select friend set: %w", err)
	}

	if len(addedAt) > 0 {
		if err := json.Unmarshal(addedAt, &set.AddedAt); err != nil {
			return models.FriendSet{}, fmt.Errorf("decode added_at map: %w", err)
		}
	}

	return set, nil
}

// Put writes the whole friend-set row back, replacing the previous contents.
// Overlapping Put calls for the same user are last-write-wins.
func (r *PostgresFriendSetRepository) Put(ctx context.Context, set models.FriendSet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	addedAt, err := json.Marshal(set.AddedAt)
	if err != nil {
		return fmt.Errorf("encode added_at map: %w", err)
	}

	friendIDs := set.FriendIDs
	if friendIDs == nil {
		friendIDs = []string{}
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO friends (user_id, friend_ids, added_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id)
        DO UPDATE SET friend_ids = EXCLUDED.friend_ids, added_at = EXCLUDED.added_at
    `, set.UserID, friendIDs, addedAt)
	if err != nil {
		return fmt.Errorf("upsert friend set: %w", err)
	}

	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ RequestStore = (*PostgresRequestRepository)(nil)
var _ FriendSetStore = (*PostgresFriendSetRepository)(nil)
