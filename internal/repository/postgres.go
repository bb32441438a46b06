package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astrochat/astrochat-backend/internal/domain"
)

// Compile-time interface assertions.
var (
	_ UserStore      = (*PostgresUserStore)(nil)
	_ ChallengeStore = (*PostgresChallengeStore)(nil)
	_ ChatStore      = (*PostgresChatStore)(nil)
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// PostgresUserStore implements UserStore on pgx.
type PostgresUserStore struct {
	db *pgxpool.Pool
}

func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: pool}
}

const selectUserSQL = `SELECT id, email, password_hash, phone, google_subject, verified,
	name, birth_date, birth_time, birth_place, created_at, updated_at
FROM users`

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findOne(ctx, selectUserSQL+` WHERE email = $1`, email)
}

func (s *PostgresUserStore) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	return s.findOne(ctx, selectUserSQL+` WHERE phone = $1`, phone)
}

func (s *PostgresUserStore) FindByGoogleSubject(ctx context.Context, subject string) (domain.User, error) {
	return s.findOne(ctx, selectUserSQL+` WHERE google_subject = $1`, subject)
}

func (s *PostgresUserStore) findOne(ctx context.Context, query string, arg any) (domain.User, error) {
	row := s.db.QueryRow(ctx, query, arg)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

const insertUserSQL = `INSERT INTO users (id, email, password_hash, phone, google_subject, verified,
	name, birth_date, birth_time, birth_place, created_at, updated_at)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $11)
RETURNING id, email, password_hash, phone, google_subject, verified,
	name, birth_date, birth_time, birth_place, created_at, updated_at`

func (s *PostgresUserStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()

	row := s.db.QueryRow(ctx, insertUserSQL,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.GoogleSubject,
		user.Verified,
		user.Profile.Name,
		user.Profile.BirthDate,
		user.Profile.BirthTime,
		user.Profile.BirthPlace,
		now,
	)
	created, err := scanUser(row)
	if isUniqueViolation(err) {
		return domain.User{}, domain.ErrConflict
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *PostgresUserStore) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET verified = true, updated_at = $2 WHERE id = $1`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const updateProfileSQL = `UPDATE users SET
	name = COALESCE(NULLIF($2, ''), name),
	birth_date = COALESCE(NULLIF($3, ''), birth_date),
	birth_time = COALESCE(NULLIF($4, ''), birth_time),
	birth_place = COALESCE(NULLIF($5, ''), birth_place),
	updated_at = $6
WHERE id = $1`

func (s *PostgresUserStore) UpdateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile) error {
	tag, err := s.db.Exec(ctx, updateProfileSQL,
		userID,
		profile.Name,
		profile.BirthDate,
		profile.BirthTime,
		profile.BirthPlace,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user                   domain.User
		email, phone, subject  *string
		name, bdate            *string
		btime, bplace          *string
	)
	err := row.Scan(
		&user.ID,
		&email,
		&user.PasswordHash,
		&phone,
		&subject,
		&user.Verified,
		&name,
		&bdate,
		&btime,
		&bplace,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	user.Email = deref(email)
	user.Phone = deref(phone)
	user.GoogleSubject = deref(subject)
	user.Profile = domain.Profile{
		Name:       deref(name),
		BirthDate:  deref(bdate),
		BirthTime:  deref(btime),
		BirthPlace: deref(bplace),
	}
	return user, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PostgresChallengeStore keeps verification challenges in the
// challenges table, one row per identifier.
type PostgresChallengeStore struct {
	db *pgxpool.Pool
}

func NewPostgresChallengeStore(pool *pgxpool.Pool) *PostgresChallengeStore {
	return &PostgresChallengeStore{db: pool}
}

const upsertChallengeSQL = `INSERT INTO challenges (kind, identifier, code, attempts, issued_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (kind, identifier) DO UPDATE SET
	code = EXCLUDED.code,
	attempts = EXCLUDED.attempts,
	issued_at = EXCLUDED.issued_at,
	expires_at = EXCLUDED.expires_at`

func (s *PostgresChallengeStore) Save(ctx context.Context, challenge domain.Challenge) error {
	_, err := s.db.Exec(ctx, upsertChallengeSQL,
		string(challenge.Kind),
		challenge.Identifier,
		challenge.Code,
		challenge.Attempts,
		challenge.IssuedAt,
		challenge.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save challenge: %w", err)
	}
	return nil
}

func (s *PostgresChallengeStore) Get(ctx context.Context, kind domain.IdentifierKind, identifier string) (domain.Challenge, error) {
	var challenge domain.Challenge
	var kindStr string
	err := s.db.QueryRow(ctx,
		`SELECT kind, identifier, code, attempts, issued_at, expires_at
		 FROM challenges WHERE kind = $1 AND identifier = $2`,
		string(kind), identifier,
	).Scan(
		&kindStr,
		&challenge.Identifier,
		&challenge.Code,
		&challenge.Attempts,
		&challenge.IssuedAt,
		&challenge.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Challenge{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}
	challenge.Kind = domain.IdentifierKind(kindStr)
	return challenge, nil
}

func (s *PostgresChallengeStore) Delete(ctx context.Context, kind domain.IdentifierKind, identifier string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM challenges WHERE kind = $1 AND identifier = $2`,
		string(kind), identifier,
	)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}

// PostgresChatStore is the durable chat log.
type PostgresChatStore struct {
	db *pgxpool.Pool
}

func NewPostgresChatStore(pool *pgxpool.Pool) *PostgresChatStore {
	return &PostgresChatStore{db: pool}
}

func (s *PostgresChatStore) Append(ctx context.Context, entry domain.ChatEntry) (domain.ChatEntry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO chat_entries (id, user_id, message, response, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.UserID, entry.Message, entry.Response, entry.CreatedAt,
	)
	if err != nil {
		return domain.ChatEntry{}, fmt.Errorf("append chat entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresChatStore) ListFor(ctx context.Context, userID uuid.UUID) ([]domain.ChatEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, message, response, created_at
		 FROM chat_entries WHERE user_id = $1 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chat entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.ChatEntry{}
	for rows.Next() {
		var entry domain.ChatEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Message, &entry.Response, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chat entries: %w", err)
	}
	return entries, nil
}
