package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Goodnessmbakara/BlockVerify/internal/credential/models"
)

// PostgresStore persists credentials in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, credential models.Credential) (models.Credential, error) {
	credential.ID = uuid.New().String()
	query := `
		INSERT INTO credentials (id, student_id, university_id, credential_type, issued_at, nonce, hash, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		credential.ID,
		credential.StudentID,
		credential.UniversityID,
		string(credential.CredentialType),
		credential.IssuedAt,
		credential.Nonce,
		credential.Hash,
		credential.TxRef.String(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Credential{}, ErrDuplicateHash
		}
		return models.Credential{}, fmt.Errorf("create credential: %w", err)
	}
	return credential, nil
}

func (s *PostgresStore) FindByHash(ctx context.Context, hash string) (models.Credential, error) {
	query := `
		SELECT id, student_id, university_id, credential_type, issued_at, nonce, hash, transaction_id
		FROM credentials
		WHERE hash = $1
	`
	var (
		credential models.Credential
		credType   string
		issuedAt   time.Time
		txID       string
	)
	row := s.db.QueryRowContext(ctx, query, hash)
	err := row.Scan(
		&credential.ID,
		&credential.StudentID,
		&credential.UniversityID,
		&credType,
		&issuedAt,
		&credential.Nonce,
		&credential.Hash,
		&txID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Credential{}, ErrNotFound
		}
		return models.Credential{}, fmt.Errorf("find credential by hash: %w", err)
	}

	credential.CredentialType = models.CredentialType(credType)
	// Stored timestamps are canonical at millisecond precision; anything finer
	// would break commitment reproduction.
	credential.IssuedAt = issuedAt.UTC().Truncate(time.Millisecond)
	credential.TxRef = models.ParseTransactionRef(txID)
	return credential, nil
}

// Ping checks database reachability for the liveness monitor.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
