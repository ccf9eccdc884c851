package store

import (
	"context"

	"github.com/Goodnessmbakara/BlockVerify/internal/credential/models"
	pkgerrors "github.com/Goodnessmbakara/BlockVerify/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "credential not found")

	// ErrDuplicateHash guards the one-record-per-hash invariant.
	ErrDuplicateHash = pkgerrors.New(pkgerrors.CodeConflict, "credential hash already exists")
)

// Store is the record store contract consumed by the pipelines. Credentials
// are created once and read by hash; nothing in the core updates or deletes.
type Store interface {
	Create(ctx context.Context, credential models.Credential) (models.Credential, error)
	FindByHash(ctx context.Context, hash string) (models.Credential, error)
	Ping(ctx context.Context) error
}
