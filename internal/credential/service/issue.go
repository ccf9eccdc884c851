package service

import (
	"context"
	"time"

	"github.com/Goodnessmbakara/BlockVerify/internal/credential/commitment"
	"github.com/Goodnessmbakara/BlockVerify/internal/credential/models"
	"github.com/Goodnessmbakara/BlockVerify/internal/ledger"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/middleware"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/tracer"
	dErrors "github.com/Goodnessmbakara/BlockVerify/pkg/domain-errors"
	"github.com/Goodnessmbakara/BlockVerify/pkg/validation"
)

// Issue runs the issuance pipeline: Validate, Commit, FundsCheck, LedgerWrite,
// SimulatedFallback, Persist. Anchor failures are absorbed into the simulated
// fallback; only invalid input and storage failures fail the request.
func (s *Service) Issue(ctx context.Context, req models.IssueRequest) (result *models.IssuedCredential, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssue)
	defer func() { span.End(err) }()

	if err = validation.Validate(req); err != nil {
		s.recordIssuanceFailure(dErrors.CodeInvalidInput)
		return nil, err
	}

	nonce, err := commitment.NewNonce()
	if err != nil {
		s.recordIssuanceFailure(dErrors.CodeInternal)
		return nil, err
	}

	// Single canonical clock read: the same instant feeds the commitment and
	// the persisted field, so the stored record always reproduces its hash.
	// Millisecond precision survives JSON and SQL round-trips.
	issuedAt := s.now().UTC().Truncate(time.Millisecond)

	hash := commitment.Digest(commitment.Input{
		StudentID:      req.StudentID,
		UniversityID:   req.UniversityID,
		CredentialType: req.CredentialType,
		IssuedAt:       issuedAt,
		Nonce:          nonce,
	})
	span.SetAttributes(tracer.String(tracer.AttrHash, hash))

	ref, err := s.resolveAnchor(ctx, hash)
	if err != nil {
		s.recordIssuanceFailure(dErrors.CodeInternal)
		return nil, err
	}

	credential := models.Credential{
		StudentID:      req.StudentID,
		UniversityID:   req.UniversityID,
		CredentialType: models.CredentialType(req.CredentialType),
		IssuedAt:       issuedAt,
		Nonce:          nonce,
		Hash:           hash,
		TxRef:          ref,
	}

	stored, err := s.store.Create(ctx, credential)
	if err != nil {
		// A confirmed ledger write is not rolled back; the anchor is immutable
		// by construction. The credential still does not exist until stored.
		s.recordIssuanceFailure(dErrors.CodeStorageError)
		return nil, dErrors.Wrap(err, dErrors.CodeStorageError, "failed to persist credential")
	}

	span.SetAttributes(tracer.Bool(tracer.AttrSimulated, ref.IsSimulated()))
	if s.metrics != nil {
		s.metrics.RecordIssuance(ref.IsSimulated())
	}

	return &models.IssuedCredential{Credential: stored, Simulated: ref.IsSimulated()}, nil
}

// resolveAnchor runs the anchor attempt and converts its outcome into a
// transaction reference, generating the simulated token when needed.
func (s *Service) resolveAnchor(ctx context.Context, hash string) (models.TransactionRef, error) {
	outcome := s.anchor(ctx, hash)

	switch outcome.Status {
	case WriteConfirmed:
		if s.logger != nil {
			s.logger.InfoContext(ctx, "credential anchored on ledger",
				"hash", hash,
				"transaction_id", outcome.Signature,
				"request_id", middleware.GetRequestID(ctx),
			)
		}
		return models.RealRef(outcome.Signature), nil

	case WriteUnfunded:
		if s.logger != nil {
			s.logger.WarnContext(ctx, "signing account unfunded, anchoring in simulated mode",
				"hash", hash,
				"min_balance", s.minBalance,
				"request_id", middleware.GetRequestID(ctx),
			)
		}

	default: // WriteFailed
		if s.metrics != nil {
			s.metrics.RecordLedgerWriteFailure()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "ledger write failed, anchoring in simulated mode",
				"hash", hash,
				"error", outcome.Reason,
				"request_id", middleware.GetRequestID(ctx),
			)
		}
	}

	token, err := commitment.NewNonce()
	if err != nil {
		return models.TransactionRef{}, err
	}
	return models.SimulatedRef(token), nil
}

// anchor performs the FundsCheck and LedgerWrite steps. At most one write is
// attempted; every failure mode maps to an explicit outcome, never an error.
func (s *Service) anchor(ctx context.Context, hash string) LedgerWriteOutcome {
	keypair, err := s.keys.Keypair()
	if err != nil {
		return LedgerWriteOutcome{Status: WriteFailed, Reason: err}
	}

	balance, err := s.ledger.Balance(ctx, keypair.Address())
	if err != nil {
		return LedgerWriteOutcome{Status: WriteFailed, Reason: err}
	}
	if balance < s.minBalance {
		return LedgerWriteOutcome{Status: WriteUnfunded}
	}

	blockhash, err := s.ledger.LatestBlockhash(ctx)
	if err != nil {
		return LedgerWriteOutcome{Status: WriteFailed, Reason: err}
	}

	tx, err := ledger.NewMemoTransaction(keypair.PrivateKey, blockhash, []byte(hash))
	if err != nil {
		return LedgerWriteOutcome{Status: WriteFailed, Reason: err}
	}

	_, span := s.tracer.Start(ctx, tracer.SpanLedgerWrite)
	start := time.Now()
	signature, err := s.ledger.SubmitTransaction(ctx, tx)
	span.End(err)
	if s.metrics != nil {
		s.metrics.ObserveLedgerWriteDuration(time.Since(start).Seconds())
	}
	if err != nil {
		return LedgerWriteOutcome{Status: WriteFailed, Reason: err}
	}
	return LedgerWriteOutcome{Status: WriteConfirmed, Signature: signature}
}

func (s *Service) recordIssuanceFailure(code dErrors.Code) {
	if s.metrics != nil {
		s.metrics.RecordIssuanceFailure(string(code))
	}
}
