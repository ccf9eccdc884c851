package service

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Goodnessmbakara/BlockVerify/internal/credential/commitment"
	"github.com/Goodnessmbakara/BlockVerify/internal/credential/models"
	"github.com/Goodnessmbakara/BlockVerify/internal/credential/store"
	"github.com/Goodnessmbakara/BlockVerify/internal/ledger"
	"github.com/Goodnessmbakara/BlockVerify/internal/wallet"
	dErrors "github.com/Goodnessmbakara/BlockVerify/pkg/domain-errors"
)

// stubLedger is a test double for ledger.Client.
type stubLedger struct {
	balance      uint64
	balanceErr   error
	blockhashErr error
	submitFn     func(ctx context.Context, tx *ledger.Transaction) (string, error)
	getFn        func(ctx context.Context, signature string) (*ledger.TransactionInfo, error)

	submitCalls atomic.Int32
}

func (l *stubLedger) Balance(_ context.Context, _ string) (uint64, error) {
	return l.balance, l.balanceErr
}

func (l *stubLedger) LatestBlockhash(_ context.Context) (string, error) {
	if l.blockhashErr != nil {
		return "", l.blockhashErr
	}
	return "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N", nil
}

func (l *stubLedger) SubmitTransaction(ctx context.Context, tx *ledger.Transaction) (string, error) {
	l.submitCalls.Add(1)
	if l.submitFn != nil {
		return l.submitFn(ctx, tx)
	}
	return tx.Signature(), nil
}

func (l *stubLedger) GetTransaction(ctx context.Context, signature string) (*ledger.TransactionInfo, error) {
	if l.getFn != nil {
		return l.getFn(ctx, signature)
	}
	return nil, ledger.ErrNotFound
}

// recordingStore wraps the in-memory store with call counting and fault injection.
type recordingStore struct {
	inner     *store.InMemoryStore
	createErr error
	findCalls atomic.Int32
}

func newRecordingStore() *recordingStore {
	return &recordingStore{inner: store.NewInMemoryStore()}
}

func (s *recordingStore) Create(ctx context.Context, credential models.Credential) (models.Credential, error) {
	if s.createErr != nil {
		return models.Credential{}, s.createErr
	}
	return s.inner.Create(ctx, credential)
}

func (s *recordingStore) FindByHash(ctx context.Context, hash string) (models.Credential, error) {
	s.findCalls.Add(1)
	return s.inner.FindByHash(ctx, hash)
}

func (s *recordingStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

type ServiceSuite struct {
	suite.Suite

	keys   *wallet.Manager
	store  *recordingStore
	ledger *stubLedger
	now    time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.keys = wallet.NewManager("")
	s.store = newRecordingStore()
	s.ledger = &stubLedger{}
	s.now = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func (s *ServiceSuite) newService() *Service {
	return NewService(s.store, s.ledger, s.keys, 5_000,
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *ServiceSuite) issueRequest() models.IssueRequest {
	return models.IssueRequest{StudentID: "S1", UniversityID: 7, CredentialType: "degree"}
}

// fundAndAnchor configures the stub ledger so writes succeed and fetches
// return the memo instruction recorded by the submitted transaction.
func (s *ServiceSuite) fundAndAnchor() {
	s.ledger.balance = 1_000_000
	var anchored []byte
	s.ledger.submitFn = func(_ context.Context, tx *ledger.Transaction) (string, error) {
		msg := tx.Message()
		// Memo payload sits at the end of the message, after the 4-byte
		// instruction block header (count, program index, accounts, length).
		anchored = msg[104:]
		return tx.Signature(), nil
	}
	s.ledger.getFn = func(_ context.Context, signature string) (*ledger.TransactionInfo, error) {
		return &ledger.TransactionInfo{
			Signature:     signature,
			Slot:          429451,
			BlockTime:     s.now.Add(2 * time.Second),
			Confirmations: 12,
			Instructions: []ledger.Instruction{
				{ProgramID: ledger.MemoProgramID, Data: anchored},
			},
		}, nil
	}
}

// --- Issuance ---

func (s *ServiceSuite) TestIssueUnfundedFallsBackToSimulated() {
	s.ledger.balance = 4_999 // below threshold

	issued, err := s.newService().Issue(context.Background(), s.issueRequest())
	s.Require().NoError(err)
	s.Require().True(issued.Simulated)
	s.Require().True(strings.HasPrefix(issued.Credential.TxRef.String(), models.SimulatedPrefix))
	s.Require().Equal(int32(0), s.ledger.submitCalls.Load(), "no write attempt when unfunded")
}

func (s *ServiceSuite) TestIssueWriteFailureAbsorbedIntoSimulated() {
	s.ledger.balance = 1_000_000
	s.ledger.submitFn = func(_ context.Context, _ *ledger.Transaction) (string, error) {
		return "", context.DeadlineExceeded
	}

	issued, err := s.newService().Issue(context.Background(), s.issueRequest())
	s.Require().NoError(err, "write failures must not fail the issuance")
	s.Require().True(issued.Simulated)
	s.Require().Equal(int32(1), s.ledger.submitCalls.Load(), "at most one write attempt")
}

func (s *ServiceSuite) TestIssueFundedAnchorsOnLedger() {
	s.fundAndAnchor()

	issued, err := s.newService().Issue(context.Background(), s.issueRequest())
	s.Require().NoError(err)
	s.Require().False(issued.Simulated)
	s.Require().False(issued.Credential.TxRef.IsSimulated())
	s.Require().NotEmpty(issued.Credential.TxRef.Signature())
	s.Require().Equal(int32(1), s.ledger.submitCalls.Load())
}

func (s *ServiceSuite) TestIssueRejectsInvalidInput() {
	svc := s.newService()

	_, err := svc.Issue(context.Background(), models.IssueRequest{
		StudentID: "S1", UniversityID: 7, CredentialType: "badge",
	})
	s.Require().Error(err)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.Require().Equal(int32(0), s.ledger.submitCalls.Load(), "no ledger interaction on invalid input")

	_, err = s.store.FindByHash(context.Background(), strings.Repeat("0", 64))
	s.Require().Error(err, "nothing persisted on invalid input")
}

func (s *ServiceSuite) TestIssueSurfacesStorageError() {
	s.ledger.balance = 4_999
	s.store.createErr = dErrors.New(dErrors.CodeStorageError, "insert failed")

	_, err := s.newService().Issue(context.Background(), s.issueRequest())
	s.Require().Error(err)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeStorageError))
}

func (s *ServiceSuite) TestIssuedHashReproducibleFromStoredRecord() {
	s.ledger.balance = 4_999

	issued, err := s.newService().Issue(context.Background(), s.issueRequest())
	s.Require().NoError(err)

	stored, err := s.store.FindByHash(context.Background(), issued.Credential.Hash)
	s.Require().NoError(err)

	recomputed := commitment.Digest(commitment.Input{
		StudentID:      stored.StudentID,
		UniversityID:   stored.UniversityID,
		CredentialType: string(stored.CredentialType),
		IssuedAt:       stored.IssuedAt,
		Nonce:          stored.Nonce,
	})
	s.Require().Equal(stored.Hash, recomputed, "stored record must reproduce its own commitment")
}

func (s *ServiceSuite) TestIssueNoncesNeverRepeat() {
	s.ledger.balance = 4_999
	svc := s.newService()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		issued, err := svc.Issue(context.Background(), s.issueRequest())
		s.Require().NoError(err)
		s.Require().False(seen[issued.Credential.Nonce])
		seen[issued.Credential.Nonce] = true
	}
}

// --- Verification ---

func (s *ServiceSuite) TestVerifySimulatedRoundTrip() {
	s.ledger.balance = 0
	svc := s.newService()

	issued, err := svc.Issue(context.Background(), s.issueRequest())
	s.Require().NoError(err)

	result, err := svc.Verify(context.Background(), issued.Credential.Hash)
	s.Require().NoError(err)
	s.Require().True(result.SimulatedOnly)
	s.Require().Nil(result.Proof, "simulated anchors carry no ledger proof")
	s.Require().Equal("S1", result.StudentID)
	s.Require().Equal(issued.Credential.IssuedAt, result.IssuedAt)
}

func (s *ServiceSuite) TestVerifyRealRoundTrip() {
	s.fundAndAnchor()
	svc := s.newService()

	issued, err := svc.Issue(context.Background(), s.issueRequest())
	s.Require().NoError(err)

	result, err := svc.Verify(context.Background(), issued.Credential.Hash)
	s.Require().NoError(err)
	s.Require().False(result.SimulatedOnly)
	s.Require().NotNil(result.Proof)
	s.Require().Equal(issued.Credential.TxRef.Signature(), result.Proof.TransactionID)
	s.Require().Equal(uint64(429451), result.Proof.Slot)
	s.Require().Equal(uint64(12), result.Proof.Confirmations)
}

func (s *ServiceSuite) TestVerifyUnknownHashRejected() {
	svc := s.newService()

	_, err := svc.Verify(context.Background(), strings.Repeat("ab", 32))
	s.Require().Error(err)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestVerifyMalformedHashSkipsLookup() {
	svc := s.newService()

	for _, bad := range []string{"", "xyz", strings.Repeat("A", 64), strings.Repeat("a", 63)} {
		_, err := svc.Verify(context.Background(), bad)
		s.Require().Error(err)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeMalformedHash), "input %q", bad)
	}
	s.Require().Equal(int32(0), s.store.findCalls.Load(), "malformed hashes are rejected before lookup")
}

func (s *ServiceSuite) TestVerifyTamperedAnchorRejected() {
	s.fundAndAnchor()
	svc := s.newService()

	issued, err := svc.Issue(context.Background(), s.issueRequest())
	s.Require().NoError(err)

	// The ledger now reports a different memo payload than the one committed.
	s.ledger.getFn = func(_ context.Context, signature string) (*ledger.TransactionInfo, error) {
		return &ledger.TransactionInfo{
			Signature:    signature,
			Instructions: []ledger.Instruction{{ProgramID: ledger.MemoProgramID, Data: []byte(strings.Repeat("0", 64))}},
		}, nil
	}

	_, err = svc.Verify(context.Background(), issued.Credential.Hash)
	s.Require().Error(err)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeHashMismatch))
}

func (s *ServiceSuite) TestVerifyMissingTransactionRejected() {
	s.fundAndAnchor()
	svc := s.newService()

	issued, err := svc.Issue(context.Background(), s.issueRequest())
	s.Require().NoError(err)

	s.ledger.getFn = func(_ context.Context, _ string) (*ledger.TransactionInfo, error) {
		return nil, ledger.ErrNotFound
	}

	_, err = svc.Verify(context.Background(), issued.Credential.Hash)
	s.Require().Error(err)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeTransactionNotFound))
}

func (s *ServiceSuite) TestVerifyLedgerOutageSurfaced() {
	s.fundAndAnchor()
	svc := s.newService()

	issued, err := svc.Issue(context.Background(), s.issueRequest())
	s.Require().NoError(err)

	s.ledger.getFn = func(_ context.Context, _ string) (*ledger.TransactionInfo, error) {
		return nil, context.DeadlineExceeded
	}

	_, err = svc.Verify(context.Background(), issued.Credential.Hash)
	s.Require().Error(err)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))

	// Not cached as a negative result: once the ledger is back, the same
	// verification succeeds.
	s.fundAndAnchorRestore(issued.Credential.Hash)
	result, err := svc.Verify(context.Background(), issued.Credential.Hash)
	s.Require().NoError(err)
	s.Require().False(result.SimulatedOnly)
}

// fundAndAnchorRestore points the stub ledger back at a healthy response
// carrying the given hash as memo payload.
func (s *ServiceSuite) fundAndAnchorRestore(hash string) {
	s.ledger.getFn = func(_ context.Context, signature string) (*ledger.TransactionInfo, error) {
		return &ledger.TransactionInfo{
			Signature:    signature,
			Slot:         429452,
			Instructions: []ledger.Instruction{{ProgramID: ledger.MemoProgramID, Data: []byte(hash)}},
		}, nil
	}
}
