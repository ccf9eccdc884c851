// Package handler exposes credential issuance and verification over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Goodnessmbakara/BlockVerify/internal/credential/models"
	credservice "github.com/Goodnessmbakara/BlockVerify/internal/credential/service"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/httputil"
	"github.com/Goodnessmbakara/BlockVerify/internal/platform/middleware"
	dErrors "github.com/Goodnessmbakara/BlockVerify/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

// Service defines the credential operations used by the handler.
type Service interface {
	Issue(ctx context.Context, req models.IssueRequest) (*models.IssuedCredential, error)
	Verify(ctx context.Context, hash string) (*models.VerificationResult, error)
}

// Handler wires credential endpoints to the credential service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a credential handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterIssue mounts the issuance endpoint. Callers guard it with the
// issuer auth middleware; verification stays public.
func (h *Handler) RegisterIssue(r chi.Router) {
	r.Post("/credentials/issue", h.HandleIssue)
}

// RegisterVerify mounts the public verification endpoint.
func (h *Handler) RegisterVerify(r chi.Router) {
	r.Get("/credentials/verify/{hash}", h.HandleVerify)
}

// IssueResponse is the response body for credential issuance.
type IssueResponse struct {
	CredentialID   string    `json:"credential_id"`
	StudentID      string    `json:"student_id"`
	UniversityID   int64     `json:"university_id"`
	CredentialType string    `json:"credential_type"`
	IssuedAt       time.Time `json:"issued_at"`
	Hash           string    `json:"hash"`
	TransactionID  string    `json:"transaction_id"`
	Simulated      bool      `json:"simulated"`
}

// ProofResponse is the ledger evidence attached to real-mode verifications.
type ProofResponse struct {
	TransactionID string    `json:"transaction_id"`
	Slot          uint64    `json:"slot"`
	BlockTime     time.Time `json:"block_time"`
	Confirmations uint64    `json:"confirmations"`
	Finalized     bool      `json:"finalized"`
}

// VerifyResponse is the response body for credential verification.
type VerifyResponse struct {
	Valid          bool           `json:"valid"`
	StudentID      string         `json:"student_id,omitempty"`
	UniversityID   int64          `json:"university_id,omitempty"`
	CredentialType string         `json:"credential_type,omitempty"`
	IssuedAt       *time.Time     `json:"issued_at,omitempty"`
	Hash           string         `json:"hash,omitempty"`
	Simulated      bool           `json:"simulated"`
	Proof          *ProofResponse `json:"proof,omitempty"`
	Reason         string         `json:"reason,omitempty"`
}

// HandleIssue handles POST /credentials/issue requests.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.IssueRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	issued, err := h.service.Issue(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue credential",
			"request_id", requestID,
			"issuer_id", middleware.GetIssuerID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, IssueResponse{
		CredentialID:   issued.Credential.ID,
		StudentID:      issued.Credential.StudentID,
		UniversityID:   issued.Credential.UniversityID,
		CredentialType: string(issued.Credential.CredentialType),
		IssuedAt:       issued.Credential.IssuedAt.UTC(),
		Hash:           issued.Credential.Hash,
		TransactionID:  issued.Credential.TxRef.String(),
		Simulated:      issued.Simulated,
	})
}

// HandleVerify handles GET /credentials/verify/{hash} requests. Negative
// verdicts keep their domain status codes but carry a structured body with
// the rejection reason.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash := chi.URLParam(r, "hash")

	result, err := h.service.Verify(ctx, hash)
	if err != nil {
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			switch domainErr.Code {
			case dErrors.CodeNotFound, dErrors.CodeTransactionNotFound, dErrors.CodeHashMismatch, dErrors.CodeMalformedHash:
				httputil.WriteJSON(w, httputil.DomainCodeToHTTPStatus(domainErr.Code), VerifyResponse{
					Valid:  false,
					Reason: string(domainErr.Code),
				})
				return
			}
		}

		h.logger.ErrorContext(ctx, "failed to verify credential",
			"request_id", middleware.GetRequestID(ctx),
			"hash", hash,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	issuedAt := result.IssuedAt.UTC()
	response := VerifyResponse{
		Valid:          true,
		StudentID:      result.StudentID,
		UniversityID:   result.UniversityID,
		CredentialType: string(result.CredentialType),
		IssuedAt:       &issuedAt,
		Hash:           result.Hash,
		Simulated:      result.SimulatedOnly,
	}
	if result.Proof != nil {
		response.Proof = &ProofResponse{
			TransactionID: result.Proof.TransactionID,
			Slot:          result.Proof.Slot,
			BlockTime:     result.Proof.BlockTime,
			Confirmations: result.Proof.Confirmations,
			Finalized:     result.Proof.Finalized,
		}
	}

	httputil.WriteJSON(w, http.StatusOK, response)
}

var _ Service = (*credservice.Service)(nil)
