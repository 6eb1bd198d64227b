package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/service"
)

// Handler exposes the ledger service over HTTP. It only parses requests and
// serializes responses; every operation takes the authenticated username as
// an explicit argument to the service.
type Handler struct {
	svc        *service.TransactionService
	jwtManager *auth.JWTManager
}

func NewHandler(svc *service.TransactionService, jwtManager *auth.JWTManager) *Handler {
	return &Handler{svc: svc, jwtManager: jwtManager}
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
}

// IssueToken exchanges a username for a bearer token. Identity only; there
// are no credentials to verify.
// POST /api/v1/auth/token
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	token, err := h.jwtManager.Generate(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type transactionRequest struct {
	Description   string `json:"description"`
	Amount        string `json:"amount" binding:"required"`
	PayerUsername string `json:"payerUsername"`
	PayeeUsername string `json:"payeeUsername" binding:"required"`
	Timestamp     int64  `json:"timestamp"`
}

// RecordTransaction records a payment made by one participant on behalf of
// another.
// POST /api/v1/transactions
func (h *Handler) RecordTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	tx, err := h.svc.RecordTransaction(c.Request.Context(), &models.Transaction{
		Description:   req.Description,
		Amount:        amount,
		PayerUsername: req.PayerUsername,
		PayeeUsername: req.PayeeUsername,
		Timestamp:     req.Timestamp,
	}, Username(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record transaction"})
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// ListTransactions returns the caller's transactions, newest first.
// GET /api/v1/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	txs, err := h.svc.ListTransactionsForUser(c.Request.Context(), Username(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, txs)
}

// GetTransaction returns a single transaction by id.
// GET /api/v1/transactions/:id
func (h *Handler) GetTransaction(c *gin.Context) {
	tx, err := h.svc.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.JSON(http.StatusOK, tx)
}

// DeleteTransaction deletes a transaction, pruning its linked obligations
// and recording the pre-deletion snapshot in the audit log.
// DELETE /api/v1/transactions/:id
func (h *Handler) DeleteTransaction(c *gin.Context) {
	if err := h.svc.DeleteTransaction(c.Request.Context(), c.Param("id"), Username(c)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBalances returns net balances for every participant.
// GET /api/v1/balances
func (h *Handler) ListBalances(c *gin.Context) {
	balances, err := h.svc.ComputeBalances(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute balances"})
		return
	}
	c.JSON(http.StatusOK, balances)
}

// MyBalance returns the caller's net balance.
// GET /api/v1/balances/me
func (h *Handler) MyBalance(c *gin.Context) {
	balances, err := h.svc.ComputeBalancesForUser(c.Request.Context(), Username(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute balance"})
		return
	}
	c.JSON(http.StatusOK, balances)
}

// ListSettlements returns the minimal global payment plan.
// GET /api/v1/settlements
func (h *Handler) ListSettlements(c *gin.Context) {
	edges, err := h.svc.ComputeSettlements(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute settlements"})
		return
	}
	c.JSON(http.StatusOK, edges)
}

// MySettlements returns the caller's slice of the global payment plan.
// GET /api/v1/settlements/me
func (h *Handler) MySettlements(c *gin.Context) {
	edges, err := h.svc.ComputeSettlementsForUser(c.Request.Context(), Username(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute settlements"})
		return
	}
	c.JSON(http.StatusOK, edges)
}

// Instructions renders the caller's payment plan as human-readable strings.
// GET /api/v1/settlements/instructions
func (h *Handler) Instructions(c *gin.Context) {
	instructions, err := h.svc.OptimizeInstructionsForUser(c.Request.Context(), Username(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute instructions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instructions": instructions})
}

type snapshotRequest struct {
	NotifyOnly bool `json:"notifyOnly"`
}

// SaveSnapshot persists the caller's current settlement position as
// obligations plus one audit entry.
// POST /api/v1/settlements/snapshot
func (h *Handler) SaveSnapshot(c *gin.Context) {
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	entry, err := h.svc.SaveSettlementSnapshot(c.Request.Context(), Username(c), req.NotifyOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save snapshot"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type directSettleRequest struct {
	FromUser string `json:"fromUser" binding:"required"`
	ToUser   string `json:"toUser" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
}

// SettleDirect records an ad-hoc settlement not backed by a stored
// obligation.
// POST /api/v1/settlements/direct
func (h *Handler) SettleDirect(c *gin.Context) {
	var req directSettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	err = h.svc.SettleDirect(c.Request.Context(), req.FromUser, req.ToUser, amount, Username(c))
	switch {
	case errors.Is(err, service.ErrInvalidSettlement):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record settlement"})
	default:
		c.Status(http.StatusNoContent)
	}
}

type notifyRequest struct {
	FromUser      string `json:"fromUser" binding:"required"`
	ToUser        string `json:"toUser" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	TransactionID string `json:"transactionId"`
}

// CreateNotifyOnly creates a single notify-only obligation for an explicit
// debt without importing the creator's history.
// POST /api/v1/obligations/notify
func (h *Handler) CreateNotifyOnly(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	ob, err := h.svc.CreateNotifyOnlyObligation(c.Request.Context(), req.FromUser, req.ToUser, amount, req.TransactionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create obligation"})
		return
	}
	c.JSON(http.StatusCreated, ob)
}

// ListObligations returns the caller's obligations, settled or not.
// GET /api/v1/obligations
func (h *Handler) ListObligations(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListObligations(c.Request.Context(), Username(c)))
}

// ListUnsettled returns the caller's unsettled debts.
// GET /api/v1/obligations/unsettled
func (h *Handler) ListUnsettled(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListUnsettledObligations(c.Request.Context(), Username(c)))
}

// Settle confirms settlement of an obligation. Only a party to the
// obligation may confirm; the transition is one way.
// POST /api/v1/obligations/:id/settle
func (h *Handler) Settle(c *gin.Context) {
	err := h.svc.MarkSettled(c.Request.Context(), c.Param("id"), Username(c))
	switch {
	case errors.Is(err, service.ErrObligationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to settle obligation"})
	default:
		c.Status(http.StatusNoContent)
	}
}

// Notifications returns the caller's actionable settlements, owe and
// receive, from a fresh netting run.
// GET /api/v1/notifications
func (h *Handler) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListNotifications(c.Request.Context(), Username(c)))
}

// Compare contrasts the caller's raw counterparties with their optimized
// notification view.
// GET /api/v1/notifications/compare
func (h *Handler) Compare(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.CompareRawVsOptimized(c.Request.Context(), Username(c)))
}

// History returns the full audit trail, newest first.
// GET /api/v1/history
func (h *Handler) History(c *gin.Context) {
	entries, err := h.svc.ListHistory(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list history"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// MyHistory returns audit entries involving the caller.
// GET /api/v1/history/me
func (h *Handler) MyHistory(c *gin.Context) {
	entries, err := h.svc.ListHistoryForUser(c.Request.Context(), Username(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list history"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
