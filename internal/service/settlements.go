package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/metrics"
	"github.com/splitledger/splitledger/internal/models"
)

// Notifications splits a user's current actionable settlements into what
// they owe and what they should receive. Both lists come from a fresh
// netting run, never from historical obligations.
type Notifications struct {
	Owe     []models.Obligation `json:"owe"`
	Receive []models.Obligation `json:"receive"`
}

// Comparison contrasts a user's raw counterparties with their optimized
// notifications; Savings counts the payments netting made unnecessary.
type Comparison struct {
	RawOwePeople     []string            `json:"rawOwePeople"`
	RawReceivePeople []string            `json:"rawReceivePeople"`
	OptimizedOwe     []models.Obligation `json:"optimizedOwe"`
	OptimizedReceive []models.Obligation `json:"optimizedReceive"`
	RawCount         int                 `json:"rawCount"`
	OptimizedCount   int                 `json:"optimizedCount"`
	Savings          int                 `json:"savings"`
}

// SaveSettlementSnapshot runs the netting optimizer globally, persists one
// obligation per edge touching the user, and appends a PERSONAL_SETTLEMENT
// audit entry containing the full structured snapshot. The audit entry is
// the primary write; obligation persistence is best-effort.
func (s *TransactionService) SaveSettlementSnapshot(ctx context.Context, username string, notifyOnly bool) (*models.AuditEntry, error) {
	norm := normalizeUsername(username)

	edges, err := s.ComputeSettlements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute settlements: %w", err)
	}

	var personal []models.SettlementEdge
	totalGive, totalReceive := decimal.Zero, decimal.Zero
	for _, e := range edges {
		switch norm {
		case e.From:
			personal = append(personal, e)
			totalGive = totalGive.Add(e.Amount)
		case e.To:
			personal = append(personal, e)
			totalReceive = totalReceive.Add(e.Amount)
		}
	}

	now := time.Now().Unix()
	snapshot := models.SettlementSnapshot{
		SnapshotAt:   now,
		Username:     norm,
		TotalGive:    totalGive,
		TotalReceive: totalReceive,
		Entries:      personal,
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	entry := &models.AuditEntry{
		Action:      models.AuditActionPersonalSettlement,
		Payload:     string(payload),
		PerformedBy: norm,
		Timestamp:   now,
	}
	if err := s.store.SaveAuditEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	metrics.SnapshotsSaved.Inc()

	for _, e := range personal {
		ob := &models.Obligation{
			FromUser:            e.From,
			ToUser:              e.To,
			Amount:              e.Amount,
			NotifyOnly:          notifyOnly,
			RecipientRegistered: s.isRegistered(ctx, e.To),
			CreatedAt:           now,
		}
		if err := s.store.SaveObligation(ctx, ob); err != nil {
			slog.Warn("failed to persist snapshot obligation",
				"from", e.From, "to", e.To, "error", err)
		}
	}

	return entry, nil
}

// CreateNotifyOnlyObligation creates a single notify-only entry for an
// explicit (from, to, amount) without snapshotting global history. Used to
// alert an added participant without importing the creator's history into
// their account.
func (s *TransactionService) CreateNotifyOnlyObligation(ctx context.Context, fromUser, toUser string, amount decimal.Decimal, transactionID string) (*models.Obligation, error) {
	fromUser = normalizeUsername(fromUser)
	toUser = normalizeUsername(toUser)
	ob := &models.Obligation{
		FromUser:            fromUser,
		ToUser:              toUser,
		Amount:              amount,
		TransactionID:       transactionID,
		FromTransaction:     transactionID != "",
		NotifyOnly:          true,
		RecipientRegistered: s.isRegistered(ctx, toUser),
	}
	if err := s.store.SaveObligation(ctx, ob); err != nil {
		slog.Warn("failed to create notify-only obligation",
			"from", fromUser, "to", toUser, "error", err)
		return nil, err
	}
	return ob, nil
}

// ListObligations returns every obligation involving the user, settled or
// not, deduplicated and annotated with contact details. Failures downgrade
// to an empty list; the tracker favors availability over completeness.
func (s *TransactionService) ListObligations(ctx context.Context, username string) []models.Obligation {
	norm := normalizeUsername(username)
	if norm == "" {
		return nil
	}

	obs, err := s.store.ListObligationsByUser(ctx, norm)
	if err != nil {
		slog.Warn("failed to list obligations", "username", norm, "error", err)
		return nil
	}

	obs = dedupeObligations(obs)
	s.attachContactDetails(ctx, obs)
	return obs
}

// ListUnsettledObligations returns unsettled obligations where the user is
// the debtor, newest first.
func (s *TransactionService) ListUnsettledObligations(ctx context.Context, username string) []models.Obligation {
	norm := normalizeUsername(username)
	if norm == "" {
		return nil
	}

	obs, err := s.store.ListUnsettledByDebtor(ctx, norm)
	if err != nil {
		slog.Warn("failed to list unsettled obligations", "username", norm, "error", err)
		return nil
	}
	return obs
}

// ListNotifications computes the user's actionable settlements: a fresh
// netting run, minus edges already confirmed settled, split into owe and
// receive. Receive entries whose counterparty has no registered account are
// suppressed; owe entries always show.
func (s *TransactionService) ListNotifications(ctx context.Context, username string) Notifications {
	result := Notifications{}
	norm := normalizeUsername(username)
	if norm == "" {
		return result
	}

	edges, err := s.ComputeSettlements(ctx)
	if err != nil {
		slog.Warn("failed to compute settlements for notifications", "username", norm, "error", err)
		return result
	}

	var settled []models.Obligation
	stored, err := s.store.ListObligationsByUser(ctx, norm)
	if err != nil {
		slog.Warn("failed to load settled obligations", "username", norm, "error", err)
	} else {
		for _, ob := range stored {
			if ob.Settled {
				settled = append(settled, ob)
			}
		}
	}

	now := time.Now().Unix()
	for _, edge := range edges {
		if settledMatch(settled, edge) {
			continue
		}

		switch {
		case strings.EqualFold(norm, edge.From):
			result.Owe = append(result.Owe, models.Obligation{
				FromUser:            edge.From,
				ToUser:              edge.To,
				Amount:              edge.Amount,
				RecipientRegistered: s.isRegistered(ctx, edge.To),
				CreatedAt:           now,
			})
		case strings.EqualFold(norm, edge.To):
			result.Receive = append(result.Receive, models.Obligation{
				FromUser:            edge.From,
				ToUser:              edge.To,
				Amount:              edge.Amount,
				RecipientRegistered: s.isRegistered(ctx, edge.From),
				CreatedAt:           now,
			})
		}
	}

	s.attachContactDetails(ctx, result.Owe)
	s.attachContactDetails(ctx, result.Receive)

	// No actionable notification for an unregistered counterparty.
	registered := result.Receive[:0]
	for _, ob := range result.Receive {
		if ob.RecipientRegistered {
			registered = append(registered, ob)
		}
	}
	result.Receive = registered

	return result
}

// settledMatch reports whether an edge exactly matches an already-settled
// obligation: both usernames case-insensitively, amount numerically.
func settledMatch(settled []models.Obligation, edge models.SettlementEdge) bool {
	for _, ob := range settled {
		if strings.EqualFold(ob.FromUser, edge.From) &&
			strings.EqualFold(ob.ToUser, edge.To) &&
			ob.Amount.Equal(edge.Amount) {
			return true
		}
	}
	return false
}

// CompareRawVsOptimized reports how many payments the user avoids thanks to
// netting: distinct counterparties in their raw transactions versus entries
// in their notification view.
func (s *TransactionService) CompareRawVsOptimized(ctx context.Context, username string) Comparison {
	cmp := Comparison{
		RawOwePeople:     []string{},
		RawReceivePeople: []string{},
	}
	norm := normalizeUsername(username)
	if norm == "" {
		return cmp
	}

	txs, err := s.ListTransactionsForUser(ctx, norm)
	if err != nil {
		slog.Warn("failed to list transactions for comparison", "username", norm, "error", err)
		txs = nil
	}
	for _, tx := range txs {
		if strings.EqualFold(norm, tx.PayerUsername) && tx.PayeeUsername != "" {
			cmp.RawReceivePeople = appendDistinct(cmp.RawReceivePeople, tx.PayeeUsername)
		}
		if strings.EqualFold(norm, tx.PayeeUsername) && tx.PayerUsername != "" {
			cmp.RawOwePeople = appendDistinct(cmp.RawOwePeople, tx.PayerUsername)
		}
	}

	optimized := s.ListNotifications(ctx, norm)
	cmp.OptimizedOwe = optimized.Owe
	cmp.OptimizedReceive = optimized.Receive

	cmp.RawCount = len(cmp.RawOwePeople) + len(cmp.RawReceivePeople)
	cmp.OptimizedCount = len(optimized.Owe) + len(optimized.Receive)
	if cmp.RawCount > cmp.OptimizedCount {
		cmp.Savings = cmp.RawCount - cmp.OptimizedCount
	}
	return cmp
}

func appendDistinct(list []string, s string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, s) {
			return list
		}
	}
	return append(list, s)
}

// MarkSettled confirms settlement of an obligation. The transition is
// one-way and permitted only to a party of the obligation; any other caller
// is refused without mutating state.
func (s *TransactionService) MarkSettled(ctx context.Context, id, actingUser string) error {
	ob, err := s.store.GetObligation(ctx, id)
	if err != nil || ob == nil {
		return ErrObligationNotFound
	}

	acting := normalizeUsername(actingUser)
	if acting == "" || (!strings.EqualFold(acting, ob.FromUser) && !strings.EqualFold(acting, ob.ToUser)) {
		return ErrNotParticipant
	}

	if err := s.store.MarkObligationSettled(ctx, id, acting, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to mark obligation settled: %w", err)
	}
	metrics.ObligationsSettled.Inc()
	return nil
}

// SettleDirect records an ad-hoc settlement for an explicit (from, to,
// amount) triple not backed by a stored obligation: it creates the
// obligation and marks it settled immediately, attributed to the caller.
func (s *TransactionService) SettleDirect(ctx context.Context, fromUser, toUser string, amount decimal.Decimal, actingUser string) error {
	fromUser = normalizeUsername(fromUser)
	toUser = normalizeUsername(toUser)
	if fromUser == "" || toUser == "" || amount.Sign() <= 0 {
		return ErrInvalidSettlement
	}

	settledBy := normalizeUsername(actingUser)
	if settledBy == "" {
		settledBy = "unknown"
	}

	now := time.Now().Unix()
	ob := &models.Obligation{
		FromUser:            fromUser,
		ToUser:              toUser,
		Amount:              amount,
		Settled:             true,
		SettledAt:           now,
		SettledBy:           settledBy,
		RecipientRegistered: s.isRegistered(ctx, toUser),
		CreatedAt:           now,
	}
	if err := s.store.SaveObligation(ctx, ob); err != nil {
		return fmt.Errorf("failed to record settlement: %w", err)
	}
	metrics.ObligationsSettled.Inc()
	return nil
}

// dedupeObligations collapses duplicates sharing (from, to, amount, source
// transaction, notifyOnly, recipientRegistered). Entries without a source
// transaction add createdAt to the key so distinct snapshot runs survive.
func dedupeObligations(obs []models.Obligation) []models.Obligation {
	seen := make(map[string]bool, len(obs))
	out := obs[:0]
	for _, ob := range obs {
		key := strings.Join([]string{
			normalizeUsername(ob.FromUser),
			normalizeUsername(ob.ToUser),
			canonicalAmount(ob.Amount),
			ob.TransactionID,
			strconv.FormatBool(ob.NotifyOnly),
			strconv.FormatBool(ob.RecipientRegistered),
		}, "|")
		if ob.TransactionID == "" {
			key += "|" + strconv.FormatInt(ob.CreatedAt, 10)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ob)
	}
	return out
}

// canonicalAmount renders an amount with trailing zeros stripped so "5" and
// "5.00" collapse to the same dedup key.
func canonicalAmount(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// attachContactDetails annotates obligations with the parties' phone
// numbers from the user directory. Lookup failures leave the annotation
// empty; they never fail the read.
func (s *TransactionService) attachContactDetails(ctx context.Context, obs []models.Obligation) {
	for i := range obs {
		if phone := s.lookupPhone(ctx, obs[i].FromUser); phone != "" {
			obs[i].FromUserPhone = phone
		}
		if phone := s.lookupPhone(ctx, obs[i].ToUser); phone != "" {
			obs[i].ToUserPhone = phone
		}
	}
}

func (s *TransactionService) lookupPhone(ctx context.Context, username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return ""
	}
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil || user == nil {
		return ""
	}
	return normalizePhone(user.Phone)
}

// normalizePhone strips everything but digits and the plus sign.
func normalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
