package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/tinwood/ledgerd/internal/ledger"
	"github.com/tinwood/ledgerd/internal/service/book"
)

// transactionRequest is the body of credit/debit/edit calls. Amounts are
// positive minor units; the debit route applies the sign.
type transactionRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type entryResponse struct {
	Seq         int64     `json:"seq"`
	Amount      int64     `json:"amount"`
	Balance     int64     `json:"balance"`
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
}

// pageResponse mirrors the ledger UI's combined view: a page of each side
// plus the current balance.
type pageResponse struct {
	Debits  []entryResponse `json:"debits"`
	Credits []entryResponse `json:"credits"`
	Balance int64           `json:"balance"`
}

type listingResponse struct {
	Entries []entryResponse `json:"entries"`
	Balance int64           `json:"balance"`
}

type ledgerListResponse struct {
	Ledgers []string `json:"ledgers"`
}

// scheduleDTO is the stored (kind, index) encoding: weekly rules carry a
// weekday 1 (Monday) through 7 (Sunday), monthly rules a day of month 1-31.
type scheduleDTO struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

type ruleRequest struct {
	Schedule    scheduleDTO `json:"schedule"`
	Amount      int64       `json:"amount"`
	Description string      `json:"description"`
}

type ruleResponse struct {
	ID          uuid.UUID   `json:"id"`
	Schedule    scheduleDTO `json:"schedule"`
	Amount      int64       `json:"amount"`
	Description string      `json:"description"`
}

type ruleListResponse struct {
	Rules []ruleResponse `json:"rules"`
}

func toEntryResponse(e ledger.Entry) entryResponse {
	return entryResponse{
		Seq:         e.Seq,
		Amount:      e.Amount,
		Balance:     e.Balance,
		Description: e.Description,
		Time:        e.CreatedAt,
	}
}

func toEntryResponses(entries []ledger.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

func toPageResponse(p book.Page) pageResponse {
	return pageResponse{
		Debits:  toEntryResponses(p.Debits),
		Credits: toEntryResponses(p.Credits),
		Balance: p.Balance,
	}
}

func toRuleResponse(r ledger.Rule) ruleResponse {
	return ruleResponse{
		ID:          r.ID,
		Schedule:    scheduleDTO{Kind: string(r.Schedule.Kind()), Index: r.Schedule.Param()},
		Amount:      r.Amount,
		Description: r.Description,
	}
}
