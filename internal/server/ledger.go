package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"giftvault/internal/ledger"
)

// ListLedger returns the local transaction log, newest first.
func (h *Handler) ListLedger(w http.ResponseWriter, _ *http.Request) {
	entries := h.ledger.List()
	if entries == nil {
		entries = []ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type appendEntryRequest struct {
	Type        string           `json:"type"`
	Amount      string           `json:"amount"`
	Currency    string           `json:"currency"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	Meta        *ledger.Metadata `json:"meta,omitempty"`
}

var entryTypes = map[ledger.EntryType]bool{
	ledger.TypeBuy:     true,
	ledger.TypeSell:    true,
	ledger.TypeSend:    true,
	ledger.TypeSwap:    true,
	ledger.TypeBillPay: true,
}

// AppendLedger records a transaction performed outside the quote flow
// (buys, sends, swaps, bill payments).
func (h *Handler) AppendLedger(w http.ResponseWriter, r *http.Request) {
	var req appendEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !entryTypes[ledger.EntryType(req.Type)] {
		writeError(w, http.StatusBadRequest, "unknown entry type")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a decimal number")
		return
	}

	entry := h.ledger.Append(ledger.Entry{
		Type:        ledger.EntryType(req.Type),
		Amount:      amount,
		Currency:    req.Currency,
		Description: req.Description,
		Status:      req.Status,
		Meta:        req.Meta,
	})
	writeJSON(w, http.StatusCreated, entry)
}

// ClearLedger drops all local transaction entries.
func (h *Handler) ClearLedger(w http.ResponseWriter, _ *http.Request) {
	h.ledger.Clear()
	w.WriteHeader(http.StatusNoContent)
}
