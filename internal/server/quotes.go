package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"giftvault/internal/quote"
)

type createQuoteRequest struct {
	Brand       string `json:"brand"`
	AmountCents int64  `json:"amount_cents"`
}

type quoteResponse struct {
	ID             string    `json:"id"`
	Brand          string    `json:"brand"`
	RatePct        int64     `json:"rate_pct"`
	CoinPriceIndex int64     `json:"coin_price_index"`
	EffectiveRate  string    `json:"effective_rate"`
	TierLabel      string    `json:"tier_label,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toQuoteResponse(q quote.Quote) quoteResponse {
	return quoteResponse{
		ID:             q.ID.String(),
		Brand:          q.Brand,
		RatePct:        q.RatePct,
		CoinPriceIndex: q.CoinPriceIndex,
		EffectiveRate:  q.EffectiveRate.String(),
		TierLabel:      q.TierLabel,
		CreatedAt:      q.CreatedAt,
	}
}

// CreateQuote issues a rate-locked quote for a gift card sale.
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Brand == "" {
		writeError(w, http.StatusBadRequest, "brand is required")
		return
	}
	if req.AmountCents <= 0 {
		writeError(w, http.StatusBadRequest, "amount_cents must be positive")
		return
	}

	q, err := h.sell.Quote(r.Context(), req.Brand, req.AmountCents)
	if err != nil {
		if errors.Is(err, quote.ErrNoActiveRate) {
			writeError(w, http.StatusNotFound, "no active rate for brand")
			return
		}
		h.logger.Error().Err(err).Str("brand", req.Brand).Msg("quote issuance failed")
		writeError(w, http.StatusInternalServerError, "could not issue quote")
		return
	}

	writeJSON(w, http.StatusCreated, toQuoteResponse(q))
}

type payoutRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type payoutResponse struct {
	QuoteID     string `json:"quote_id"`
	AmountCents int64  `json:"amount_cents"`
	PayoutCents int64  `json:"payout_cents"`
}

// RedeemQuote computes the locked payout for a quote and records the sale.
func (h *Handler) RedeemQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quote id")
		return
	}

	var req payoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AmountCents <= 0 {
		writeError(w, http.StatusBadRequest, "amount_cents must be positive")
		return
	}

	payout, err := h.sell.Redeem(r.Context(), id, req.AmountCents)
	if err != nil {
		if errors.Is(err, quote.ErrStaleQuote) {
			writeError(w, http.StatusGone, "quote is unknown or expired")
			return
		}
		h.logger.Error().Err(err).Str("quote_id", id.String()).Msg("payout failed")
		writeError(w, http.StatusInternalServerError, "could not compute payout")
		return
	}

	writeJSON(w, http.StatusOK, payoutResponse{
		QuoteID:     id.String(),
		AmountCents: req.AmountCents,
		PayoutCents: payout,
	})
}
