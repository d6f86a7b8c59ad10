package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"giftvault/internal/ranking"
	"giftvault/internal/rates"
)

type tierView struct {
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Amount string `json:"amount,omitempty"`
	Min    string `json:"min,omitempty"`
	Max    string `json:"max,omitempty"`
	Rate   string `json:"rate"`
}

func tableView(table rates.Table) []tierView {
	views := make([]tierView, 0, len(table))
	for _, tier := range table {
		view := tierView{
			Kind:  string(tier.Kind),
			Label: tier.Label(),
			Rate:  tier.Rate.String(),
		}
		switch tier.Kind {
		case rates.KindFixed:
			view.Amount = tier.Amount.String()
		case rates.KindRange:
			view.Min = tier.Min.String()
			view.Max = tier.Max.String()
		}
		views = append(views, view)
	}
	return views
}

type tableResponse struct {
	Brand string     `json:"brand"`
	Tiers []tierView `json:"tiers"`
}

// GetTable returns the effective rate table for a brand.
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	brand := strings.TrimSpace(chi.URLParam(r, "brand"))
	if brand == "" {
		writeError(w, http.StatusBadRequest, "brand is required")
		return
	}
	writeJSON(w, http.StatusOK, tableResponse{
		Brand: brand,
		Tiers: tableView(h.tables.EffectiveTable(brand)),
	})
}

type matchResponse struct {
	Brand  string `json:"brand"`
	Amount string `json:"amount"`
	Label  string `json:"label"`
	Rate   string `json:"rate"`
	Payout string `json:"payout"`
}

// MatchAmount resolves an indicative offer for brand and amount.
func (h *Handler) MatchAmount(w http.ResponseWriter, r *http.Request) {
	brand := strings.TrimSpace(r.URL.Query().Get("brand"))
	if brand == "" {
		writeError(w, http.StatusBadRequest, "brand is required")
		return
	}
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a decimal number")
		return
	}

	offer, ok := h.sell.Estimate(brand, amount)
	if !ok {
		writeError(w, http.StatusNotFound, "no tier covers this amount")
		return
	}

	writeJSON(w, http.StatusOK, matchResponse{
		Brand:  brand,
		Amount: amount.String(),
		Label:  offer.Matched.Label,
		Rate:   offer.Matched.Rate.String(),
		Payout: offer.Payout.String(),
	})
}

type rankRequest struct {
	Cards []struct {
		ID    string `json:"id"`
		Brand string `json:"brand"`
	} `json:"cards"`
}

type rankedCardView struct {
	ID       string  `json:"id"`
	Brand    string  `json:"brand"`
	BestRate *string `json:"best_rate,omitempty"`
	Label    string  `json:"label"`
}

// RankCards orders the submitted gift cards by best available rate.
func (h *Handler) RankCards(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cards := make([]ranking.GiftCard, 0, len(req.Cards))
	for _, c := range req.Cards {
		cards = append(cards, ranking.GiftCard{ID: c.ID, Brand: c.Brand})
	}

	ranked := h.ranker.Rank(cards)
	views := make([]rankedCardView, 0, len(ranked))
	for _, rc := range ranked {
		view := rankedCardView{ID: rc.Card.ID, Brand: rc.Card.Brand, Label: rc.Label}
		if rc.BestRate != nil {
			s := rc.BestRate.String()
			view.BestRate = &s
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

type withdrawalEstimateResponse struct {
	Phase            string `json:"phase"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	Label            string `json:"label"`
}

// EstimateWithdrawal derives the processing phase for a withdrawal request
// created at the supplied RFC3339 timestamp.
func (h *Handler) EstimateWithdrawal(w http.ResponseWriter, r *http.Request) {
	createdAt, err := time.Parse(time.RFC3339, r.URL.Query().Get("created_at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "created_at must be RFC3339")
		return
	}

	est := h.estimator.Estimate(createdAt, time.Now().UTC())
	writeJSON(w, http.StatusOK, withdrawalEstimateResponse{
		Phase:            string(est.Phase),
		RemainingSeconds: int64(est.Remaining.Seconds()),
		Label:            est.Label,
	})
}
