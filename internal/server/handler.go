package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"giftvault/internal/alerts"
	"giftvault/internal/cache"
	"giftvault/internal/ledger"
	"giftvault/internal/prefs"
	"giftvault/internal/ranking"
	"giftvault/internal/rates"
	"giftvault/internal/service"
	"giftvault/internal/withdrawal"
)

// principalHeader scopes per-user resources. The local API trusts the
// header; there is no authentication layer in front of it.
const principalHeader = "X-Principal"

// Handler serves the local HTTP API.
type Handler struct {
	sell      *service.Sell
	tables    *rates.Store
	ranker    *ranking.Engine
	ledger    *ledger.Ledger
	alerts    *alerts.Manager
	prefs     *prefs.Store
	estimator *withdrawal.Estimator
	sessions  *cache.Session
	logger    zerolog.Logger
}

// NewHandler wires the API handler. sessions may be nil to disable the
// per-principal read cache.
func NewHandler(sell *service.Sell, tables *rates.Store, ranker *ranking.Engine, log *ledger.Ledger, alertMgr *alerts.Manager, prefStore *prefs.Store, estimator *withdrawal.Estimator, sessions *cache.Session, logger zerolog.Logger) *Handler {
	return &Handler{
		sell:      sell,
		tables:    tables,
		ranker:    ranker,
		ledger:    log,
		alerts:    alertMgr,
		prefs:     prefStore,
		estimator: estimator,
		sessions:  sessions,
		logger:    logger.With().Str("component", "http").Logger(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: errorMsg})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

// principal extracts the caller identity, failing the request when absent.
func principal(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := r.Header.Get(principalHeader)
	if p == "" {
		writeError(w, http.StatusBadRequest, "missing "+principalHeader+" header")
		return "", false
	}
	return p, true
}
