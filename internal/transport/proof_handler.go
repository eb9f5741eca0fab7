// Package transport exposes the HTTP API.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/export"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
)

const (
	proofPath  = "/v1/proof"
	statusPath = "/v1/status"
	healthPath = "/v1/health"
)

type statusResponse struct {
	Network     string            `json:"network"`
	Height      uint64            `json:"height"`
	ProofLength int               `json:"proof_length"`
	ProofLevel  int               `json:"proof_level"`
	Score       string            `json:"score"`
	Params      export.ParamsJSON `json:"params"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ProofHandler serves the current proof and its shape over HTTP.
type ProofHandler struct {
	provider ProofProvider
	logger   *zap.Logger
}

// NewProofHandler returns a ProofHandler instance.
func NewProofHandler(provider ProofProvider, logger *zap.Logger) *ProofHandler {
	return &ProofHandler{provider: provider, logger: logger}
}

// Register mounts the handler's routes on the given mux.
func (h *ProofHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc(proofPath, h.Proof)
	mux.HandleFunc(statusPath, h.Status)
	mux.HandleFunc(healthPath, h.Health)
}

// Proof serves the full split proof as a JSON document.
func (h *ProofHandler) Proof(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	split, params, err := h.provider.SplitSnapshot()
	if err != nil {
		if errors.Is(err, superchain.ErrEmptyChain) {
			h.writeError(w, http.StatusNotFound, "proof is empty")
			return
		}
		h.logger.Error("split snapshot failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.writeJSON(w, http.StatusOK, export.NewDocument(split, params))
}

// Status serves the proof's current shape.
func (h *ProofHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := h.provider.Snapshot()
	h.writeJSON(w, http.StatusOK, statusResponse{
		Network:     string(snap.Network),
		Height:      snap.Height,
		ProofLength: snap.Length,
		ProofLevel:  snap.Level,
		Score:       snap.Score.String(),
		Params: export.ParamsJSON{
			UnstableLen:     snap.Params.UnstableLen,
			SecurityParam:   snap.Params.SecurityParam,
			UncompressedLen: snap.Params.UncompressedLen,
		},
	})
}

// Health reports server health.
func (h *ProofHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *ProofHandler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response failed", zap.Error(err))
	}
}

func (h *ProofHandler) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, errorResponse{Error: msg})
}
