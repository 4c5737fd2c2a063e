package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/giftvault/voucher-service/internal/model"
	"github.com/giftvault/voucher-service/internal/service"
	"github.com/giftvault/voucher-service/internal/store"
)

const maxBodyBytes = 64 << 10

type handler struct {
	svc   *service.Service
	store store.Store
}

type extractRequest struct {
	SourceText string `json:"sourceText"`
	SourceType string `json:"sourceType"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// extract runs one message through the pipeline. The response body is either
// a draft object or a JSON null for a confident non-voucher; both are 200.
// Internal failures return a generic 500 with no detail leaked to the client.
func (h *handler) extract(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)

	var req extractRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SourceText) == "" {
		writeError(w, http.StatusBadRequest, "sourceText is required")
		return
	}
	if req.SourceType == "" {
		req.SourceType = "sms"
	}

	draft, err := h.svc.Extract(r.Context(), service.Request{
		SourceText: req.SourceText,
		SourceType: req.SourceType,
	})
	if err != nil {
		log.Error("extract failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if draft == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("null"))
		return
	}

	log.Info("extract complete",
		zap.String("source", draft.Source),
		zap.Float64("confidence", draft.Confidence),
		zap.Int("missingRequired", len(draft.MissingRequiredFields)),
	)
	writeJSON(w, http.StatusOK, draft)
}

type saveVoucherRequest struct {
	Draft      model.Draft `json:"draft"`
	SourceType string      `json:"sourceType"`
}

func (h *handler) saveVoucher(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)

	var req saveVoucherRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceType == "" {
		req.SourceType = "sms"
	}

	saved, err := h.store.SaveVoucher(r.Context(), req.Draft, req.SourceType)
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusConflict, "voucher already saved")
		return
	}
	if err != nil {
		log.Error("save voucher failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (h *handler) getVoucher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, err := h.store.GetVoucher(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "voucher not found")
		return
	}
	if err != nil {
		requestLogger(r).Error("get voucher failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, v)
}

func (h *handler) listVouchers(w http.ResponseWriter, r *http.Request) {
	filter := store.Filter{
		Store:  r.URL.Query().Get("store"),
		Source: r.URL.Query().Get("source"),
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Offset = n
		}
	}

	vouchers, err := h.store.ListVouchers(r.Context(), filter)
	if err != nil {
		requestLogger(r).Error("list vouchers failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if vouchers == nil {
		vouchers = []store.SavedVoucher{}
	}

	writeJSON(w, http.StatusOK, vouchers)
}

func (h *handler) deleteVoucher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.store.DeleteVoucher(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "voucher not found")
		return
	}
	if err != nil {
		requestLogger(r).Error("delete voucher failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
