/*
handlers.go - HTTP handlers for the simulated-day ledger

PURPOSE:
  Thin wrappers over the ledger service: parse HTTP requests, pull the
  simulated day from the Simulated-Day header, delegate, and translate
  results and errors to JSON.

ENDPOINTS:
  POST   /accounts                        Create account
  GET    /accounts                        List account summaries
  GET    /accounts/{accountId}            Get one account
  POST   /accounts/{accountId}/deposits   Register deposit
  POST   /accounts/{accountId}/purchases  Register purchase
  POST   /products                        Create product
  GET    /products                        List products as of a day
  GET    /products/{productId}            Get product as of a day

SIMULATED-DAY HEADER:
  Mutations require the header and reject requests without it. Product
  reads treat a missing header as day 0, which reduces stock by nothing.

ERROR HANDLING:
  Ledger error kinds map to statuses, message forwarded verbatim:
  InvalidInput -> 400, NotFound -> 404, Conflict -> 409, Fault and
  anything unexpected -> 500.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/simledger/ledger"
)

// simulatedDayHeader carries the caller-supplied day for every
// day-indexed operation.
const simulatedDayHeader = "Simulated-Day"

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	Ledger *ledger.Service
}

// NewHandler creates a handler over the given ledger service.
func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{Ledger: svc}
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// CreateAccount creates a new account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.Ledger.CreateAccount(req.Name)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountDTO(summary))
}

// ListAccounts returns all account summaries.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	summaries := h.Ledger.ListAccounts()
	dtos := make([]AccountDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = accountDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns a single account summary.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "accountId")

	summary, err := h.Ledger.GetAccount(id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountDTO(summary))
}

// RegisterDeposit appends a deposit on the header's simulated day and
// returns the account with its refreshed balance.
func (h *Handler) RegisterDeposit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "accountId")

	day, ok := requiredDay(w, r)
	if !ok {
		return
	}

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.Ledger.RegisterDeposit(id, decimal.NewFromFloat(req.Amount), day)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountDTO(summary))
}

// RegisterPurchase validates and commits a purchase on the header's
// simulated day.
func (h *Handler) RegisterPurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "accountId")

	day, ok := requiredDay(w, r)
	if !ok {
		return
	}

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Ledger.RegisterPurchase(id, req.ProductID, day); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "purchase successful"})
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// CreateProduct creates a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Ledger.CreateProduct(req.Title, req.Description, decimal.NewFromFloat(req.Price), req.Stock)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProductDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
	})
}

// ListProducts returns all products with stock reduced by sales before
// the header's simulated day.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	day, ok := optionalDay(w, r)
	if !ok {
		return
	}

	views, err := h.Ledger.ListProducts(day)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	dtos := make([]ProductDTO, len(views))
	for i, v := range views {
		dtos[i] = productDTO(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProduct returns one product with stock reduced as of the header's
// simulated day.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")

	day, ok := optionalDay(w, r)
	if !ok {
		return
	}

	view, err := h.Ledger.GetProduct(id, day)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productDTO(view))
}

// =============================================================================
// HELPERS
// =============================================================================

// requiredDay parses the Simulated-Day header for mutating operations.
// Writes a 400 and returns ok=false when absent or unparseable.
func requiredDay(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.Header.Get(simulatedDayHeader)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Simulated-Day header is required")
		return 0, false
	}
	day, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Simulated-Day header must be an integer")
		return 0, false
	}
	return day, true
}

// optionalDay parses the Simulated-Day header for read operations,
// defaulting to day 0 when absent.
func optionalDay(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.Header.Get(simulatedDayHeader)
	if raw == "" {
		return 0, true
	}
	day, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Simulated-Day header must be an integer")
		return 0, false
	}
	return day, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeLedgerError maps a ledger error kind to an HTTP status and
// forwards the message verbatim.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case ledger.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		// Faults and anything unexpected.
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
