/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger's domain model from the external API contract. Monetary
  fields cross the wire as JSON numbers; the core keeps decimals.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Handlers validate shape (body present, numbers parseable, Simulated-Day
  header); semantic validation lives in the ledger so the core only ever
  observes well-typed values.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import "github.com/warp/simledger/ledger"

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AccountDTO represents an account summary in API responses.
type AccountDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// CreateAccountRequest is the request to create an account.
type CreateAccountRequest struct {
	Name string `json:"name"`
}

// DepositRequest is the request to register a deposit. The simulated day
// arrives in the Simulated-Day header, not the body.
type DepositRequest struct {
	Amount float64 `json:"amount"`
}

// ProductDTO represents a product in API responses. Stock is the
// remaining stock as of the request's simulated day.
type ProductDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// CreateProductRequest is the request to create a product.
type CreateProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// PurchaseRequest is the request to register a purchase. The simulated
// day arrives in the Simulated-Day header.
type PurchaseRequest struct {
	ProductID string `json:"productId"`
}

// MessageResponse is a success acknowledgment with no payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error envelope for all failure statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func accountDTO(s ledger.Summary) AccountDTO {
	return AccountDTO{ID: s.ID, Name: s.Name, Balance: s.Balance.InexactFloat64()}
}

func productDTO(v ledger.ProductView) ProductDTO {
	return ProductDTO{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Price:       v.Price.InexactFloat64(),
		Stock:       v.Stock,
	}
}
