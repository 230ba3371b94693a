package dto

import "time"

// TransactionRequest contains the writable fields of a transaction.
// Used for both create and full-replace edit operations.
type TransactionRequest struct {
	Merchant        string    `json:"merchant" validate:"required,min=1,max=255"`
	Amount          string    `json:"amount" validate:"required,nonneg_amount"`
	Category        string    `json:"category" validate:"required,category"`
	Currency        string    `json:"currency" validate:"omitempty,len=3"`
	TransactionDate time.Time `json:"transactionDate" validate:"required"`
	Verified        bool      `json:"verified"`
	Tags            []string  `json:"tags" validate:"omitempty,dive,min=1,max=64"`
}

// TransactionFilters contains filtering options for transaction queries
type TransactionFilters struct {
	TimeRange string `query:"timeRange" validate:"omitempty,time_range"`
	Category  string `query:"category" validate:"omitempty,category_filter"`
	Search    string `query:"search"`
}

// PaginationParams contains page-number pagination parameters
type PaginationParams struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=200"`
}

// TransactionResponse represents a transaction as served to clients
type TransactionResponse struct {
	ID              string    `json:"id"`
	Merchant        string    `json:"merchant"`
	Amount          string    `json:"amount"`
	Category        string    `json:"category"`
	Currency        string    `json:"currency"`
	TransactionDate time.Time `json:"transactionDate"`
	Verified        bool      `json:"verified"`
	Tags            []string  `json:"tags,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PaginationInfo contains page-number pagination metadata
type PaginationInfo struct {
	CurrentPage       int   `json:"currentPage"`
	TotalPages        int   `json:"totalPages"`
	TotalTransactions int64 `json:"totalTransactions"`
	HasNextPage       bool  `json:"hasNextPage"`
	HasPrevPage       bool  `json:"hasPrevPage"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}
