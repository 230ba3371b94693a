package dto

import "time"

// SyncRequest contains email sync options
type SyncRequest struct {
	MaxResults int  `json:"maxResults" validate:"omitempty,min=1,max=500"`
	SyncAll    bool `json:"syncAll"`
}

// SyncResponse reports the outcome of an email sync run
type SyncResponse struct {
	TotalEmails         int       `json:"totalEmails"`
	TransactionalEmails int       `json:"transactionalEmails"`
	TransactionsCreated int       `json:"transactionsCreated"`
	SyncedAt            time.Time `json:"syncedAt"`
}

// SyncStatusResponse reports whether a sync is currently running
type SyncStatusResponse struct {
	SyncInProgress      bool       `json:"syncInProgress"`
	TotalEmails         int        `json:"totalEmails"`
	TransactionalEmails int        `json:"transactionalEmails"`
	LastSyncDate        *time.Time `json:"lastSyncDate,omitempty"`
}
