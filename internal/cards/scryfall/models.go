package scryfall

import (
	"errors"
	"fmt"
	"time"
)

// Bulk file types. Oracle cards carry one entry per card; default cards carry
// one per printing.
const (
	BulkOracleCards  = "oracle_cards"
	BulkDefaultCards = "default_cards"
)

// ErrUnknownBulkType is returned when the bulk-data index has no file of the
// requested type.
var ErrUnknownBulkType = errors.New("bulk data type not found")

// BulkDataList is the /bulk-data index.
type BulkDataList struct {
	Data []BulkData `json:"data"`
}

// Find returns the entry of the given type.
func (l *BulkDataList) Find(bulkType string) (*BulkData, error) {
	for i := range l.Data {
		if l.Data[i].Type == bulkType {
			return &l.Data[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBulkType, bulkType)
}

// BulkData describes one downloadable bulk file.
type BulkData struct {
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	UpdatedAt   time.Time `json:"updated_at"`
	Size        int64     `json:"size"`
	DownloadURI string    `json:"download_uri"`
}

// APIError is the error object Scryfall returns with non-2xx responses.
type APIError struct {
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Warnings []string `json:"warnings,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Details
	if msg == "" {
		msg = e.Code
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, msg)
}

// NotFoundError is returned for a 404.
type NotFoundError struct {
	URL string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return "resource not found: " + e.URL
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
