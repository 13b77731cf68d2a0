// Package domain defines domain-level errors for the holdings feature.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Fetch failures. These are recovered inside the fallback chain and only
// surface once every strategy has been exhausted.
var (
	// ErrTransport wraps network, timeout and HTTP status failures.
	ErrTransport = errors.New("transport failure")

	// ErrParse wraps malformed CSV, HTML or JSON payloads.
	ErrParse = errors.New("parse failure")

	// ErrNoTables indicates an HTML page without any table element.
	ErrNoTables = errors.New("no tables found")

	// ErrNoHoldingsData is the terminal failure of the scraped fallback chain.
	ErrNoHoldingsData = errors.New("no holdings data found")

	// ErrAPIUnavailable is the terminal failure of a canonical JSON API source.
	ErrAPIUnavailable = errors.New("unable to fetch full holdings from API")
)

// Schema failures are fatal and never trigger a fallback.
var (
	// ErrMissingColumns indicates that required canonical columns could not be resolved.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrUnsupportedFund indicates that the fund is not present in the registry.
	ErrUnsupportedFund = errors.New("unsupported fund ticker")
)

// Validation and store failures.
var (
	// ErrInvalidRecord indicates a record that violates the canonical schema.
	ErrInvalidRecord = errors.New("invalid holding record")

	// ErrNoRows is returned when an ingestion produced no storable rows.
	ErrNoRows = errors.New("no holdings rows to load")

	// ErrMissingFund is returned by the store when records carry no fund.
	ErrMissingFund = errors.New("missing required column: fund")
)

// MissingColumnsError names the canonical fields a source table lacks.
type MissingColumnsError struct {
	Fields []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: [%s]", ErrMissingColumns, strings.Join(e.Fields, " "))
}

// Is lets errors.Is match ErrMissingColumns.
func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}
