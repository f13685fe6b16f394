package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Dock-related errors

type DockError struct {
	*DomainError
	DockID int
}

func NewDockError(message string, dockID int) *DockError {
	return &DockError{DomainError: &DomainError{Message: message}, DockID: dockID}
}

type DockNotFoundError struct {
	*DockError
}

func NewDockNotFoundError(dockID int) *DockNotFoundError {
	return &DockNotFoundError{DockError: NewDockError(fmt.Sprintf("dock %d not found", dockID), dockID)}
}

type DockOccupiedError struct {
	*DockError
	OccupantID int
}

func NewDockOccupiedError(dockID, occupantID int) *DockOccupiedError {
	return &DockOccupiedError{
		DockError:  NewDockError(fmt.Sprintf("dock %d is already occupied by ship %d", dockID, occupantID), dockID),
		OccupantID: occupantID,
	}
}

type CategoryMismatchError struct {
	*DockError
	DockCategory int
	ShipCategory int
}

func NewCategoryMismatchError(dockID, dockCategory, shipCategory int) *CategoryMismatchError {
	return &CategoryMismatchError{
		DockError: NewDockError(
			fmt.Sprintf("dock %d (category %d) cannot host a category %d ship", dockID, dockCategory, shipCategory),
			dockID,
		),
		DockCategory: dockCategory,
		ShipCategory: shipCategory,
	}
}

// Ship-related errors

type ShipError struct {
	*DomainError
	ShipID    int
	Direction int
}

func NewShipError(message string, shipID, direction int) *ShipError {
	return &ShipError{DomainError: &DomainError{Message: message}, ShipID: shipID, Direction: direction}
}

type ShipAlreadyDockedError struct {
	*ShipError
	DockID int
}

func NewShipAlreadyDockedError(shipID, direction, dockID int) *ShipAlreadyDockedError {
	return &ShipAlreadyDockedError{
		ShipError: NewShipError(fmt.Sprintf("ship %d (direction %d) is already docked at dock %d", shipID, direction, dockID), shipID, direction),
		DockID:    dockID,
	}
}

// Credential search errors

type CredentialError struct {
	*DomainError
	DockID int
}

func NewCredentialError(message string, dockID int) *CredentialError {
	return &CredentialError{DomainError: &DomainError{Message: message}, DockID: dockID}
}

// SearchExhaustedError reports a search whose every bucket was exhausted without
// a positive verdict. The dock stays held.
type SearchExhaustedError struct {
	*CredentialError
	Length  int
	Queries int64
}

func NewSearchExhaustedError(dockID, length int, queries int64) *SearchExhaustedError {
	return &SearchExhaustedError{
		CredentialError: NewCredentialError(
			fmt.Sprintf("credential search for dock %d exhausted after %d queries (length %d)", dockID, queries, length),
			dockID,
		),
		Length:  length,
		Queries: queries,
	}
}

type UnsupportedWorkerCountError struct {
	*DomainError
	Workers int
	Min     int
	Max     int
}

func NewUnsupportedWorkerCountError(workers, min, max int) *UnsupportedWorkerCountError {
	return &UnsupportedWorkerCountError{
		DomainError: &DomainError{Message: fmt.Sprintf("unsupported search worker count %d (supported: %d-%d)", workers, min, max)},
		Workers:     workers,
		Min:         min,
		Max:         max,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
