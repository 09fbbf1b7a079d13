package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// NotFoundError reports a reference to an unknown id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// InvalidQuantityError reports a non-positive quantity on add or update.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1, got %d", e.Quantity)
}

// IncompatibleItemError reports an attachment outside the product's
// compatibility set.
type IncompatibleItemError struct {
	ProductID string
	Kind      Kind
	ItemID    string
}

func (e *IncompatibleItemError) Error() string {
	return fmt.Sprintf("%s %q is not compatible with product %q", e.Kind, e.ItemID, e.ProductID)
}

// VersionLockedError reports a mutation of an approved or superseded version.
type VersionLockedError struct {
	ProjectID string
	Number    int
	Reason    string
}

func (e *VersionLockedError) Error() string {
	return fmt.Sprintf("BOQ version %d of project %q is locked: %s", e.Number, e.ProjectID, e.Reason)
}

// EmptyConfigurationError reports a generate call with no selection lines.
type EmptyConfigurationError struct {
	ProjectID string
}

func (e *EmptyConfigurationError) Error() string {
	return fmt.Sprintf("project %q has no configured items to generate a BOQ from", e.ProjectID)
}

// InvalidMarginError reports a negative margin percentage.
type InvalidMarginError struct {
	Percent decimal.Decimal
}

func (e *InvalidMarginError) Error() string {
	return fmt.Sprintf("margin percent must not be negative, got %s", e.Percent)
}

// InvalidScopeError reports a scope key whose shape does not match the
// project's inquiry mode.
type InvalidScopeError struct {
	Scope  ScopeKey
	Reason string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid scope %s: %s", e.Scope, e.Reason)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsLocked(err error) bool {
	var target *VersionLockedError
	return errors.As(err, &target)
}

// IsValidation reports whether err is a caller input error that can be fixed
// by correcting the request.
func IsValidation(err error) bool {
	var (
		qty    *InvalidQuantityError
		incomp *IncompatibleItemError
		empty  *EmptyConfigurationError
		margin *InvalidMarginError
		scope  *InvalidScopeError
	)
	return errors.As(err, &qty) ||
		errors.As(err, &incomp) ||
		errors.As(err, &empty) ||
		errors.As(err, &margin) ||
		errors.As(err, &scope)
}
