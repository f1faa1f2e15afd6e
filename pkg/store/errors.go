package store

import "fmt"

// The taxonomy every resolver operation reports through. Callers must be
// able to tell an identity that does not exist (NotFoundError, a 404) from
// a resolved identity with zero qualifying records (EmptyResultError, a
// successful empty list), and both from a backend that could not be
// reached at all (StoreUnavailableError, a 503).

// NotFoundError is an identity-resolution miss: an unknown email, company,
// organization or tag-class name, or a resolved person with none of the
// relationships a query requires.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Entity, e.Key)
}

// NotFound builds a NotFoundError.
func NotFound(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// EmptyResultError marks a successfully resolved query with no qualifying
// rows. Handlers translate it to an empty collection, never a 404.
type EmptyResultError struct {
	Reason string
}

func (e *EmptyResultError) Error() string {
	return "no results: " + e.Reason
}

// StoreUnavailableError wraps a connectivity or pool-exhaustion failure
// after the bounded retries are spent.
type StoreUnavailableError struct {
	Store string
	Err   error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s store unavailable: %v", e.Store, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// Unavailable wraps err as a StoreUnavailableError for the named store.
func Unavailable(storeName string, err error) *StoreUnavailableError {
	return &StoreUnavailableError{Store: storeName, Err: err}
}
