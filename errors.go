package reactivemodel

import (
	"fmt"
	"strings"
	"sync"
)

// ErrorKind enumerates the exhaustive set of error kinds the engine can
// produce.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindReaction           ErrorKind = "reaction"
	KindFieldNotFound      ErrorKind = "field_not_found"
	KindDependencyError    ErrorKind = "dependency_error"
	KindCircularDependency ErrorKind = "circular_dependency"
	KindUnknown            ErrorKind = "unknown"
)

// ErrorRecord is the typed error record dispatched by the [Classifier]. It
// also satisfies the standard error interface, so callers may use
// errors.As/errors.Is against the OriginalErr chain.
type ErrorRecord struct {
	Kind        ErrorKind
	Field       string // empty for records with no field scope (e.g. KindUnknown-only dispatch)
	Rule        string // validator tag, populated for KindValidation records
	Message     string
	OriginalErr error
}

// Error implements the standard error interface.
func (e *ErrorRecord) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap exposes the captured underlying cause, if any.
func (e *ErrorRecord) Unwrap() error { return e.OriginalErr }

// ErrorHandler receives dispatched [ErrorRecord] values.
type ErrorHandler func(*ErrorRecord)

type errorListener struct {
	id ListenerID
	cb ErrorHandler
}

// Classifier constructs typed error records and dispatches them to
// per-kind subscribers plus the KindUnknown catch-all, in registration
// order. It never panics and never blocks the caller beyond running
// subscriber callbacks synchronously, mirroring [Bus]'s dispatch
// discipline.
type Classifier struct {
	mu        sync.Mutex
	listeners map[ErrorKind][]errorListener
	nextID    ListenerID
	logger    Logger
}

// NewClassifier constructs a [Classifier]. A nil logger falls back to the
// process-wide default set via [SetLogger].
func NewClassifier(logger Logger) *Classifier {
	return &Classifier{
		listeners: make(map[ErrorKind][]errorListener),
		logger:    logger,
	}
}

// OnError registers cb for the given kind and returns a [ListenerID] that
// can later be passed to OffError for removal.
func (c *Classifier) OnError(kind ErrorKind, cb ErrorHandler) ListenerID {
	if cb == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners[kind] = append(c.listeners[kind], errorListener{id: id, cb: cb})
	return id
}

// OffError removes specific listeners by ID, or every listener for kind if
// no IDs are given.
func (c *Classifier) OffError(kind ErrorKind, ids ...ListenerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(ids) == 0 {
		delete(c.listeners, kind)
		return
	}
	remove := make(map[ListenerID]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	kept := c.listeners[kind][:0]
	for _, l := range c.listeners[kind] {
		if !remove[l.id] {
			kept = append(kept, l)
		}
	}
	c.listeners[kind] = kept
}

// TriggerError invokes every subscriber for record.Kind, then every
// subscriber for KindUnknown, in registration order. A panicking subscriber
// is recovered, logged, and does not prevent later subscribers from
// running.
func (c *Classifier) TriggerError(record *ErrorRecord) {
	c.mu.Lock()
	kindListeners := append([]errorListener(nil), c.listeners[record.Kind]...)
	var catchAll []errorListener
	if record.Kind != KindUnknown {
		catchAll = append([]errorListener(nil), c.listeners[KindUnknown]...)
	}
	c.mu.Unlock()

	dispatch := func(l errorListener) {
		defer func() {
			if r := recover(); r != nil {
				logf(c.logger, LevelError, "classifier", record.Field, nil,
					"error subscriber panicked: %v", r)
			}
		}()
		l.cb(record)
	}
	for _, l := range kindListeners {
		dispatch(l)
	}
	for _, l := range catchAll {
		dispatch(l)
	}
}

// Validation constructs a KindValidation record.
func (c *Classifier) Validation(field, rule, message string) *ErrorRecord {
	return &ErrorRecord{Kind: KindValidation, Field: field, Rule: rule, Message: message}
}

// Reaction constructs a KindReaction record from a caught exception.
func (c *Classifier) Reaction(field string, cause error) *ErrorRecord {
	return &ErrorRecord{
		Kind:        KindReaction,
		Field:       field,
		Message:     fmt.Sprintf("reaction failed: %v", cause),
		OriginalErr: cause,
	}
}

// FieldNotFound constructs a KindFieldNotFound record.
func (c *Classifier) FieldNotFound(field string) *ErrorRecord {
	return &ErrorRecord{
		Kind:    KindFieldNotFound,
		Field:   field,
		Message: fmt.Sprintf("field not declared: %s", field),
	}
}

// DependencyMissing constructs a KindDependencyError record for a reaction
// whose dependency field has not yet been committed.
func (c *Classifier) DependencyMissing(owner, dependency string) *ErrorRecord {
	return &ErrorRecord{
		Kind:    KindDependencyError,
		Field:   owner,
		Message: fmt.Sprintf("dependency %q for field %q is undefined", dependency, owner),
	}
}

// Circular constructs a KindCircularDependency record whose message includes
// the joined propagation path "S[0] -> S[1] -> ... -> owner".
func (c *Classifier) Circular(path []string) *ErrorRecord {
	return &ErrorRecord{
		Kind:    KindCircularDependency,
		Field:   path[len(path)-1],
		Message: fmt.Sprintf("circular dependency detected: %s", strings.Join(path, " -> ")),
	}
}

// MultiError aggregates more than one underlying cause into a single error.
// Nothing in this package constructs one; it is provided for callers.
type MultiError struct {
	Errors []error
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap enables errors.Is/errors.As to check against every aggregated
// cause.
func (e *MultiError) Unwrap() []error { return e.Errors }
