package reactivemodel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Event names emitted on a [Model]'s bus.
const (
	EventFieldChange        = "field:change"
	EventFieldNotFound      = "field:not-found"
	EventValidationError    = "validation:error"
	EventValidationComplete = "validation:complete"
	EventReactionError      = "reaction:error"
)

// reactionsErrorKey is the synthetic errors-map key holding every record
// the reaction graph produces (reaction, dependency and circular-dependency
// errors); each record's Field names the reaction's owner field.
const reactionsErrorKey = "__reactions"

// ErrDisposed is returned by mutating [Model] operations once [Model.Dispose]
// has been called. Disposal is a safe no-op rather than a panic, the same
// way a terminated event loop rejects further work instead of panicking.
var ErrDisposed = errors.New("reactivemodel: model disposed")

// FieldChangeEvent is the payload of [EventFieldChange].
type FieldChangeEvent struct {
	Field string
	Value any
}

// ValidationCompleteEvent is the payload of [EventValidationComplete].
type ValidationCompleteEvent struct {
	IsValid bool
}

// Model is the reactive coordinator: it owns field data, dirty values, and
// errors, and orchestrates transform -> validate -> commit -> react.
// Instances are constructed with [New] and must not be copied.
type Model struct {
	mu         sync.Mutex
	schema     Schema
	data       map[string]any
	dirty      map[string]any
	errors     map[string][]ErrorRecord
	requestIDs map[string]uint64
	disposed   bool

	bus        *Bus
	classifier *Classifier
	graph      *Graph
	opts       *modelOptions
}

// New constructs a [Model] for schema, owning its authoritative state for
// its lifetime.
func New(schema Schema, opts ...Option) *Model {
	cfg := resolveOptions(opts)

	m := &Model{
		schema:     schema,
		data:       make(map[string]any),
		dirty:      make(map[string]any),
		errors:     make(map[string][]ErrorRecord),
		requestIDs: make(map[string]uint64),
		opts:       cfg,
	}
	m.bus = NewBus(cfg.logger)
	if cfg.errorHandler != nil {
		m.classifier = cfg.errorHandler
	} else {
		m.classifier = NewClassifier(cfg.logger)
	}
	m.registerForwarders()
	m.graph = newGraph(schema, cfg.debounceReactions, m, m.classifier, cfg.logger)

	for field, fs := range schema {
		if fs.HasDefault {
			m.data[field] = fs.Default
		}
	}
	return m
}

// registerForwarders wires the classifier's typed kinds onto the bus:
// validation -> validation:error, reaction & circular-dependency ->
// reaction:error, field-not-found -> field:not-found.
func (m *Model) registerForwarders() {
	m.classifier.OnError(KindValidation, func(r *ErrorRecord) { m.bus.Emit(EventValidationError, r) })
	m.classifier.OnError(KindReaction, func(r *ErrorRecord) { m.bus.Emit(EventReactionError, r) })
	m.classifier.OnError(KindCircularDependency, func(r *ErrorRecord) { m.bus.Emit(EventReactionError, r) })
	m.classifier.OnError(KindFieldNotFound, func(r *ErrorRecord) { m.bus.Emit(EventFieldNotFound, r) })
}

// --- graphCoordinator contract ---

func (m *Model) getValue(field string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[field]
	return v, ok
}

func (m *Model) recordReactionError(_ string, rec *ErrorRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[reactionsErrorKey] = append(m.errors[reactionsErrorKey], *rec)
}

// setValueWithStack is the entry point reactions use to commit their
// computed value; it never suppresses further fan-out, so a reaction chain
// (a -> b -> c) keeps propagating.
func (m *Model) setValueWithStack(field string, value any, stack []string) (bool, error) {
	return m.setFieldInternal(context.Background(), field, value, stack, false)
}

// --- public API ---

// SetField validates and, if valid, commits value for field. If field is
// not declared, it records a FIELD_NOT_FOUND error and returns false
// without mutating state.
func (m *Model) SetField(ctx context.Context, field string, value any) (bool, error) {
	return m.setFieldInternal(ctx, field, value, nil, false)
}

// SetFields validates and commits every entry in values, running each
// field's setField concurrently with reaction fan-out suppressed until all
// have settled, then batch-triggers reactions for the union of input field
// names (not just the ones that actually changed).
func (m *Model) SetFields(ctx context.Context, values map[string]any) (bool, error) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return false, ErrDisposed
	}
	m.mu.Unlock()

	inputFields := make([]string, 0, len(values))
	for field := range values {
		inputFields = append(inputFields, field)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		overall = true
	)
	for field, value := range values {
		wg.Add(1)
		go func(field string, value any) {
			defer wg.Done()
			ok, _ := m.setFieldInternal(ctx, field, value, nil, true)
			mu.Lock()
			overall = overall && ok
			mu.Unlock()
		}(field, value)
	}
	wg.Wait()

	m.graph.TriggerBatch(inputFields, nil)
	return overall, nil
}

// GetField returns the current committed value for field, and whether it
// has ever been committed (a declared field with no default and no
// successful set has no entry).
func (m *Model) GetField(field string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[field]
	return v, ok
}

// GetData returns a shallow snapshot of committed data.
func (m *Model) GetData() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotDataLocked()
}

// GetDirtyData returns a shallow snapshot of rejected candidate values.
func (m *Model) GetDirtyData() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(m.dirty))
	for k, v := range m.dirty {
		out[k] = v
	}
	return out
}

// ClearDirtyData empties the dirty map. It does not touch data, errors, or
// pending reaction work.
func (m *Model) ClearDirtyData() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = make(map[string]any)
}

// ValidateAll re-validates every declared field against its dirty value, if
// any, else its current committed value, committing and fanning out
// reactions for anything that becomes valid and changes.
func (m *Model) ValidateAll(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return false, ErrDisposed
	}
	fields := make([]string, 0, len(m.schema))
	for field := range m.schema {
		fields = append(fields, field)
	}
	m.mu.Unlock()

	overall := true
	for _, field := range fields {
		m.mu.Lock()
		fs := m.schema[field]
		candidate, hasDirty := m.dirty[field]
		if !hasDirty {
			candidate = m.data[field]
		}
		dataSnapshot := m.snapshotDataLocked()
		m.mu.Unlock()

		valid, records := runPipeline(ctx, field, fs.Validators, dataSnapshot, candidate, m.opts.asyncValidationTimeout, m.classifier, m.opts.failFast)

		m.mu.Lock()
		m.errors[field] = records
		changed := false
		if valid {
			delete(m.dirty, field)
			if !valuesEqual(m.data[field], candidate) {
				m.data[field] = candidate
				changed = true
			}
		} else {
			overall = false
			m.dirty[field] = candidate
		}
		m.mu.Unlock()

		if changed {
			m.bus.Emit(EventFieldChange, FieldChangeEvent{Field: field, Value: candidate})
			m.graph.Trigger(field, nil)
		}
	}

	m.bus.Emit(EventValidationComplete, ValidationCompleteEvent{IsValid: overall})
	return overall, nil
}

// ValidationSummary returns "Validation passed" if every error list is
// empty, otherwise the concatenation of "<field>: <message>" for every
// recorded error (including reaction failures under "__reactions"), joined
// by "; ", rendered with the model's error formatter.
func (m *Model) ValidationSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for k, recs := range m.errors {
		if len(recs) > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "Validation passed"
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, rec := range m.errors[k] {
			parts = append(parts, m.opts.errorFormatter(rec))
		}
	}
	return strings.Join(parts, "; ")
}

// ValidationErrors returns a snapshot of the errors map.
func (m *Model) ValidationErrors() map[string][]ErrorRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]ErrorRecord, len(m.errors))
	for k, recs := range m.errors {
		out[k] = append([]ErrorRecord(nil), recs...)
	}
	return out
}

// On, Once and Off delegate to the model's event bus.
func (m *Model) On(event string, cb EventHandler) ListenerID   { return m.bus.On(event, cb) }
func (m *Model) Once(event string, cb EventHandler) ListenerID { return m.bus.Once(event, cb) }
func (m *Model) Off(event string, ids ...ListenerID)           { m.bus.Off(event, ids...) }

// Settled blocks until the reaction graph has no pending timers or
// in-flight work, plus one additional scheduling yield for trailing work
// queued during that wait.
func (m *Model) Settled(ctx context.Context) error {
	if err := m.graph.Settled(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(0):
		return nil
	}
}

// Schema returns the declared field names and their kinds, for callers
// building UIs or serializers around the model without reaching into
// private state.
func (m *Model) Schema() map[string]FieldKind {
	out := make(map[string]FieldKind, len(m.schema))
	for field, fs := range m.schema {
		out[field] = fs.Kind
	}
	return out
}

// Dispose cancels every pending reaction timer, clears the event bus, and
// empties all owned state. A second Dispose call, or any mutating call
// after disposal, is a safe no-op returning [ErrDisposed].
func (m *Model) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	m.mu.Unlock()

	m.graph.Dispose()
	m.bus.Clear()

	m.mu.Lock()
	m.data = make(map[string]any)
	m.dirty = make(map[string]any)
	m.errors = make(map[string][]ErrorRecord)
	m.requestIDs = make(map[string]uint64)
	m.mu.Unlock()
}

func (m *Model) snapshotDataLocked() map[string]any {
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

// setFieldInternal runs the transform -> validate -> commit pipeline for a
// single field, and, if this call is still the latest for field by the time
// validation completes, commits it. stack is the propagation stack
// (non-nil only when invoked by the reaction graph); suppress defers
// fan-out (used by SetFields during a batch).
func (m *Model) setFieldInternal(ctx context.Context, field string, value any, stack []string, suppress bool) (bool, error) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return false, ErrDisposed
	}
	fs, ok := m.schema[field]
	if !ok {
		m.mu.Unlock()
		rec := m.classifier.FieldNotFound(field)
		m.classifier.TriggerError(rec)
		return false, nil
	}
	m.requestIDs[field]++
	ticket := m.requestIDs[field]
	dataSnapshot := m.snapshotDataLocked()
	m.mu.Unlock()

	transformed, transformErr := applyTransform(fs.Transform, value)
	if transformErr != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.disposed {
			return false, ErrDisposed
		}
		if m.requestIDs[field] != ticket {
			return false, nil
		}
		rec := m.classifier.Validation(field, "transform_error", fmt.Sprintf("Validation failed: %s", transformErr.Error()))
		m.errors[field] = []ErrorRecord{*rec}
		m.dirty[field] = value
		m.classifier.TriggerError(rec)
		return false, nil
	}

	valid, records := runPipeline(ctx, field, fs.Validators, dataSnapshot, transformed, m.opts.asyncValidationTimeout, m.classifier, m.opts.failFast)

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return valid, ErrDisposed
	}
	if m.requestIDs[field] != ticket {
		// A later call has superseded this one; return our own verdict
		// without mutating state, per the race-safety property.
		m.mu.Unlock()
		return valid, nil
	}

	m.errors[field] = records
	changed := false
	if valid {
		delete(m.dirty, field)
		if !valuesEqual(m.data[field], transformed) {
			m.data[field] = transformed
			changed = true
		}
	} else {
		m.dirty[field] = transformed
	}
	m.mu.Unlock()

	if changed {
		m.bus.Emit(EventFieldChange, FieldChangeEvent{Field: field, Value: transformed})
		if !suppress {
			m.graph.Trigger(field, stack)
		}
	}
	return valid, nil
}

func applyTransform(t Transform, value any) (result any, err error) {
	if t == nil {
		return value, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()
	return t(value)
}
