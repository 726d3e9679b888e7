package reactivemodel

import "context"

// FieldKind is the closed set of declared value kinds a field may carry.
type FieldKind string

const (
	KindStringField  FieldKind = "string"
	KindNumberField  FieldKind = "number"
	KindBooleanField FieldKind = "boolean"
	KindObjectField  FieldKind = "object"
	KindArrayField   FieldKind = "array"
	KindDateField    FieldKind = "date"
	KindEnumField    FieldKind = "enum"
)

// Predicate is the capability a [Validator] wraps: it judges a candidate
// value, returning whether it is valid. It receives a context carrying the
// model's configured async-validation deadline; a purely synchronous
// predicate can safely ignore ctx.
type Predicate func(ctx context.Context, value any) (bool, error)

// ConditionFunc gates whether a [Validator] runs at all, given a snapshot
// of the whole data object.
type ConditionFunc func(data map[string]any) bool

// Validator is one rule in a field's ordered validation list: a tag (rule
// name), a human message, and a predicate. An absent Predicate is treated
// as always-valid and never recorded as an error. The built-in rule
// constructors in package rules produce values convertible to this type.
type Validator struct {
	Tag       string
	Message   string
	Predicate Predicate
	Condition ConditionFunc
}

// Transform is a pure, single-argument value transformer applied before
// validation.
type Transform func(value any) (any, error)

// ComputeFunc derives a reaction's owner-field value from a snapshot of its
// declared dependency values.
type ComputeFunc func(deps map[string]any) (any, error)

// ActionFunc is an optional side-effect invoked after a reaction's compute
// result has been successfully committed. It receives a map containing
// every dependency value plus the computed value under the "computed" key.
type ActionFunc func(payload map[string]any)

// Reaction is a derived-value rule attached to an owner field: an ordered
// dependency list, a pure compute function, and an optional action
// side-effect. Reactions are referenced by pointer throughout the engine so
// a single declared reaction has one stable identity even though it is
// indexed under every one of its dependency fields.
type Reaction struct {
	Deps    []string
	Compute ComputeFunc
	Action  ActionFunc
}

// FieldSchema declares one field: its kind, validators, optional default,
// optional transform, and optional reactions.
type FieldSchema struct {
	Kind       FieldKind
	Validators []Validator
	Default    any
	HasDefault bool
	Transform  Transform
	Reactions  []*Reaction
}

// Schema maps declared field names to their schema. It is immutable once
// passed to [New].
type Schema map[string]FieldSchema
