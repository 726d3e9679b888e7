// Package reactivemodel implements a declarative, schema-driven reactive
// data-model engine for form-like domain objects.
//
// A caller describes a set of named fields, each with a declared value
// kind, an optional transform, an ordered list of validators, an optional
// default, and optional reactions: derived-value rules that recompute one
// field when other fields change. The [Model] coordinator owns the
// authoritative field state, runs validation through a [Classifier] and
// event [Bus], and propagates changes through a [Graph] of reactions with
// debouncing and cycle protection.
//
// Five parts cooperate: [Bus] is a synchronous,
// registration-ordered event dispatcher (see bus.go); [Classifier] is a
// typed error taxonomy with per-kind and catch-all subscribers (see
// errors.go); the validation pipeline (validation.go) runs an ordered rule
// list with fail-fast or aggregate semantics and a per-call timeout; [Graph]
// (reaction.go) maintains the dependency reverse-index and debounce timers;
// and [Model] (model.go) owns data, dirty, and error state and orchestrates
// the rest.
package reactivemodel
