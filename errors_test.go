package reactivemodel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_DispatchesToKindThenUnknown(t *testing.T) {
	c := NewClassifier(nil)
	var order []string
	c.OnError(KindValidation, func(*ErrorRecord) { order = append(order, "validation") })
	c.OnError(KindUnknown, func(*ErrorRecord) { order = append(order, "unknown") })
	c.TriggerError(c.Validation("name", "required", "required"))
	assert.Equal(t, []string{"validation", "unknown"}, order)
}

func TestClassifier_UnknownDoesNotDoubleFireForUnknownKind(t *testing.T) {
	c := NewClassifier(nil)
	calls := 0
	c.OnError(KindUnknown, func(*ErrorRecord) { calls++ })
	c.TriggerError(&ErrorRecord{Kind: KindUnknown, Message: "x"})
	assert.Equal(t, 1, calls)
}

func TestClassifier_OffErrorRemovesSpecific(t *testing.T) {
	c := NewClassifier(nil)
	calls := 0
	id := c.OnError(KindValidation, func(*ErrorRecord) { calls++ })
	c.OnError(KindValidation, func(*ErrorRecord) { calls++ })
	c.OffError(KindValidation, id)
	c.TriggerError(c.Validation("f", "tag", "msg"))
	assert.Equal(t, 1, calls)
}

func TestClassifier_PanicSubscriberDoesNotBlockOthers(t *testing.T) {
	c := NewClassifier(nil)
	var ran []string
	c.OnError(KindValidation, func(*ErrorRecord) { ran = append(ran, "a"); panic("boom") })
	c.OnError(KindValidation, func(*ErrorRecord) { ran = append(ran, "b") })
	assert.NotPanics(t, func() { c.TriggerError(c.Validation("f", "tag", "msg")) })
	assert.Equal(t, []string{"a", "b"}, ran)
}

func TestClassifier_CircularMessageIncludesPath(t *testing.T) {
	c := NewClassifier(nil)
	rec := c.Circular([]string{"x", "y", "x"})
	assert.True(t, strings.Contains(rec.Message, "x -> y -> x"))
	assert.Equal(t, KindCircularDependency, rec.Kind)
}

func TestErrorRecord_SatisfiesErrorInterface(t *testing.T) {
	var err error = &ErrorRecord{Kind: KindValidation, Field: "name", Message: "required"}
	assert.Equal(t, "name: required", err.Error())
}

func TestMultiError_JoinsMessages(t *testing.T) {
	me := &MultiError{Errors: []error{assertErr("a"), assertErr("b")}}
	assert.Equal(t, "a; b", me.Error())
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
