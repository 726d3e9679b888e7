package reactivemodel

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysValid(_ context.Context, _ any) (bool, error) { return true, nil }

func alwaysInvalid(_ context.Context, _ any) (bool, error) { return false, nil }

func TestRunPipeline_EmptyValidatorsIsImmediatelyValid(t *testing.T) {
	valid, records := runPipeline(context.Background(), "f", nil, nil, "x", time.Second, NewClassifier(nil), false)
	assert.True(t, valid)
	assert.Empty(t, records)
}

func TestRunPipeline_AbsentPredicateIsValid(t *testing.T) {
	v := Validator{Tag: "noop", Message: "never"}
	valid, records := runPipeline(context.Background(), "f", []Validator{v}, nil, "x", time.Second, NewClassifier(nil), false)
	assert.True(t, valid)
	assert.Empty(t, records)
}

func TestRunPipeline_SyncFailureRecordsTagAndMessage(t *testing.T) {
	v := Validator{Tag: "required", Message: "field is required", Predicate: alwaysInvalid}
	valid, records := runPipeline(context.Background(), "name", []Validator{v}, nil, "", time.Second, NewClassifier(nil), false)
	require.False(t, valid)
	require.Len(t, records, 1)
	assert.Equal(t, "required", records[0].Rule)
	assert.Equal(t, "field is required", records[0].Message)
	assert.Equal(t, "name", records[0].Field)
}

func TestRunPipeline_ConditionGatesExecution(t *testing.T) {
	ran := false
	v := Validator{
		Tag:     "conditional",
		Message: "nope",
		Predicate: func(context.Context, any) (bool, error) {
			ran = true
			return false, nil
		},
		Condition: func(map[string]any) bool { return false },
	}
	valid, records := runPipeline(context.Background(), "f", []Validator{v}, map[string]any{}, "x", time.Second, NewClassifier(nil), false)
	assert.True(t, valid)
	assert.Empty(t, records)
	assert.False(t, ran)
}

func TestRunPipeline_FailFastStopsAfterFirstFailure(t *testing.T) {
	secondRan := false
	v1 := Validator{Tag: "a", Message: "a failed", Predicate: alwaysInvalid}
	v2 := Validator{Tag: "b", Message: "b failed", Predicate: func(context.Context, any) (bool, error) {
		secondRan = true
		return false, nil
	}}
	valid, records := runPipeline(context.Background(), "f", []Validator{v1, v2}, nil, "x", time.Second, NewClassifier(nil), true)
	assert.False(t, valid)
	assert.Len(t, records, 1)
	assert.False(t, secondRan)
}

func TestRunPipeline_AggregateRunsAllAndCollectsEveryFailure(t *testing.T) {
	v1 := Validator{Tag: "a", Message: "a failed", Predicate: alwaysInvalid}
	v2 := Validator{Tag: "b", Message: "b failed", Predicate: alwaysInvalid}
	v3 := Validator{Tag: "c", Message: "c failed", Predicate: alwaysValid}
	valid, records := runPipeline(context.Background(), "f", []Validator{v1, v2, v3}, nil, "x", time.Second, NewClassifier(nil), false)
	assert.False(t, valid)
	assert.Len(t, records, 2)
}

func TestRunPipeline_AsyncTimeoutRecordsTimeoutMessage(t *testing.T) {
	slow := Validator{
		Tag:     "slow",
		Message: "irrelevant",
		Predicate: func(ctx context.Context, _ any) (bool, error) {
			select {
			case <-time.After(10 * time.Second):
				return true, nil
			case <-ctx.Done():
				return false, ctx.Err()
			}
		},
	}
	valid, records := runPipeline(context.Background(), "slow", []Validator{slow}, nil, "v", 20*time.Millisecond, NewClassifier(nil), false)
	require.False(t, valid)
	require.Len(t, records, 1)
	assert.Equal(t, "validation_error", records[0].Rule)
	assert.True(t, strings.Contains(records[0].Message, "Validation timeout: slow"))
}

func TestRunPipeline_PromiseRejectionRecordsThrownMessage(t *testing.T) {
	rejecting := Validator{
		Tag:     "rejects",
		Message: "irrelevant",
		Predicate: func(context.Context, any) (bool, error) {
			return false, errors.New("boom")
		},
	}
	valid, records := runPipeline(context.Background(), "f", []Validator{rejecting}, nil, "v", time.Second, NewClassifier(nil), false)
	require.False(t, valid)
	require.Len(t, records, 1)
	assert.Equal(t, "Validation failed: boom", records[0].Message)
}

func TestRunPipeline_PanicInPredicateIsRecoveredAsFailure(t *testing.T) {
	panicking := Validator{
		Tag:     "panics",
		Message: "irrelevant",
		Predicate: func(context.Context, any) (bool, error) {
			panic("kaboom")
		},
	}
	valid, records := runPipeline(context.Background(), "f", []Validator{panicking}, nil, "v", time.Second, NewClassifier(nil), false)
	assert.False(t, valid)
	require.Len(t, records, 1)
	assert.True(t, strings.Contains(records[0].Message, "kaboom"))
}
