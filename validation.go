package reactivemodel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// runPipeline runs every validator in validators against candidate, in
// fail-fast or aggregate mode, recording an [ErrorRecord] for each failure
// into records (order is unspecified in aggregate mode). It returns whether
// candidate is valid against every validator whose condition (if any)
// allowed it to run.
//
// If validators is empty, candidate is valid immediately with no work done.
func runPipeline(
	ctx context.Context,
	field string,
	validators []Validator,
	data map[string]any,
	candidate any,
	timeout time.Duration,
	classifier *Classifier,
	failFast bool,
) (valid bool, records []ErrorRecord) {
	if len(validators) == 0 {
		return true, nil
	}

	if failFast {
		for _, v := range validators {
			ok, rec := runValidator(ctx, field, v, data, candidate, timeout, classifier)
			if rec != nil {
				records = append(records, *rec)
			}
			if !ok {
				return false, records
			}
		}
		return true, records
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		overall = true
	)
	for _, v := range validators {
		wg.Add(1)
		go func(v Validator) {
			defer wg.Done()
			ok, rec := runValidator(ctx, field, v, data, candidate, timeout, classifier)
			mu.Lock()
			defer mu.Unlock()
			if rec != nil {
				records = append(records, *rec)
			}
			if !ok {
				overall = false
			}
		}(v)
	}
	wg.Wait()
	return overall, records
}

// runValidator evaluates a single validator, racing its predicate against
// timeout. It always releases the timer/context it creates, on both the
// success and failure paths.
func runValidator(
	ctx context.Context,
	field string,
	v Validator,
	data map[string]any,
	candidate any,
	timeout time.Duration,
	classifier *Classifier,
) (valid bool, rec *ErrorRecord) {
	if v.Predicate == nil {
		return true, nil
	}
	if v.Condition != nil && !v.Condition(data) {
		return true, nil
	}

	type predResult struct {
		ok  bool
		err error
	}

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultCh := make(chan predResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- predResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		ok, err := v.Predicate(vctx, candidate)
		resultCh <- predResult{ok: ok, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) && vctx.Err() != nil {
				// The predicate surfaced our own expired deadline; report it
				// the same way as losing the race outright.
				msg := fmt.Sprintf("Validation failed: Validation timeout: %s", field)
				record := classifier.Validation(field, "validation_error", msg)
				classifier.TriggerError(record)
				return false, record
			}
			msg := fmt.Sprintf("Validation failed: %s", res.err.Error())
			record := classifier.Validation(field, "validation_error", msg)
			classifier.TriggerError(record)
			return false, record
		}
		if !res.ok {
			record := classifier.Validation(field, v.Tag, v.Message)
			classifier.TriggerError(record)
			return false, record
		}
		return true, nil
	case <-vctx.Done():
		msg := fmt.Sprintf("Validation failed: Validation timeout: %s", field)
		record := classifier.Validation(field, "validation_error", msg)
		classifier.TriggerError(record)
		return false, record
	}
}
