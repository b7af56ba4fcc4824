package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

var (
	// ErrVerificationFailed wraps the message of a terminal error event
	ErrVerificationFailed = errors.New("verification failed")
	// ErrNoResult is returned when a stream closes without a terminal event
	ErrNoResult = errors.New("verification ended without a result")
)

// Collect drains events and returns the result of the complete event
func Collect(events <-chan model.Event) (*model.VerificationResult, error) {
	var (
		result *model.VerificationResult
		err    = ErrNoResult
	)
	for ev := range events {
		switch ev.Type {
		case model.EventComplete:
			var r model.VerificationResult
			if uerr := json.Unmarshal([]byte(ev.Data), &r); uerr != nil {
				err = fmt.Errorf("decode result: %w", uerr)
				continue
			}
			result, err = &r, nil
		case model.EventError:
			var p model.ErrorPayload
			if uerr := json.Unmarshal([]byte(ev.Data), &p); uerr != nil || p.Message == "" {
				p.Message = ev.Data
			}
			err = fmt.Errorf("%w: %s", ErrVerificationFailed, p.Message)
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
