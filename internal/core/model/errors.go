// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"errors"
	"fmt"
)

// The error taxonomy of a single file processing job. Every error produced by
// the workflow wraps exactly one of these so callers can classify it with
// errors.Is.
var (
	ErrPrefixMismatch     = errors.New("object key does not start with the inbound prefix")
	ErrTokenCountMismatch = errors.New("filename token count mismatch")
	ErrExtensionMismatch  = errors.New("filename partition token must be <partition>.<extension>")
	ErrFileTooSmall       = errors.New("file is smaller than the minimum size")
	ErrObjectFetchFailed  = errors.New("object fetch failed")
	ErrBatchWriteFailed   = errors.New("batch write failed")
	ErrDeleteFailed       = errors.New("object delete failed")
	ErrNotifyFailed       = errors.New("notification publish failed")
	ErrTableNotFound      = errors.New("datastore table not found")
	ErrForwardFailed      = errors.New("pipeline forward failed")

	// ErrObjectNotFound and ErrAccessDenied classify object store failures.
	// The read step wraps them with ErrObjectFetchFailed.
	ErrObjectNotFound = errors.New("object not found")
	ErrAccessDenied   = errors.New("access denied")
)

// TokenCountError reports a filename that did not split into the expected
// number of hyphen-delimited tokens.
type TokenCountError struct {
	Expected int
	Got      int
}

func (e *TokenCountError) Error() string {
	return fmt.Sprintf("%s: expected %d tokens, got %d", ErrTokenCountMismatch, e.Expected, e.Got)
}

// Is lets errors.Is(err, ErrTokenCountMismatch) match a *TokenCountError.
func (e *TokenCountError) Is(target error) bool {
	return target == ErrTokenCountMismatch
}

// StepError ties a failure to the processing step that produced it. Step is
// the human readable step description written to the log, Details explains
// what the job was trying to do.
type StepError struct {
	Step    string
	Details string
	Err     error
}

// NewStepError wraps err with a step description and job details.
func NewStepError(step string, details string, err error) *StepError {
	return &StepError{Step: step, Details: details, Err: err}
}

func (e *StepError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Step, e.Details, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
