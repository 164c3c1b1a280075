// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package mapper

// Ensure ParsingError and ExecutionError implement the error interface.
var (
	_ error = &ParsingError{}
	_ error = &ExecutionError{}
)

var (
	errTemplateParsing   = "mapper template parsing error"
	errTemplateExecution = "mapper template execution error"
)

type ParsingError struct {
	msg string
	err error
}

func NewParsingError(err error) *ParsingError {
	msg := errTemplateParsing
	if err != nil {
		msg = msg + "\n" + err.Error()
	}

	return &ParsingError{
		msg: msg,
		err: err,
	}
}

func (e *ParsingError) Error() string {
	return e.msg
}

func (e *ParsingError) Unwrap() error {
	return e.err
}

func (e *ParsingError) Is(target error) bool {
	if e == nil || target == nil {
		return e == target
	}

	if t, ok := target.(*ParsingError); ok {
		return e.Error() == t.Error()
	}

	return false
}

type ExecutionError struct {
	msg string
	err error
}

func NewExecutionError(err error) *ExecutionError {
	msg := errTemplateExecution
	if err != nil {
		msg = msg + "\n" + err.Error()
	}

	return &ExecutionError{
		msg: msg,
		err: err,
	}
}

func (e *ExecutionError) Error() string {
	return e.msg
}

func (e *ExecutionError) Unwrap() error {
	return e.err
}

func (e *ExecutionError) Is(target error) bool {
	if e == nil || target == nil {
		return e == target
	}

	if t, ok := target.(*ExecutionError); ok {
		return e.Error() == t.Error()
	}

	return false
}
