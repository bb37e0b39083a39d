// Package errors defines the coded errors shared by the game engine, the
// leaderboard and the transports that expose them.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Code codes.Code

const (
	CodeInvalidArgument = Code(codes.InvalidArgument)
	CodeNotFound        = Code(codes.NotFound)
	CodeInternal        = Code(codes.Internal)
	CodeUnauthenticated = Code(codes.Unauthenticated)
	CodeUnavailable     = Code(codes.Unavailable)
)

var code2http = map[Code]int{
	CodeInvalidArgument: http.StatusBadRequest,
	CodeNotFound:        http.StatusNotFound,
	CodeInternal:        http.StatusInternalServerError,
	CodeUnauthenticated: http.StatusUnauthorized,
	CodeUnavailable:     http.StatusServiceUnavailable,
}

// Reasons the domain errors can be matched by with errors.Is.
var (
	ErrInvalidDifficulty         = errors.New("invalid difficulty configuration")
	ErrAnswerGenerationExhausted = errors.New("answer generation exhausted")
	ErrUnauthenticated           = errors.New("unauthenticated")
	ErrRankingUnavailable        = errors.New("ranking unavailable")
)

type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	reason  error
	err     error
}

func New(code Code, opts ...Option) *Error {
	e := &Error{
		Code:    code,
		Message: codes.Code(code).String(),
	}

	for _, opt := range opts {
		opt.apply(e)
	}

	return e
}

func (e *Error) Error() string {
	s := fmt.Sprintf("code: %s, message: %s", codes.Code(e.Code), e.Message)
	if e.err != nil {
		s += fmt.Sprintf(", err: %s", e.err)
	}

	return s
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is matches the error's reason.
func (e *Error) Is(target error) bool {
	return e.reason != nil && e.reason == target
}

func (e *Error) GRPCStatus() *status.Status {
	return status.New(codes.Code(e.Code), e.Message)
}

func (e *Error) HTTPStatusCode() int {
	if c, ok := code2http[e.Code]; ok {
		return c
	}

	return http.StatusInternalServerError
}

// Convert returns err as *Error, wrapping unknown errors as internal.
func Convert(err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		return Internal(err)
	}

	return e
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.Code == code
}

func Internal(err error) *Error {
	return New(CodeInternal, WithCause(err))
}

// InvalidDifficulty rejects a custom difficulty configuration.
func InvalidDifficulty(format string, args ...any) *Error {
	return New(CodeInvalidArgument, withReason(ErrInvalidDifficulty),
		WithMessagef("invalid difficulty configuration: "+format, args...))
}

// AnswerGenerationExhausted is returned when no distinct wrong answer could be found.
func AnswerGenerationExhausted(correct int) *Error {
	return New(CodeInternal, withReason(ErrAnswerGenerationExhausted),
		WithMessagef("answer generation exhausted for result %d", correct))
}

func Unauthenticated() *Error {
	return New(CodeUnauthenticated, withReason(ErrUnauthenticated), WithMessagef("user identity required"))
}

// RankingUnavailable wraps a persistence failure seen while ranking.
func RankingUnavailable(err error) *Error {
	return New(CodeUnavailable, withReason(ErrRankingUnavailable), WithMessagef("ranking unavailable"), WithCause(err))
}

type Option interface {
	apply(*Error)
}

type optionFunc func(*Error)

func (f optionFunc) apply(e *Error) {
	f(e)
}

func WithCause(err error) Option {
	return optionFunc(func(e *Error) {
		e.err = err
	})
}

func WithMessagef(format string, args ...any) Option {
	return optionFunc(func(e *Error) {
		e.Message = fmt.Sprintf(format, args...)
	})
}

func withReason(reason error) Option {
	return optionFunc(func(e *Error) {
		e.reason = reason
	})
}
