// Package result defines the uniform outcome envelope returned by every
// repository operation. Callers branch on the code instead of unwrapping
// errors: conflicts and missing rows are expected outcomes, server errors
// carry only an opaque reference while the cause is logged server-side.
package result

// Code classifies an operation outcome.
type Code int

const (
	CodeOK Code = iota
	CodeCreated
	CodeBadRequest
	CodeUnauthorized
	CodeForbidden
	CodeNotFound
	CodeConflict
	CodeServerError
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeCreated:
		return "created"
	case CodeBadRequest:
		return "bad request"
	case CodeUnauthorized:
		return "unauthorized"
	case CodeForbidden:
		return "forbidden"
	case CodeNotFound:
		return "not found"
	case CodeConflict:
		return "conflict"
	case CodeServerError:
		return "server error"
	default:
		return "unknown"
	}
}

// Message is one outcome message, optionally scoped to a single field.
type Message struct {
	Field string
	Texts []string
}

// Result is the outcome of one repository operation. Payload is populated
// only on success (CodeOK or CodeCreated); messages keep their insertion
// order.
type Result[T any] struct {
	Code     Code
	Messages []Message
	Payload  T
}

// Success reports whether the operation completed.
func (r *Result[T]) Success() bool {
	return r.Code == CodeOK || r.Code == CodeCreated
}

// AddMessage appends a message, scoped to field when field is non-empty.
func (r *Result[T]) AddMessage(field string, texts ...string) *Result[T] {
	r.Messages = append(r.Messages, Message{Field: field, Texts: texts})
	return r
}

// FirstMessage returns the first message text, or "" when there is none.
func (r *Result[T]) FirstMessage() string {
	if len(r.Messages) == 0 || len(r.Messages[0].Texts) == 0 {
		return ""
	}
	return r.Messages[0].Texts[0]
}

func OK[T any](payload T) *Result[T] {
	return &Result[T]{Code: CodeOK, Payload: payload}
}

func Created[T any](payload T) *Result[T] {
	return &Result[T]{Code: CodeCreated, Payload: payload}
}

func NotFound[T any](msg string) *Result[T] {
	r := &Result[T]{Code: CodeNotFound}
	return r.AddMessage("", msg)
}

func Conflict[T any](msg string) *Result[T] {
	r := &Result[T]{Code: CodeConflict}
	return r.AddMessage("", msg)
}

func BadRequest[T any](field, msg string) *Result[T] {
	r := &Result[T]{Code: CodeBadRequest}
	return r.AddMessage(field, msg)
}

func Fatal[T any](msg string) *Result[T] {
	r := &Result[T]{Code: CodeServerError}
	return r.AddMessage("", msg)
}

// Map converts a Result's payload type, applying fn only on success.
// Code and messages carry over unchanged.
func Map[T, U any](r *Result[T], fn func(T) U) *Result[U] {
	out := &Result[U]{Code: r.Code, Messages: r.Messages}
	if r.Success() {
		out.Payload = fn(r.Payload)
	}
	return out
}
