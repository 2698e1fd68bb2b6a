package job

import "fmt"

// Kind tags the three possible outcomes a Result can carry.
type Kind int

const (
	// KindOk marks a successful outcome with an attached value.
	KindOk Kind = iota
	// KindErr marks a failed outcome; Error is always a non-nil error.
	KindErr
	// KindSkip marks a deliberately skipped step. It coerces truthy for
	// aggregation purposes but is reported separately from KindOk.
	KindSkip
)

func (k Kind) String() string {
	switch k {
	case KindOk:
		return "ok"
	case KindErr:
		return "err"
	case KindSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Result is the tri-valued outcome a job's final step produces.
type Result struct {
	kind  Kind
	value interface{}
	err   error
}

// Ok builds a successful Result carrying value.
func Ok(value interface{}) Result {
	return Result{kind: KindOk, value: value}
}

// Err builds a failed Result wrapping err. Panics if err is nil: a failure
// result must always carry a cause.
func Err(err error) Result {
	if err == nil {
		panic("job: Err() called with nil error")
	}
	return Result{kind: KindErr, err: err}
}

// Skip builds a Result representing a deliberately skipped step.
func Skip(reason string) Result {
	return Result{kind: KindSkip, value: reason}
}

// Kind reports which of Ok/Err/Skip this Result is.
func (r Result) Kind() Kind { return r.kind }

// Value returns the payload of an Ok or Skip result.
func (r Result) Value() interface{} { return r.value }

// Error returns the wrapped error of an Err result, or nil otherwise.
func (r Result) Error() error { return r.err }

// Truthy reports whether this result should count as success when
// aggregated by a Pool or a sequential Stage loop. Ok and Skip are truthy;
// Err is not.
func (r Result) Truthy() bool {
	return r.kind != KindErr
}

func (r Result) String() string {
	if r.kind == KindErr {
		return fmt.Sprintf("Result{err: %v}", r.err)
	}
	return fmt.Sprintf("Result{%s: %v}", r.kind, r.value)
}
