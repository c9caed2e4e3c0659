package core

// contextError adds detail to a sentinel error while keeping it visible to
// errors.Is. It exists so firmware packages can annotate errors without fmt.
type contextError struct {
	msg string
	err error
}

func (e *contextError) Error() string {
	return e.msg
}

func (e *contextError) Unwrap() error {
	return e.err
}

// WrapError returns err followed by ": detail".
func WrapError(err error, detail string) error {
	return &contextError{msg: err.Error() + ": " + detail, err: err}
}

// PrefixError returns "prefix: " followed by err.
func PrefixError(prefix string, err error) error {
	return &contextError{msg: prefix + ": " + err.Error(), err: err}
}
