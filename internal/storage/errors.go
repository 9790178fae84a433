package storage

// StorageError wraps a failed database operation with its description.
// Unwrap keeps errors.Is checks (e.g. sql.ErrNoRows) working upstream.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Code feeds the router's error-code log field.
func (e *StorageError) Code() string { return "STORAGE" }

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
