package errors

import "fmt"

// Wrap prefixes err with msg, preserving the chain for errors.Is checks.
// A nil err returns nil, so it is safe inline:
//
//	return errors.Wrap(store.Save(task), "persist task")
//
// Wrap at package boundaries only; stacking a prefix on every return
// produces unreadable messages.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a format string:
//
//	return errors.Wrapf(err, "update task %q", taskID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
