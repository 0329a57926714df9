// Package errs holds the error types shared by every layer of the order service.
//
// Each type pairs a sentinel (ErrObjectNotFound, ErrValueIsInvalid, ErrAlreadyExists,
// ...) with a struct carrying the offending parameter, so callers can branch with
// errors.Is on the sentinel and inspect details with errors.As. The HTTP adapter maps
// the sentinels to status codes.
package errs
