package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports required-field or cross-field rule failures found
// before any remote call. Field messages are keyed by the offending field name
// so form layers can highlight inputs inline.
type ValidationError struct {
	Collection  CollectionName
	FieldErrors map[string]string
}

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for name := range e.FieldErrors {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s validation failed: %s", e.Collection, strings.Join(fields, ", "))
}

// DuplicateError reports a natural-key collision found by the uniqueness
// precheck. The Key describes the colliding value in user terms.
type DuplicateError struct {
	Collection CollectionName
	Key        string
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("%s already has a record for %s", e.Collection, e.Key)
}

// NotFoundError is returned when an operation names an identifier absent from
// the collection.
type NotFoundError struct {
	Collection CollectionName
	ID         string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Collection, e.ID)
}

// AuthRequiredError is returned when a mutating operation is attempted without
// an authenticated session. No remote call is made.
type AuthRequiredError struct {
	Operation string
}

func (e AuthRequiredError) Error() string {
	return fmt.Sprintf("sign in required to %s", e.Operation)
}

// RemoteError wraps a failure reported by (or while reaching) the remote
// store. Network distinguishes connectivity failures from store rejections so
// callers can prompt the user to check their connection.
type RemoteError struct {
	Collection CollectionName
	Operation  string
	Network    bool
	Err        error
}

func (e RemoteError) Error() string {
	kind := "remote"
	if e.Network {
		kind = "network"
	}
	return fmt.Sprintf("%s %s: %s error: %v", e.Collection, e.Operation, kind, e.Err)
}

func (e RemoteError) Unwrap() error { return e.Err }

// connectivity markers checked when classifying an error message as a network
// failure, mirroring how hosted-backend client errors describe outages.
var networkMarkers = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"timeout",
	"timed out",
	"broken pipe",
	"failed to fetch",
}

// ClassifyRemote wraps err as a RemoteError for the given collection and
// operation, marking the Network sub-kind when the message indicates a
// connectivity failure. A nil err returns nil.
func ClassifyRemote(collection CollectionName, operation string, err error) error {
	if err == nil {
		return nil
	}
	var existing RemoteError
	if errors.As(err, &existing) {
		return err
	}
	msg := strings.ToLower(err.Error())
	network := false
	for _, marker := range networkMarkers {
		if strings.Contains(msg, marker) {
			network = true
			break
		}
	}
	return RemoteError{Collection: collection, Operation: operation, Network: network, Err: err}
}

// IsNetwork reports whether err carries a RemoteError of the network sub-kind.
func IsNetwork(err error) bool {
	var remote RemoteError
	return errors.As(err, &remote) && remote.Network
}
