package engine

import (
	"fmt"

	"github.com/recordgate/recordgate/pkg/backend"
)

// ContainerPolicy selects how container-typed field values are encoded when a
// backend record is parsed. Exactly one policy is active per request.
type ContainerPolicy int

const (
	// ContainerBase64 materializes the container as
	// "filename;base64-encoded-data".
	ContainerBase64 ContainerPolicy = iota
	// ContainerRaw materializes the container's raw bytes.
	ContainerRaw
	// ContainerURL passes the backend-native reference through untouched.
	ContainerURL
)

// ParseContainerPolicy maps a wire name to its policy.
func ParseContainerPolicy(s string) (ContainerPolicy, error) {
	switch s {
	case "", "base64":
		return ContainerBase64, nil
	case "raw":
		return ContainerRaw, nil
	case "url":
		return ContainerURL, nil
	default:
		return 0, fmt.Errorf("unknown container encoding %q", s)
	}
}

// Options parameterize one engine request. An Engine call with Bulk unset is
// scoped to exactly one record: any per-record failure aborts the whole
// operation. With Bulk set, per-record failures become multistatus entries
// and processing continues.
type Options struct {
	// Layout names the backend table the request targets.
	Layout string

	// Bulk marks the request as batch-scoped (partial failure allowed).
	Bulk bool

	// SuppressData makes create return only the new identifier instead of
	// re-parsing the created record.
	SuppressData bool

	// Append makes update concatenate each supplied value after the field's
	// current value instead of replacing it.
	Append bool

	// UpdateElseCreate re-dispatches an update through the create path when
	// no matching record exists, at most once per record.
	UpdateElseCreate bool

	// Containers is the active container encoding policy.
	Containers ContainerPolicy

	// Hooks is a one-shot script-hook token; the first backend write of the
	// request consumes it.
	Hooks *backend.ScriptHooks
}
