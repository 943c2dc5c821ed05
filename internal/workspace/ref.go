// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workspace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRef is returned for references that do not parse.
var ErrInvalidRef = errors.New("invalid object reference")

// Ref is a parsed object reference: <workspace>/<object>[/<version>].
// Workspace and object may each be a numeric id or a name. Version 0 means
// the latest version.
type Ref struct {
	Workspace string
	Object    string
	Version   int
}

// ParseRef parses s into a Ref.
func ParseRef(s string) (Ref, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return Ref{}, fmt.Errorf("%w %q: want <workspace>/<object>[/<version>]", ErrInvalidRef, s)
	}
	for _, p := range parts {
		if p == "" {
			return Ref{}, fmt.Errorf("%w %q: empty component", ErrInvalidRef, s)
		}
	}

	r := Ref{Workspace: parts[0], Object: parts[1]}
	if len(parts) == 3 {
		v, err := strconv.Atoi(parts[2])
		if err != nil || v < 1 {
			return Ref{}, fmt.Errorf("%w %q: version must be a positive integer", ErrInvalidRef, s)
		}
		r.Version = v
	}
	return r, nil
}

// String renders the reference in the form it was parsed from.
func (r Ref) String() string {
	if r.Version > 0 {
		return fmt.Sprintf("%s/%s/%d", r.Workspace, r.Object, r.Version)
	}
	return r.Workspace + "/" + r.Object
}

// numericID returns s as an id when it is all digits.
func numericID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
