package cliconfig

import (
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ParseFailure parses a "CODE:description" reply such as
// "INTERNAL:TEST ERROR" into a gRPC status. An empty string yields nil.
// Code names are matched case-insensitively, with or without underscores.
func ParseFailure(s string) (*status.Status, error) {
	if s == "" {
		return nil, nil
	}
	name, desc, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("fail-with %q: want CODE:description", s)
	}
	want := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
	for c := codes.OK; c <= codes.Unauthenticated; c++ {
		if strings.ToLower(c.String()) == want {
			if c == codes.OK {
				return nil, fmt.Errorf("fail-with %q: code must not be OK", s)
			}
			return status.New(c, desc), nil
		}
	}
	return nil, fmt.Errorf("fail-with %q: unknown code %q", s, name)
}
