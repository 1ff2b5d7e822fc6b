package dns

import (
	"context"
	"net"
)

// System asks the operating system resolver for a PTR record.
type System struct {
	Resolver *net.Resolver
}

// NewSystem returns a System source using the default resolver.
func NewSystem() *System {
	return &System{Resolver: net.DefaultResolver}
}

// Name identifies the source in logs.
func (s *System) Name() string { return "dns" }

// LookupAddr returns the first PTR name for ip.
func (s *System) LookupAddr(ctx context.Context, ip string) (string, error) {
	r := s.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	names, err := r.LookupAddr(ctx, ip)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrNoAnswer
	}
	return names[0], nil
}
