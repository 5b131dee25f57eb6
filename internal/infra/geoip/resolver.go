// Package geoip resolves a client IP to one of the prompt composer's
// continental regions, backing the "auto" region choice.
package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned when the resolver is not initialized.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// ContinentResolver resolves continent names from IP addresses.
type ContinentResolver interface {
	Continent(ip string) (string, error)
}

// Resolver provides continent lookups backed by a MaxMind GeoIP2 database.
// The English continent names in the database line up with the region
// enumeration used for prompts.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the GeoIP database at the given path. When the path is
// empty, nil is returned and region auto-detection stays disabled.
func NewResolver(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Continent returns the English continent name for the provided IP, or an
// empty string when the database has no record for it.
func (r *Resolver) Continent(ip string) (string, error) {
	if r == nil || r.reader == nil {
		return "", ErrUnavailable
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup continent: %w", err)
	}
	if record == nil {
		return "", nil
	}
	return record.Continent.Names["en"], nil
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
