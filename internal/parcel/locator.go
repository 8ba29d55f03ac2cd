package parcel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vokinneberg/parcel-assistant/internal/metrics"
)

// Locations is the fixed, ordered list a parcel number is mapped onto
var Locations = [...]string{
	"Anfield",
	"Stamford Bridge",
	"Old Trafford",
	"Parkhead",
	"Hatfield, UK",
	"Heathrow Airport",
	"Westminister, London",
	"Buckingham Palace",
	"Lands End, Cornwall",
	"John O'Groats",
}

// Parcel numbers divisible by this are never found.
const unlucky = 13

var (
	ErrInvalidNumber = errors.New("invalid parcel number")
	ErrNotFound      = errors.New("parcel not found")
)

// Error is a failed lookup. Message is the text reported to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Locate maps a raw parcel number onto a location name
func Locate(raw string) (string, error) {
	num, ok := leadingInt(raw)
	if !ok {
		return "", &Error{
			Kind:    ErrInvalidNumber,
			Message: "Not a valid parcel number " + raw,
		}
	}

	if num%unlucky == 0 {
		return "", &Error{
			Kind:    ErrNotFound,
			Message: fmt.Sprintf("We can't find parcel number %d it is unlucky!", num),
		}
	}

	n := int64(len(Locations))
	return Locations[((num%n)+n)%n], nil
}

// Locator serves parcel lookups and records their results
type Locator struct{}

// NewLocator creates a new parcel locator
func NewLocator() *Locator {
	return &Locator{}
}

// Locate looks up the location of a parcel
func (l *Locator) Locate(_ context.Context, parcelNum string) (string, error) {
	location, err := Locate(parcelNum)
	switch {
	case err == nil:
		metrics.ParcelLookups.WithLabelValues("found").Inc()
	case errors.Is(err, ErrNotFound):
		metrics.ParcelLookups.WithLabelValues("not_found").Inc()
	default:
		metrics.ParcelLookups.WithLabelValues("invalid").Inc()
	}
	return location, err
}

// leadingInt reads an optionally signed run of digits at the start of s,
// after leading spaces, and ignores whatever follows it. "14abc" and "14.5"
// both read as 14.
func leadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	num, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}
