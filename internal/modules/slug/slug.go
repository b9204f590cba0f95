package slug

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	MinLen = 3
	MaxLen = 30

	// maxSuffix bounds Allocate; reaching it means the namespace is saturated
	// for this base, not that the caller should keep trying.
	maxSuffix = 10000
)

var (
	ErrTooShort      = errors.New("slug must be at least 3 characters")
	ErrTooLong       = errors.New("slug must be at most 30 characters")
	ErrInvalidFormat = errors.New("slug may only contain lowercase letters, digits and inner hyphens")
	ErrReserved      = errors.New("slug is reserved")
	ErrExhausted     = errors.New("no free slug for base")
)

var (
	pattern      = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)
	nonNameChars = regexp.MustCompile(`[^a-z0-9\s-]+`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-{2,}`)
)

var reserved = map[string]struct{}{
	"admin":   {},
	"api":     {},
	"www":     {},
	"support": {},
	"help":    {},
	"about":   {},
	"contact": {},
	"terms":   {},
	"privacy": {},
}

func IsReserved(s string) bool {
	_, ok := reserved[s]
	return ok
}

// Validate checks format, length and the reserved list. Availability is the
// caller's concern.
func Validate(s string) error {
	switch {
	case len(s) < MinLen:
		return ErrTooShort
	case len(s) > MaxLen:
		return ErrTooLong
	case !pattern.MatchString(s):
		return ErrInvalidFormat
	case IsReserved(s):
		return ErrReserved
	}
	return nil
}

// Reason maps a Validate error to a stable machine-readable string.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTooShort):
		return "too_short"
	case errors.Is(err, ErrTooLong):
		return "too_long"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrReserved):
		return "reserved"
	default:
		return "invalid"
	}
}

// FromDisplayName lowercases, drops punctuation, and turns spaces into hyphens.
func FromDisplayName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonNameChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	return tidy(s)
}

// FromEmail uses the local part of an address.
func FromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	s := strings.ToLower(local)
	s = nonSlugChars.ReplaceAllString(s, "")
	return tidy(s)
}

// FromIdentity derives a stable, opaque slug base from a provider subject.
func FromIdentity(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return "user-" + hex.EncodeToString(sum[:])[:8]
}

// Candidate picks the first usable base: display name, then email, then identity.
func Candidate(displayName, email, identity string) string {
	for _, s := range []string{FromDisplayName(displayName), FromEmail(email)} {
		if len(s) >= MinLen {
			return s
		}
	}
	return FromIdentity(identity)
}

// WithSuffix appends "-n" for n > 0, shortening base so the result fits MaxLen.
func WithSuffix(base string, n int) string {
	if n <= 0 {
		return fit(base, MaxLen)
	}
	suffix := "-" + strconv.Itoa(n)
	return fit(base, MaxLen-len(suffix)) + suffix
}

// Allocate returns the first of base, base-1, base-2, ... that is valid and not
// taken. taken is consulted in order, so concurrent callers may both pick the
// same value; the insert must still be guarded by a unique constraint.
func Allocate(ctx context.Context, base string, taken func(context.Context, string) (bool, error)) (string, error) {
	return AllocateFrom(ctx, base, 0, taken)
}

// AllocateFrom is Allocate starting at suffix start, used to move past a
// candidate that lost an insert race.
func AllocateFrom(ctx context.Context, base string, start int, taken func(context.Context, string) (bool, error)) (string, error) {
	for n := start; n < maxSuffix; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s := WithSuffix(base, n)
		if Validate(s) != nil {
			continue
		}
		used, err := taken(ctx, s)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", s, err)
		}
		if !used {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrExhausted, base)
}

// SuffixOf returns n for "base-n" (0 when s has no numeric suffix of base).
func SuffixOf(base, s string) int {
	rest, ok := strings.CutPrefix(s, fit(base, MaxLen))
	if ok && rest == "" {
		return 0
	}
	idx := strings.LastIndexByte(s, '-')
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(s[idx+1:])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func fit(s string, max int) string {
	if len(s) > max {
		s = s[:max]
	}
	return strings.TrimRight(s, "-")
}

func tidy(s string) string {
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
