// internal/service/offer/slug_gen.go
package offer

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
)

const (
	maxSlugLength   = 80
	maxSlugSuffixes = 20
)

// SlugChecker reports whether a slug is already in use.
type SlugChecker func(ctx context.Context, s string) (bool, error)

// UniqueSlug derives a URL slug from the first non-empty candidate and appends
// -2, -3 ... until it is free. After maxSlugSuffixes collisions it falls back
// to a random ULID suffix.
func UniqueSlug(ctx context.Context, exists SlugChecker, fallback string, candidates ...string) (string, error) {
	base := ""
	for _, c := range candidates {
		if base = slug.Make(c); base != "" {
			break
		}
	}
	if base == "" {
		base = fallback
	}
	if len(base) > maxSlugLength {
		base = strings.TrimRight(base[:maxSlugLength], "-")
	}

	candidate := base
	for i := 2; i <= maxSlugSuffixes+1; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	return fmt.Sprintf("%s-%s", base, strings.ToLower(ulid.Make().String())), nil
}
