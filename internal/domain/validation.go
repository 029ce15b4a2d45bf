package domain

import (
	"errors"
	"fmt"
	"time"
)

// FieldError represents a single field's validation error.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// ValidatePost checks a post before it is stored.
// now: reference time (injectable for tests)
// skew: allowable future skew
func ValidatePost(p *Post, now time.Time, skew time.Duration) []FieldError {
	var errs []FieldError

	if p.AuthorID == "" {
		errs = append(errs, FieldError{"author_id", "required"})
	} else if len(p.AuthorID) > MaxAuthorIDLen {
		errs = append(errs, FieldError{"author_id", fmt.Sprintf("max length %d", MaxAuthorIDLen)})
	}

	if len(p.AuthorUsername) > MaxUsernameLen {
		errs = append(errs, FieldError{"author_username", fmt.Sprintf("max length %d", MaxUsernameLen)})
	}

	// created_at may legitimately be 0 (epoch) in old crawls, so only the
	// future bound is enforced.
	if p.CreatedAt < 0 {
		errs = append(errs, FieldError{"created_at", "must be epoch milliseconds >= 0"})
	} else if time.UnixMilli(p.CreatedAt).After(now.Add(skew)) {
		errs = append(errs, FieldError{"created_at", "must not be in the future (beyond allowed skew)"})
	}

	if len(p.Content) > MaxContentBytes {
		errs = append(errs, FieldError{"content", fmt.Sprintf("max %d bytes", MaxContentBytes)})
	}

	return errs
}

// ValidateBatch enforces the batch size cap and per-post validation.
func ValidateBatch(posts []Post, maxItems int, now time.Time, skew time.Duration) (allErrs [][]FieldError, topErr error) {
	if len(posts) == 0 {
		return nil, errors.New("posts: required and must contain at least one item")
	}
	if len(posts) > maxItems {
		return nil, fmt.Errorf("posts: max %d items", maxItems)
	}
	allErrs = make([][]FieldError, len(posts))
	var failed bool
	for i := range posts {
		if fe := ValidatePost(&posts[i], now, skew); len(fe) > 0 {
			allErrs[i] = fe
			failed = true
		}
	}
	if failed {
		return allErrs, errors.New("one or more posts failed validation")
	}
	return nil, nil
}
