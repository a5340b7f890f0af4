// Package validation holds the field-level checks shared by the agent
// registry and the feedback pipeline. Lengths are byte lengths, matching
// the fixed-size record layout the limits were derived from.
package validation

import (
	"agent_bazaar/internal/biz/common"
)

// ValidateName checks the 3..64 byte bound on agent names.
func ValidateName(name string) error {
	if len(name) < common.MinNameLen {
		return common.ErrNameTooShort
	}
	if len(name) > common.MaxNameLen {
		return common.ErrNameTooLong
	}
	return nil
}

// ValidateDescription checks the 256 byte cap. Empty is allowed.
func ValidateDescription(description string) error {
	if len(description) > common.MaxDescLen {
		return common.ErrDescriptionTooLong
	}
	return nil
}

// ValidateURI checks the 256 byte cap. The URI is otherwise opaque.
func ValidateURI(uri string) error {
	if len(uri) > common.MaxURILen {
		return common.ErrURITooLong
	}
	return nil
}

// ValidateCategories checks the category count and per-entry length.
// Categories are accepted but not persisted; the limits still apply so a
// later schema addition does not change what callers may submit.
func ValidateCategories(categories []string) error {
	if len(categories) > common.MaxCategories {
		return common.ErrTooManyCategories
	}
	for _, category := range categories {
		if len(category) > common.MaxCategoryLen {
			return common.ErrCategoryTooLong
		}
	}
	return nil
}

// ValidateProfile runs every profile field check for registration.
func ValidateProfile(req *common.RegisterAgentRequest) error {
	if err := ValidateName(req.Name); err != nil {
		return err
	}
	if err := ValidateDescription(req.Description); err != nil {
		return err
	}
	if err := ValidateURI(req.URI); err != nil {
		return err
	}
	return ValidateCategories(req.Categories)
}

// ValidateRating checks the 1..5 rating range.
func ValidateRating(rating uint8) error {
	if rating < common.MinRating || rating > common.MaxRating {
		return common.ErrInvalidRating
	}
	return nil
}

// ValidateAmount rejects zero payments.
func ValidateAmount(amountPaid uint64) error {
	if amountPaid == 0 {
		return common.ErrInvalidAmount
	}
	return nil
}

// ValidateTimestamp rejects non-positive timestamps. Bounds against the
// host clock are checked separately by the feedback pipeline.
func ValidateTimestamp(timestamp int64) error {
	if timestamp <= 0 {
		return common.ErrInvalidTimestamp
	}
	return nil
}
