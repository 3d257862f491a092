package session

import (
	"fmt"

	"github.com/swipehire/interview-api/internal/models"
)

// RequiredFields lists the profile fields collected before questions begin,
// in prompt order.
var RequiredFields = []string{"name", "email", "phone"}

// FieldValue returns the profile value for a required field name.
func FieldValue(profile models.Profile, field string) string {
	switch field {
	case "name":
		return profile.Name
	case "email":
		return profile.Email
	case "phone":
		return profile.Phone
	default:
		return ""
	}
}

// PartialProfile builds a profile carrying only the named field.
func PartialProfile(field, value string) models.Profile {
	switch field {
	case "name":
		return models.Profile{Name: value}
	case "email":
		return models.Profile{Email: value}
	case "phone":
		return models.Profile{Phone: value}
	default:
		return models.Profile{}
	}
}

// MissingFields recomputes, from the full profile, the ordered subset of
// required fields that are still empty. It is never patched incrementally so
// fields supplied out of order are still detected as satisfied.
func MissingFields(profile models.Profile) []string {
	missing := make([]string, 0, len(RequiredFields))
	for _, field := range RequiredFields {
		if FieldValue(profile, field) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// IsRequiredField reports whether the name is one of the collected fields.
func IsRequiredField(field string) bool {
	for _, candidate := range RequiredFields {
		if candidate == field {
			return true
		}
	}
	return false
}

// PromptFor renders the bot prompt requesting a required field.
func PromptFor(field string) string {
	return fmt.Sprintf("Please provide your %s.", field)
}
