package profiles

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const (
	profileNamePatternConstant          = `^[A-Za-z0-9_-]+$`
	duplicateNameMessageConstant        = "profile already exists"
	notFoundMessageConstant             = "profile not found"
	invalidNameMessageConstant          = "profile name may only contain letters, numbers, hyphens, and underscores"
	invalidProfileMessageConstant       = "profile requires a user name and an email"
	profileErrorTemplateConstant        = "%w: %s"
	emptyProfileNameDescriptionConstant = "(empty)"
)

var (
	// ErrDuplicateName indicates a profile with the same case-insensitive name already exists.
	ErrDuplicateName = errors.New(duplicateNameMessageConstant)
	// ErrNotFound indicates no profile matched the requested name.
	ErrNotFound = errors.New(notFoundMessageConstant)
	// ErrInvalidName indicates the profile name contains unsupported characters.
	ErrInvalidName = errors.New(invalidNameMessageConstant)
	// ErrInvalidProfile indicates required identity fields are missing.
	ErrInvalidProfile = errors.New(invalidProfileMessageConstant)
)

var profileNamePattern = regexp.MustCompile(profileNamePatternConstant)

// Profile is a named Git identity.
type Profile struct {
	Name             string    `json:"name"`
	UserName         string    `json:"userName"`
	Email            string    `json:"email"`
	LinkedAccount    string    `json:"linkedAccount,omitempty"`
	SSHKeyConfigured bool      `json:"sshKeyConfigured"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ProfileUpdate lists the fields to change on an existing profile; nil fields are left untouched.
type ProfileUpdate struct {
	UserName         *string
	Email            *string
	LinkedAccount    *string
	SSHKeyConfigured *bool
}

// ValidateName reports whether the name is usable as a profile key.
func ValidateName(name string) error {
	if !profileNamePattern.MatchString(name) {
		return fmt.Errorf(profileErrorTemplateConstant, ErrInvalidName, describeName(name))
	}
	return nil
}

// SameName compares two profile names ignoring case.
func SameName(first string, second string) bool {
	return foldName(first) == foldName(second)
}

// Validate checks the invariants every stored profile satisfies.
func (profile Profile) Validate() error {
	if nameError := ValidateName(profile.Name); nameError != nil {
		return nameError
	}
	if len(strings.TrimSpace(profile.UserName)) == 0 || len(strings.TrimSpace(profile.Email)) == 0 {
		return fmt.Errorf(profileErrorTemplateConstant, ErrInvalidProfile, profile.Name)
	}
	return nil
}

func (update ProfileUpdate) applyTo(profile Profile) Profile {
	if update.UserName != nil {
		profile.UserName = *update.UserName
	}
	if update.Email != nil {
		profile.Email = *update.Email
	}
	if update.LinkedAccount != nil {
		profile.LinkedAccount = *update.LinkedAccount
	}
	if update.SSHKeyConfigured != nil {
		profile.SSHKeyConfigured = *update.SSHKeyConfigured
	}
	return profile
}

func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func describeName(name string) string {
	if len(name) == 0 {
		return emptyProfileNameDescriptionConstant
	}
	return name
}
