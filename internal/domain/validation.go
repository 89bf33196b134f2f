package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// FieldErrors collects validation messages keyed by field name so callers
// can render per-field feedback.
type FieldErrors map[string][]string

// Add appends a message for a field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Empty reports whether no field failed.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

const (
	titleMinLen       = 5
	titleMaxLen       = 200
	descriptionMinLen = 10
	descriptionMaxLen = 2000
	nameMinLen        = 2
	nameMaxLen        = 100
	emailMaxLen       = 150
	passwordMinLen    = 6
	passwordMaxLen    = 100
	nationalIDMinLen  = 5
	nationalIDMaxLen  = 50
)

func checkLength(errs FieldErrors, field, value string, min, max int) {
	if len(value) < min {
		errs.Add(field, fmt.Sprintf("must be at least %d characters", min))
	}
	if len(value) > max {
		errs.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// ValidateTicketDraft checks a creation payload after normalization.
func ValidateTicketDraft(draft TicketDraft) FieldErrors {
	errs := FieldErrors{}
	checkLength(errs, string(FieldTitle), draft.Title, titleMinLen, titleMaxLen)
	checkLength(errs, string(FieldDescription), draft.Description, descriptionMinLen, descriptionMaxLen)
	if draft.Priority != "" && !draft.Priority.Valid() {
		errs.Add(string(FieldPriority), "invalid priority")
	}
	return errs
}

// ValidateTicketPatch checks only the fields the patch touches.
func ValidateTicketPatch(patch *TicketPatch) FieldErrors {
	errs := FieldErrors{}
	if patch == nil {
		return errs
	}
	if patch.Title != nil {
		checkLength(errs, string(FieldTitle), strings.TrimSpace(*patch.Title), titleMinLen, titleMaxLen)
	}
	if patch.Description != nil {
		checkLength(errs, string(FieldDescription), strings.TrimSpace(*patch.Description), descriptionMinLen, descriptionMaxLen)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		errs.Add(string(FieldStatus), "invalid status")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		errs.Add(string(FieldPriority), "invalid priority")
	}
	return errs
}

// Registration carries the payload for creating a new identity.
type Registration struct {
	Name       string
	Email      string
	Password   string
	NationalID string
	Role       UserRole
}

// Normalize trims identity strings and lowercases the email before any
// validation or duplicate-detection comparison.
func (r *Registration) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.NationalID = strings.TrimSpace(r.NationalID)
}

// Validate checks a normalized registration payload.
func (r Registration) Validate() FieldErrors {
	errs := FieldErrors{}
	checkLength(errs, "name", r.Name, nameMinLen, nameMaxLen)
	if r.Email == "" {
		errs.Add("email", "email is required")
	} else {
		if len(r.Email) > emailMaxLen {
			errs.Add("email", fmt.Sprintf("must be at most %d characters", emailMaxLen))
		}
		if _, err := mail.ParseAddress(r.Email); err != nil {
			errs.Add("email", "invalid email")
		}
	}
	checkLength(errs, "password", r.Password, passwordMinLen, passwordMaxLen)
	checkLength(errs, "national_id", r.NationalID, nationalIDMinLen, nationalIDMaxLen)
	if !r.Role.Valid() {
		errs.Add("role", "invalid role")
	}
	return errs
}
