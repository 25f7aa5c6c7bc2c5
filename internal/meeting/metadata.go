package meeting

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"strings"
)

// rawMetadata mirrors the wire shape. Pointers distinguish null from absent
// only where it matters for validation.
type rawMetadata struct {
	Subject   *string       `json:"subj"`
	Date      *string       `json:"dt"`
	Location  *string       `json:"loc"`
	Attendees []rawAttendee `json:"info_n"`
}

type rawAttendee struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// ParseMetadata decodes the metadata form field of an analysis request.
func ParseMetadata(raw string) (Metadata, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || !json.Valid(data) {
		return Metadata{}, fmt.Errorf("%w: metadata is not valid JSON", ErrMalformedInput)
	}
	if data[0] != '{' {
		return Metadata{}, fmt.Errorf("%w: metadata must be a JSON object", ErrMalformedInput)
	}

	var rm rawMetadata
	if err := json.Unmarshal(data, &rm); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "metadata"
			}
			return Metadata{}, fmt.Errorf("%w: %s must be %s, got %s",
				ErrSchemaViolation, field, expectedShape(typeErr), typeErr.Value)
		}
		return Metadata{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	meta := Metadata{
		Subject:   deref(rm.Subject),
		Date:      deref(rm.Date),
		Location:  deref(rm.Location),
		Attendees: make([]Attendee, 0, len(rm.Attendees)),
	}

	seen := make(map[string]struct{}, len(rm.Attendees))
	for i, ra := range rm.Attendees {
		name := strings.TrimSpace(deref(ra.Name))
		if name == "" {
			return Metadata{}, fmt.Errorf("%w: info_n[%d].name is required", ErrSchemaViolation, i)
		}

		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return Metadata{}, fmt.Errorf("%w: duplicate attendee %q", ErrSchemaViolation, name)
		}
		seen[key] = struct{}{}

		email := strings.TrimSpace(deref(ra.Email))
		if email != "" && !ValidEmail(email) {
			return Metadata{}, fmt.Errorf("%w: info_n[%d].email %q is not a valid address",
				ErrSchemaViolation, i, email)
		}

		meta.Attendees = append(meta.Attendees, Attendee{Name: name, Email: email})
	}

	return meta, nil
}

// ValidEmail reports whether s is a bare address such as "a@b.com"
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject display-name forms like "Bob <bob@x.com>"; the roster carries bare addresses.
	return addr.Address == s && strings.Contains(s, "@")
}

func expectedShape(err *json.UnmarshalTypeError) string {
	if err.Type == nil {
		return "a different type"
	}
	t := err.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.String:
		return "a string"
	default:
		return t.Kind().String()
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
