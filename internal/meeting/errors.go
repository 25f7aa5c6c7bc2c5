package meeting

import "errors"

// Request-level failures. Anything else that goes wrong while analyzing a
// meeting is reported inside the Report as a failed StageResult.
var (
	// ErrMalformedInput means the metadata payload is not well-formed JSON.
	ErrMalformedInput = errors.New("malformed input")

	// ErrSchemaViolation means the metadata parsed but a field has the wrong shape.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrNoAudioSource means the request carried no audio to transcribe.
	ErrNoAudioSource = errors.New("no audio source")

	// ErrServiceUnavailable means the STT collaborator cannot be used at all.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrNoValidRecipients means no attendee has a usable email address.
	ErrNoValidRecipients = errors.New("no valid recipients")
)
