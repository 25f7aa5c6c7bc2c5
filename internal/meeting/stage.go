package meeting

// StageStatus tags the outcome of one pipeline stage
type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageFailure StageStatus = "failure"
)

// StageResult is the outcome of one independently failing stage. A failed
// stage still carries a usable (empty) payload so consumers never need a nil check.
type StageResult[T any] struct {
	Status  StageStatus `json:"status"`
	Payload T           `json:"payload"`
	Message string      `json:"message"`
	Reason  string      `json:"reason,omitempty"`
}

// Succeeded wraps a successful payload
func Succeeded[T any](payload T, message string) StageResult[T] {
	return StageResult[T]{
		Status:  StageSuccess,
		Payload: payload,
		Message: message,
	}
}

// Failed wraps a failure. empty is the payload reported in place of real data.
func Failed[T any](empty T, reason, message string) StageResult[T] {
	return StageResult[T]{
		Status:  StageFailure,
		Payload: empty,
		Message: message,
		Reason:  reason,
	}
}

// OK reports whether the stage succeeded
func (r StageResult[T]) OK() bool {
	return r.Status == StageSuccess
}
