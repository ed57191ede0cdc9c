package job

import (
	"database/sql/driver"
	"fmt"
)

// Status represents the current lifecycle state of a Job.
//
// The state machine is:
//
//	Pending    -> Processing
//	Processing -> Completed
//	Processing -> Failed      (retry scheduled)
//	Failed     -> Processing  (via acquire, once NextRetryAt has passed)
//	Processing -> Dead        (attempts exhausted)
//
// Unlike a plain at-least-once queue, Failed is a durable state of its
// own rather than a transient trip back through Pending: it carries
// NextRetryAt and keeps Attempts monotonically increasing until the job
// either succeeds or is declared Dead.
//
// Unknown is reserved as the zero value and may be used to mean "no
// filter" in List-style calls.
type Status uint8

const (
	// Unknown represents an unspecified or invalid job state.
	// It is the zero value of Status.
	Unknown Status = iota

	// Pending indicates the job is eligible for acquisition.
	Pending

	// Processing indicates the job is currently leased by a worker.
	Processing

	// Completed indicates the job's command succeeded. Terminal.
	Completed

	// Failed indicates the most recent attempt did not succeed but
	// retries remain. NextRetryAt holds the earliest time the job
	// becomes eligible again.
	Failed

	// Dead indicates attempts have been exhausted. Terminal unless
	// explicitly requeued.
	Dead
)

func statusToString(status Status) string {
	switch status {
	case Pending:
		return "pending"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

func statusFromString(s string) (Status, error) {
	switch s {
	case "pending":
		return Pending, nil
	case "processing":
		return Processing, nil
	case "completed":
		return Completed, nil
	case "failed":
		return Failed, nil
	case "dead":
		return Dead, nil
	case "unknown", "":
		return Unknown, nil
	default:
		return 0, fmt.Errorf("job: unknown status %q", s)
	}
}

// ParseStatus converts a string representation of a status into a
// Status value. Recognized values are "pending", "processing",
// "completed", "failed", "dead" and "unknown"; the empty string also
// yields Unknown. An error is returned for anything else.
func ParseStatus(s string) (Status, error) {
	return statusFromString(s)
}

// MarshalText implements encoding.TextMarshaler using the canonical
// lowercase status names, which also serve as the persisted column
// values in the store.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(statusToString(s)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	status, err := statusFromString(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// String returns the canonical string representation of the status.
func (s Status) String() string {
	return statusToString(s)
}

// Terminal reports whether a job in this state is no longer subject to
// automatic processing (Completed or Dead).
func (s Status) Terminal() bool {
	return s == Completed || s == Dead
}

// Value implements driver.Valuer so Status persists as the canonical
// lowercase text column value required by the store schema, rather
// than as its underlying integer representation.
func (s Status) Value() (driver.Value, error) {
	return statusToString(s), nil
}

// Scan implements sql.Scanner, accepting the text or byte-slice form a
// database driver returns for a text column.
func (s *Status) Scan(value any) error {
	switch v := value.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	case nil:
		*s = Unknown
		return nil
	default:
		return fmt.Errorf("job: cannot scan %T into Status", value)
	}
}
