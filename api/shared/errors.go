/* errors.go
 * Contains the sentinel errors for the scoring domain. Packages wrap these with
 * fmt.Errorf("...: %w", err) so callers can classify failures with errors.Is
 */

package shared

import "errors"

var (
	// ErrNotFound is returned when a referenced event, participant or judge does not exist
	ErrNotFound = errors.New("not found")

	// ErrNotActive is returned when a score is submitted for, or a finalize is attempted
	// on, a participant that is not currently active
	ErrNotActive = errors.New("participant is not active")

	// ErrIncompleteScore is returned when a submission is missing a value for one of the
	// event's criteria
	ErrIncompleteScore = errors.New("submission does not cover every criterion")

	// ErrInvalidScore is returned when a criterion value is out of range or names a
	// criterion the event does not define
	ErrInvalidScore = errors.New("invalid criterion score")

	// ErrDuplicateSubmission is returned when a judge has already submitted a score for
	// the participant. Enforced by a unique index, so it holds under concurrent retries
	ErrDuplicateSubmission = errors.New("score already submitted")

	// ErrNoScores is returned when a finalize or average is attempted with zero
	// submissions on record
	ErrNoScores = errors.New("no scores submitted")

	// ErrActiveConflict is returned when activating a participant while another
	// participant in the same event is active. The admin must deactivate it first
	ErrActiveConflict = errors.New("another participant is already active")

	// ErrAlreadyCompleted is returned when activating or deactivating a participant
	// whose result has been finalized
	ErrAlreadyCompleted = errors.New("participant already completed")

	// ErrStoreUnavailable is returned for transient storage failures. This is the only
	// failure callers should consider retryable
	ErrStoreUnavailable = errors.New("store unavailable")
)
