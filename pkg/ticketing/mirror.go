package ticketing

import "context"

// MirrorStatus classifies the outcome of a legacy write.
type MirrorStatus string

const (
	MirrorStatusMirrored    MirrorStatus = "mirrored"
	MirrorStatusUnavailable MirrorStatus = "unavailable"
	MirrorStatusFailed      MirrorStatus = "failed"
)

const mirrorReasonOK = "ok"

// MirrorResult reports the outcome of a best-effort legacy write.
type MirrorResult struct {
	status MirrorStatus
	reason string
}

// MirrorSucceeded reports a completed legacy write.
func MirrorSucceeded() MirrorResult {
	return MirrorResult{status: MirrorStatusMirrored, reason: mirrorReasonOK}
}

// MirrorUnavailable reports that the legacy store could not be attempted.
func MirrorUnavailable(reason string) MirrorResult {
	return MirrorResult{status: MirrorStatusUnavailable, reason: reason}
}

// MirrorFailed reports an attempted legacy write that failed.
func MirrorFailed(err error) MirrorResult {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return MirrorResult{status: MirrorStatusFailed, reason: reason}
}

// Status returns the outcome class.
func (result MirrorResult) Status() MirrorStatus {
	if result.status == "" {
		return MirrorStatusUnavailable
	}
	return result.status
}

// IsZero reports whether no mirror outcome was recorded.
func (result MirrorResult) IsZero() bool {
	return result.status == ""
}

// Mirrored reports whether the record reached the legacy store.
func (result MirrorResult) Mirrored() bool {
	return result.status == MirrorStatusMirrored
}

// Reason describes the outcome.
func (result MirrorResult) Reason() string {
	if result.reason == "" {
		return string(result.Status())
	}
	return result.reason
}

type disabledMirror struct{}

func (disabledMirror) Mirror(context.Context, MirrorRecord) MirrorResult {
	return MirrorUnavailable("legacy store not configured")
}
