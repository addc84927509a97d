package worker

import "github.com/pkg/errors"

// ErrCanceledVisit marks a visit that never carried an admit_datetime
// across any of its messages. The source detected this by string-
// matching a "canceled visit" log line; here it is a sentinel the
// caller can check with errors.Is instead.
var ErrCanceledVisit = errors.New("worker: visit canceled, no admit_datetime ever seen")

// ErrStaleMessage marks a message whose message_datetime precedes the
// surrogate's current last_message, the same condition the source
// logged as a "stale, duplicate message" warning.
var ErrStaleMessage = errors.New("worker: message is stale relative to the surrogate's last_message")

// ErrAmbiguousPatientClass marks a 'U' (unknown) patient-class message
// arriving for a visit_id that has no patient_class surrogate or more
// than one, so there is no unambiguous surrogate to attach it to.
var ErrAmbiguousPatientClass = errors.New("worker: 'U' patient class needs exactly one existing patient_class surrogate")
