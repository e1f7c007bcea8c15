package repository

// EmailSender delivers a notification email. Failures are reported to
// the caller as an error to surface in a status string; they never
// undo the record write that preceded them.
type EmailSender interface {
	Send(to, subject, html string) error
}
