package internaldefs

import (
	q63 "github.com/uglydojo/q63"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   q63.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for export.
type HistogramDef struct {
	ID   q63.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in stable output order.
var CounterDefs = []CounterDef{
	{ID: q63.MetricRegisterSuccess, Name: "q63_register_success_total", Help: "Accounts created."},
	{ID: q63.MetricRegisterRejected, Name: "q63_register_rejected_total", Help: "Registrations rejected by input validation."},
	{ID: q63.MetricRegisterConflict, Name: "q63_register_conflict_total", Help: "Registrations for an already registered email."},
	{ID: q63.MetricLoginSuccess, Name: "q63_login_success_total", Help: "Successful login attempts."},
	{ID: q63.MetricLoginFailure, Name: "q63_login_failure_total", Help: "Failed login attempts."},
	{ID: q63.MetricSessionCreated, Name: "q63_session_created_total", Help: "Session tokens issued."},
	{ID: q63.MetricSessionValidated, Name: "q63_session_validated_total", Help: "Bearer tokens accepted."},
	{ID: q63.MetricSessionRejected, Name: "q63_session_rejected_total", Help: "Bearer tokens rejected as malformed, unknown, or expired."},
	{ID: q63.MetricPasswordResetRequest, Name: "q63_password_reset_request_total", Help: "Password reset requests."},
	{ID: q63.MetricPasswordResetConfirmSuccess, Name: "q63_password_reset_confirm_success_total", Help: "Successful password reset confirmations."},
	{ID: q63.MetricPasswordResetConfirmFailure, Name: "q63_password_reset_confirm_failure_total", Help: "Failed password reset confirmations."},
	{ID: q63.MetricMailSent, Name: "q63_mail_sent_total", Help: "Reset emails handed to the SMTP relay."},
	{ID: q63.MetricMailFailed, Name: "q63_mail_failed_total", Help: "Reset emails the SMTP relay rejected."},
	{ID: q63.MetricMailDropped, Name: "q63_mail_dropped_total", Help: "Reset emails dropped due to outbox backpressure."},
	{ID: q63.MetricProgressUpdate, Name: "q63_progress_update_total", Help: "Recorded daily check-ins."},
	{ID: q63.MetricAdminExport, Name: "q63_admin_export_total", Help: "Successful email exports."},
	{ID: q63.MetricAdminRejected, Name: "q63_admin_rejected_total", Help: "Email exports rejected for a bad admin key."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: q63.MetricValidateLatency, Name: "q63_validate_latency_seconds", Help: "Session validation latency histogram."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The engine
// keeps one more overflow bucket.
var HistogramUpperBounds = []float64{
	0.005,
	0.01,
	0.025,
	0.05,
	0.1,
	0.25,
	0.5,
}

// HistogramBoundSuffix names each bucket, overflow last, for exporters that
// flatten buckets into separate instruments.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals. The last
// element is the sample count.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

// HistogramSeries normalizes raw engine buckets and returns the running
// totals together with the sample count.
func HistogramSeries(raw []uint64) (cumulative [8]uint64, count uint64) {
	cumulative = CumulativeBuckets(NormalizeBuckets(raw))
	return cumulative, cumulative[len(cumulative)-1]
}

// OutboxDroppedDef is read from the mail outbox rather than the engine
// snapshot, so it keeps counting while engine metrics are disabled.
var OutboxDroppedDef = CounterDef{
	Name: "q63_mail_outbox_dropped_total",
	Help: "Reset emails the outbox discarded because its queue was full or closed.",
}
