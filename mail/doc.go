// Package mail defines the outbound email port used by the engine and its
// SMTP implementation.
//
// [SMTPSender] delivers through any SMTP relay via gomail; [NoopSender] is
// used when delivery is not configured. [ResetMessage] renders the password
// reset email.
//
// Senders are invoked from the internal outbox dispatcher, never on the request
// path, so a slow or failing relay does not change API responses.
package mail
