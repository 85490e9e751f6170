// Package auth implements registration, login and session-token validation.
//
// Both orchestrators are thin: they resolve identifiers, talk to the
// credential service, and hand the real work to the profile reconciliation
// engine. Registration builds the full canonical profile in one shot and
// writes it together with the email-to-username index entry as one
// transaction; login reconciles the existing profile lazily, and a
// reconciliation failure is logged but never blocks token issuance.
//
// Session tokens are HS256 JWTs carrying {subjectId, username, email} with a
// fixed TTL, signed with a process-wide secret loaded once from configuration.
//
// The credential system (secret storage and verification) is a collaborator
// behind the CredentialService interface; the bundled implementation stores
// bcrypt hashes in the service database.
package auth
