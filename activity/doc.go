// Package activity persists the audit trail written by the admin commands.
// Repository implements both types.ActivitySink and types.ActivityRepository;
// payloads are masked with go-masker before they reach storage.
package activity
