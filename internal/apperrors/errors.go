package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
// In particular it is returned when an initiation reuses an idempotency key
// that already belongs to another payment of the same tenant.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that an optimistic version check failed because the
// entity was modified concurrently. Callers may reload and retry.
var ErrConflict = errors.New("resource version conflict")

// ErrUnresolvedPolicy indicates that policy resolution produced no applicable
// record and the policy family has no safe default (clearing routing, gateway
// authentication). Not retryable until an administrator adds a rule.
var ErrUnresolvedPolicy = errors.New("no applicable policy record")

// ErrPolicyStoreUnavailable indicates a transient failure reaching the policy
// store. Retryable.
var ErrPolicyStoreUnavailable = errors.New("policy store unavailable")

// ErrPersistenceUnavailable indicates a transient failure reaching the payment
// store. Retryable.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")
