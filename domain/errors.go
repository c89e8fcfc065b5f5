package domain

import "errors"

// Sentinel errors used throughout the application.
// The pool package converts these into "no fixture" outcomes; only the
// maintenance tools surface them to an operator.
var (
	ErrStoreUnavailable  = errors.New("fixture store is unreachable")
	ErrProvisionRejected = errors.New("backend rejected account provisioning")
	ErrUnknownStrategy   = errors.New("pool has no fallback generation strategy")
	ErrInvalidItem       = errors.New("fixture item must carry an email and password")
	ErrEmptyPoolName     = errors.New("pool name must not be empty")
	ErrPoolNotFound      = errors.New("pool not found")
	ErrNotClaimed        = errors.New("item is not claimed by this worker")
	ErrNotAList          = errors.New("key does not hold a list")
)
