package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountInactive    = errors.New("account or store is inactive")
	ErrTenantMismatch     = errors.New("token does not grant access to this tenant")
)

// Tenant errors
var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantAlreadyExists = errors.New("store already registered")
)

// Synced data errors
var (
	ErrCustomerNotFound = errors.New("customer not found")
)

// Validation errors
var (
	ErrMissingFields     = errors.New("required fields are missing")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrWeakPassword      = errors.New("password must be at least 6 characters")
	ErrInvalidShopDomain = errors.New("invalid shop domain format")
)

// OTP errors
var (
	ErrOTPNotFound        = errors.New("no passcode found, request a new one")
	ErrOTPInvalid         = errors.New("invalid or expired passcode")
	ErrEmailNotRecognized = errors.New("email is not a customer or admin of this store")
)

// Remote platform errors
var (
	ErrStoreConfigMissing = errors.New("no store credentials available for tenant")
	ErrRemoteUnavailable  = errors.New("remote platform request failed")
)
