package util

import "errors"

var (
	ErrInvalidCredentials   = errors.New("Invalid credentials")
	ErrUserExists           = errors.New("Username or email already exists")
	ErrInvalidHintID        = errors.New("Invalid hint ID")
	ErrHintAlreadyUnlocked  = errors.New("Hint already unlocked")
	ErrHintLocked           = errors.New("Previous hint must be unlocked first")
	ErrFlagConfigNotFound   = errors.New("Flag configuration not found")
	ErrInvalidFlagFormat    = errors.New("Flag must be in format FLAG{...}")
	ErrInvalidFlagPoints    = errors.New("Points must be a positive number")
	ErrSettingNotFound      = errors.New("Setting not found")
	ErrUserNotFound         = errors.New("User not found")
)
