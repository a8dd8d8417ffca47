package service

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCountryNotFound = errors.New("country not found")
	ErrAlreadyVisited  = errors.New("country already visited")
	ErrNotFamilyMember = errors.New("user is not a member of this family")
	ErrNoIdentity      = errors.New("no active family member")
)
