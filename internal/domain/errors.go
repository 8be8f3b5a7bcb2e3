package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidCatalog    = errors.New("invalid rank requirement catalog")
	ErrInvalidTransition = errors.New("target role must be higher than current role")
	ErrDataIntegrity     = errors.New("referral tree integrity violation")
	ErrAlreadyProcessed  = errors.New("advancement request already processed")
)
