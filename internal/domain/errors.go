package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrEmptySpread       = errors.New("spread has no positions")
	ErrSpreadExceedsDeck = errors.New("spread needs more cards than the deck holds")
	ErrDeckNotFound      = errors.New("deck not found")
	ErrSpreadNotFound    = errors.New("spread not found")
	ErrHexagramNotFound  = errors.New("hexagram not found")
	ErrReadingNotFound   = errors.New("reading not found")

	ErrProviderNotFound = errors.New("provider not found")
	ErrNoActiveProvider = errors.New("no active provider")
	ErrProvider         = errors.New("provider failure")
	ErrPromptTooLong    = errors.New("prompt exceeds provider context limit")

	ErrQuotaExceeded = errors.New("follow-up quota exceeded")
	ErrAskInFlight   = errors.New("a follow-up question is already in flight")
)

// ProviderError wraps a failure returned by a generation backend.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %q: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrProvider) match any ProviderError.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }
