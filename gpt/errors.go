package gpt

import "errors"

var (
	ErrNotInitialized = errors.New("gpt: driver not initialized")
	ErrPrescalerRange = errors.New("gpt: prescaler out of range")
	ErrTopOutOfRange  = errors.New("gpt: top value out of range")
	ErrResetTimeout   = errors.New("gpt: software reset did not complete")
	ErrZeroFrequency  = errors.New("gpt: input clock frequency is zero")
)
