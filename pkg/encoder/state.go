package encoder

// State is the lifecycle stage of an Encoder.
//
//	Created -> Opened -> Encoding -> Finishing -> Closed
//
// Opened moves straight to Finishing when no frame was ever encoded.
type State int

const (
	StateCreated State = iota
	StateOpened
	StateEncoding
	StateFinishing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateOpened:
		return "opened"
	case StateEncoding:
		return "encoding"
	case StateFinishing:
		return "finishing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
