// Package core holds the operation log model and the validator.
//
// An operation log is an ordered list of Skip, Delete and Insert operations
// applied through a cursor. Run replays a log over a starting text, Check and
// Validate compare the outcome with a claimed end text and an asserted
// expectation, and Apply commits a log the way the editing service does,
// rejecting the first operation that runs past the buffer.
//
// Bound violations during validation are not errors: they clear the validity
// flag and freeze the replay. Only decoding can fail, see DecodeError.
package core
