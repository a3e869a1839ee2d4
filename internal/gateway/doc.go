// Package gateway is the boundary to the external generative API.
//
// The panel pipeline depends only on the Generator contract: text operations
// (descriptions, storyboard scene lists, scene expansion, translation), a
// single-shot image operation, and a long-running video operation that is
// polled to completion internally. Wire shapes never leak past this package.
//
// Failures carry services markers so callers can classify quota exhaustion
// without parsing message text.
package gateway
