// Package board implements the storyboard panel pipeline.
//
// A Board owns the ordered panel collection and a drain worker that resolves
// queued panel images one at a time, strictly in board order. Mutations
// (submit, regenerate, delete, expansion commits) wake the worker through a
// buffered notification channel; at most one image generation is ever in
// flight. Video generation and scene-expansion fan-out run concurrently and
// apply their results by panel identity, so results for panels deleted while
// a call was in flight are discarded instead of landing on a neighbor.
package board
