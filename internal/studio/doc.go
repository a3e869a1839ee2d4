// Package studio orchestrates a working session: the concept inputs, the
// storyboard board, and project persistence. It owns the translation between
// live board panels and persisted panel records, and enforces the input
// validation that must happen before any generative call is made.
package studio
