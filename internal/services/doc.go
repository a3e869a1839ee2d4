// Package services defines the error taxonomy shared by the generation
// gateway, the panel pipeline, and the persistence layer.
//
// Failures are tagged with sentinel markers so callers can classify them with
// errors.Is without inspecting message text. Quota detection additionally
// falls back to message sniffing because upstream generative APIs encode
// rate-limit failures inconsistently.
package services
