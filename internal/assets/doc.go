// Package assets provides durable key/value storage for binary media.
//
// Project records never embed image or video bytes inline; they reference
// blobs stored here under keys derived from the project identifier. The store
// is a single SQLite database so a studio data directory stays portable as a
// pair of files.
package assets
