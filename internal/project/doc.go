// Package project persists storyboard projects.
//
// A project row holds a JSON snapshot of the studio state with every media
// payload swapped out for an asset-store key, so the row itself stays small.
// Loading a project hydrates the keys back into inline bytes; keys whose
// payload has gone missing hydrate to the error sentinel instead of failing
// the whole load. Listings carry only metadata plus a thumbnail that is
// hydrated lazily through a TTL cache.
package project
