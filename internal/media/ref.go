// Package media defines the tagged reference type used for panel images and
// videos. A Ref is either empty, raw inline bytes, a durable asset-store key,
// a remote URL, or a terminal generation-failure sentinel. The persisted form
// is a single string so project snapshots stay portable JSON.
package media

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Kind discriminates the reference variants.
type Kind string

const (
	KindEmpty   Kind = ""
	KindInline  Kind = "inline"
	KindDurable Kind = "durable"
	KindRemote  Kind = "remote"
	KindError   Kind = "error"
	KindQuota   Kind = "quota_error"
)

const (
	sentinelError = "error"
	sentinelQuota = "quota_error"
)

// assetKeyPattern matches "{owner}-img-{n}" and "{owner}-vid-{n}" keys minted
// by the project store. The owner is any key-safe id, not just a minted uuid,
// so keys survive projects imported with foreign ids. URLs never match: the
// charset excludes ':' and '/'.
var assetKeyPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z._-]*-(img|vid)-[0-9]+$`)

// keyOwnerPattern is the id charset that can prefix a durable asset key.
var keyOwnerPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z._-]*$`)

// Ref references image or video content.
type Ref struct {
	Kind  Kind
	MIME  string // inline only
	Bytes []byte // inline only
	Key   string // durable key or remote URL
}

// Inline builds a raw-bytes reference.
func Inline(mime string, data []byte) Ref {
	return Ref{Kind: KindInline, MIME: mime, Bytes: data}
}

// Durable builds an asset-store key reference.
func Durable(key string) Ref {
	return Ref{Kind: KindDurable, Key: key}
}

// Remote builds a reference to externally hosted content.
func Remote(url string) Ref {
	return Ref{Kind: KindRemote, Key: url}
}

// TerminalError is the sentinel for a failed generation.
func TerminalError() Ref { return Ref{Kind: KindError} }

// TerminalQuota is the sentinel for a quota-limited generation.
func TerminalQuota() Ref { return Ref{Kind: KindQuota} }

func (r Ref) IsZero() bool { return r.Kind == KindEmpty }

// IsTerminal reports whether the reference is a failure sentinel.
func (r Ref) IsTerminal() bool { return r.Kind == KindError || r.Kind == KindQuota }

// IsInline reports whether the reference carries raw displayable bytes.
func (r Ref) IsInline() bool { return r.Kind == KindInline }

func (r Ref) IsDurable() bool { return r.Kind == KindDurable }

// Encode renders the persisted string form.
func (r Ref) Encode() string {
	switch r.Kind {
	case KindEmpty:
		return ""
	case KindError:
		return sentinelError
	case KindQuota:
		return sentinelQuota
	case KindInline:
		mime := r.MIME
		if mime == "" {
			mime = "application/octet-stream"
		}
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(r.Bytes)
	default:
		return r.Key
	}
}

// Decode parses the persisted string form back into a tagged reference.
func Decode(value string) Ref {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return Ref{}
	case value == sentinelError:
		return TerminalError()
	case value == sentinelQuota:
		return TerminalQuota()
	case strings.HasPrefix(value, "data:"):
		ref, err := decodeDataURI(value)
		if err != nil {
			return TerminalError()
		}
		return ref
	case assetKeyPattern.MatchString(value):
		return Durable(value)
	default:
		return Remote(value)
	}
}

// IsAssetKey reports whether a raw string matches the durable key pattern.
func IsAssetKey(value string) bool {
	return assetKeyPattern.MatchString(value)
}

// IsKeyOwner reports whether an id can own durable asset keys, meaning keys
// minted under it will decode back as durable references.
func IsKeyOwner(id string) bool {
	return keyOwnerPattern.MatchString(id)
}

func decodeDataURI(uri string) (Ref, error) {
	rest := strings.TrimPrefix(uri, "data:")
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return Ref{}, fmt.Errorf("data uri: missing payload separator")
	}
	meta := rest[:comma]
	payload := rest[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return Ref{}, fmt.Errorf("data uri: only base64 payloads are supported")
	}
	mime := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Ref{}, fmt.Errorf("data uri: decode payload: %w", err)
	}
	return Inline(mime, data), nil
}

// MarshalJSON persists the reference as its encoded string.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Encode())
}

// UnmarshalJSON restores a reference from its encoded string.
func (r *Ref) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*r = Decode(value)
	return nil
}
