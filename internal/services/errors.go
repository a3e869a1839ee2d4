package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrQuota         = errors.New("quota exhausted")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// quotaSignatures are the substrings generative APIs use to report rate or
// usage limit exhaustion. Matching is case-insensitive.
var quotaSignatures = []string{
	"quota",
	"rate limit",
	"rate-limit",
	"resource_exhausted",
	"resource exhausted",
	"too many requests",
	"429",
}

// IsQuota reports whether a failure should be surfaced as a quota error
// rather than a generic one. Tagged errors win; otherwise the message text is
// checked for known rate-limit signatures.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuota) {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, signature := range quotaSignatures {
		if strings.Contains(message, signature) {
			return true
		}
	}
	return false
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
