// Package media classifies failures of rendered media elements and probes
// processed artifacts the way a player would.
package media

import "fmt"

// Code enumerates media load failures. Values follow the HTML MediaError codes.
type Code int

const (
	CodeUnknown         Code = 0
	CodeAborted         Code = 1
	CodeNetwork         Code = 2
	CodeDecode          Code = 3
	CodeSrcNotSupported Code = 4
)

func (c Code) String() string {
	switch c {
	case CodeAborted:
		return "aborted"
	case CodeNetwork:
		return "network"
	case CodeDecode:
		return "decode"
	case CodeSrcNotSupported:
		return "src_not_supported"
	default:
		return "unknown"
	}
}

// ParseCode maps a numeric code reported by a player; anything outside the
// enumeration is CodeUnknown.
func ParseCode(n int) Code {
	switch c := Code(n); c {
	case CodeAborted, CodeNetwork, CodeDecode, CodeSrcNotSupported:
		return c
	default:
		return CodeUnknown
	}
}

// Error is a classified media failure.
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "media error: " + e.Code.String()
	}
	return fmt.Sprintf("media error: %s: %s", e.Code, e.Detail)
}
