package rtsp

import (
	"strings"

	"github.com/tinyzimmer/go-gst/gst"
)

// ErrorCategory classifies GStreamer failures for telemetry: network errors
// are worth reconnecting on, codec and auth errors usually are not.
type ErrorCategory int

const (
	ErrCategoryNetwork ErrorCategory = iota
	ErrCategoryCodec
	ErrCategoryAuth
	ErrCategoryUnknown
)

func (e ErrorCategory) String() string {
	switch e {
	case ErrCategoryNetwork:
		return "network"
	case ErrCategoryCodec:
		return "codec"
	case ErrCategoryAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// ClassifyGStreamerError buckets a pipeline error by message heuristics.
// go-gst does not expose the GLib error domain, so keyword matching over the
// message and debug string is the best signal available.
func ClassifyGStreamerError(gerr *gst.GError) ErrorCategory {
	if gerr == nil {
		return ErrCategoryUnknown
	}
	return classifyMessage(gerr.Error() + " " + gerr.DebugString())
}

// classifyMessage categorizes a combined error and debug string. Auth
// keywords win over codec, codec over network, since the specific categories
// are rarer and their keywords more distinctive.
func classifyMessage(msg string) ErrorCategory {
	combined := strings.ToLower(msg)

	if containsAny(combined, authKeywords) {
		return ErrCategoryAuth
	}
	if containsAny(combined, codecKeywords) {
		return ErrCategoryCodec
	}
	if containsAny(combined, networkKeywords) {
		return ErrCategoryNetwork
	}
	return ErrCategoryUnknown
}

var authKeywords = []string{
	"unauthorized",
	"401",
	"403",
	"forbidden",
	"authentication",
	"credentials",
	"password",
	"username",
}

var codecKeywords = []string{
	"codec",
	"decode",
	"format",
	"negotiation",
	"caps",
	"h264",
	"h265",
	"not negotiated",
	"no decoder",
	"missing plugin",
}

var networkKeywords = []string{
	"connection",
	"timeout",
	"unreachable",
	"network",
	"dns",
	"resolve",
	"socket",
	"tcp",
	"udp",
	"rtsp",
	"not found",
	"could not connect",
	"failed to connect",
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
