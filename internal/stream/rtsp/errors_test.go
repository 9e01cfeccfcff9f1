package rtsp

import "testing"

// TestClassifyMessage verifies the keyword buckets and their precedence.
func TestClassifyMessage(t *testing.T) {
	cases := []struct {
		name string
		msg  string
		want ErrorCategory
	}{
		{"connection refused", "Could not connect to server", ErrCategoryNetwork},
		{"dns failure", "failed to resolve hostname: DNS error", ErrCategoryNetwork},
		{"timeout", "RTSP request timeout after 20s", ErrCategoryNetwork},
		{"missing decoder", "no decoder available for H264", ErrCategoryCodec},
		{"caps negotiation", "streaming stopped, reason not-negotiated", ErrCategoryCodec},
		{"bad credentials", "401 Unauthorized", ErrCategoryAuth},
		{"forbidden", "server returned 403 Forbidden", ErrCategoryAuth},
		{"auth beats codec", "authentication failed during caps exchange", ErrCategoryAuth},
		{"codec beats network", "h264 decode error on tcp stream", ErrCategoryCodec},
		{"uppercase input", "CONNECTION RESET", ErrCategoryNetwork},
		{"no keywords", "internal data stream error", ErrCategoryUnknown},
		{"empty", "", ErrCategoryUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyMessage(tc.msg); got != tc.want {
				t.Errorf("classifyMessage(%q) = %s, want %s", tc.msg, got, tc.want)
			}
		})
	}
}

// TestClassifyNilError verifies a nil GStreamer error is unknown, not a panic.
func TestClassifyNilError(t *testing.T) {
	if got := ClassifyGStreamerError(nil); got != ErrCategoryUnknown {
		t.Errorf("ClassifyGStreamerError(nil) = %s, want unknown", got)
	}
}

// TestErrorCategoryString verifies the log labels.
func TestErrorCategoryString(t *testing.T) {
	labels := map[ErrorCategory]string{
		ErrCategoryNetwork: "network",
		ErrCategoryCodec:   "codec",
		ErrCategoryAuth:    "auth",
		ErrCategoryUnknown: "unknown",
	}
	for cat, want := range labels {
		if got := cat.String(); got != want {
			t.Errorf("category %d = %q, want %q", cat, got, want)
		}
	}
}
