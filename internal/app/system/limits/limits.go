// internal/app/system/limits/limits.go
package limits

// Size limits for inbound payloads.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size of a decoded HTTP request body.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxChatFrameSize is the read limit on a single websocket frame.
	MaxChatFrameSize = 16 << 10 // 16 KB

	// MaxChatMessageRunes is the longest chat message text accepted.
	MaxChatMessageRunes = 2000
)
