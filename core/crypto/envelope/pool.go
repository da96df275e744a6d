package envelope

import "sync"

var payloadPool = sync.Pool{
	New: func() any {
		return new([WrapPayloadSize]byte)
	},
}

// getPayload returns a zeroed key||nonce buffer.
func getPayload() *[WrapPayloadSize]byte {
	return payloadPool.Get().(*[WrapPayloadSize]byte)
}

// putPayload wipes the buffer before returning it, so key material never
// survives in the pool.
func putPayload(buf *[WrapPayloadSize]byte) {
	clear(buf[:])
	payloadPool.Put(buf)
}
