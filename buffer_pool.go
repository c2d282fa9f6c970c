package redis

import "sync"

// Pooled write buffers for encoding outgoing commands. Typical commands are
// small; buffers that grew past the cap are dropped instead of pooled.
const (
	writeBufInitial = 256
	writeBufMax     = 64 * 1024
)

var writeBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, writeBufInitial)
		return &b
	},
}

func getWriteBuf() *[]byte {
	return writeBufPool.Get().(*[]byte)
}

func putWriteBuf(b *[]byte) {
	if cap(*b) > writeBufMax {
		return
	}
	*b = (*b)[:0]
	writeBufPool.Put(b)
}
