package postlog

import "encoding/binary"

var (
	logPrefix  = []byte("chan/log/")
	metaSuffix = []byte("m")
	entrySeg   = []byte("e/")
)

func appendBE4(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// sortableTS maps an int64 onto a uint64 whose big-endian bytes sort in the
// same order as the signed value.
func sortableTS(ts int64) uint64 { return uint64(ts) ^ (1 << 63) }

// KeyLogPrefix is the prefix shared by every key of a channel's log.
func KeyLogPrefix(channel string) []byte {
	k := make([]byte, 0, len(logPrefix)+4+len(channel)+1)
	k = append(k, logPrefix...)
	k = appendBE4(k, uint32(len(channel)))
	k = append(k, channel...)
	k = append(k, '/')
	return k
}

// KeyLogMeta builds the metadata key holding lastSeq.
func KeyLogMeta(channel string) []byte {
	return append(KeyLogPrefix(channel), metaSuffix...)
}

// KeyEntryPrefix is the prefix of all entry keys of a channel.
func KeyEntryPrefix(channel string) []byte {
	return append(KeyLogPrefix(channel), entrySeg...)
}

// KeyEntry builds an entry key ordered by (createdAt, seq).
func KeyEntry(channel string, createdAt int64, seq uint64) []byte {
	k := KeyEntryPrefix(channel)
	k = appendBE8(k, sortableTS(createdAt))
	k = append(k, '/')
	k = appendBE8(k, seq)
	return k
}
