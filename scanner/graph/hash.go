package graph

import (
	"fmt"
	"strconv"

	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash computes a keyed 64-bit hash of data
func Hash(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}

// NodeID derives the deterministic node identifier for an operation.
// The same (file, type, line) triple always produces the same id, so
// rescanning an unchanged file reproduces identical ids.
func NodeID(filePath string, opType OperationType, line int) string {
	data := filePath + "\x00" + string(opType) + "\x00" + strconv.Itoa(line)
	sum, err := Hash([]byte(data))
	if err != nil {
		// the key has a fixed valid length, New64 cannot fail
		return ""
	}
	return fmt.Sprintf("%016x", sum)
}
