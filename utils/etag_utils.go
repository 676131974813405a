package utils

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// FileEtag inode, size and mtime in hex.
func FileEtag(ino uint64, size int64, mtime time.Time) string {
	return fmt.Sprintf("%x-%x-%x", ino, size, mtime.Unix())
}

// ContentEtag 无inode的后端使用内容哈希+修改时间
func ContentEtag(data []byte, mtime time.Time) string {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(mtime.UnixNano()))
	d := xxhash.New()
	_, _ = d.Write(data)
	_, _ = d.Write(buf)
	return fmt.Sprintf("%x-%x", d.Sum64(), len(data))
}
