//go:build !linux

package file

import (
	"os"
	"time"
)

func statInode(info os.FileInfo) uint64 {
	return 0
}

func statCtime(info os.FileInfo) time.Time {
	return info.ModTime()
}
