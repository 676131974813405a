package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// TempName 生成与dst同目录的临时文件名, 包含进程号与随机id, 保证并发请求之间不会冲突
func TempName(dst string) string {
	return fmt.Sprintf("%s.%d.%s.temp", dst, os.Getpid(), uuid.NewString())
}

// SafeSaveIO 先写入临时文件, 再通过rename覆盖目标文件, 读者永远不会看到写了一半的文件
func SafeSaveIO(fs afero.Fs, dst string, r io.Reader) (int64, error) {
	dstTmp := TempName(dst)
	f, err := fs.OpenFile(dstTmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, fmt.Errorf("create tmp file failed, err:%w", err)
	}
	defer func() {
		_ = fs.Remove(dstTmp)
	}()
	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("copy stream to tmp file failed, err:%w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close tmp file failed, err:%w", err)
	}
	if err := fs.Rename(dstTmp, dst); err != nil {
		return 0, fmt.Errorf("rename tmp file to target failed, err:%w", err)
	}
	return n, nil
}
