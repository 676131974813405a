package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davfile/resource"
	"github.com/xxxsen/davfile/utils"
	"go.uber.org/zap"
)

const (
	defaultDirMode = 0755
)

type fileResource struct {
	resource.Base
	f *fileFactory
}

func (r *fileResource) fs() afero.Fs {
	return r.f.fs
}

func (r *fileResource) pathname() string {
	return r.f.pathname(r.Path())
}

func (r *fileResource) stat() (os.FileInfo, error) {
	return r.fs().Stat(r.pathname())
}

func (r *fileResource) Child(name string) resource.IResource {
	return r.f.NewResource(r.ChildPath(name))
}

func (r *fileResource) Parent() resource.IResource {
	return r.f.NewResource(r.ParentPath())
}

func (r *fileResource) Exist(ctx context.Context) bool {
	_, err := r.stat()
	return err == nil
}

func (r *fileResource) IsCollection(ctx context.Context) bool {
	info, err := r.stat()
	if err != nil {
		return false
	}
	return info.IsDir()
}

func (r *fileResource) Children(ctx context.Context) ([]resource.IResource, error) {
	infos, err := afero.ReadDir(r.fs(), r.pathname())
	if err != nil {
		return nil, fmt.Errorf("read dir failed, path:%s, err:%w", r.Path(), err)
	}
	rs := make([]resource.IResource, 0, len(infos))
	for _, info := range infos {
		rs = append(rs, r.Child(info.Name()))
	}
	return rs, nil
}

func (r *fileResource) CreationDate(ctx context.Context) (time.Time, error) {
	info, err := r.stat()
	if err != nil {
		return time.Time{}, err
	}
	return statCtime(info), nil
}

func (r *fileResource) LastModified(ctx context.Context) (time.Time, error) {
	info, err := r.stat()
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (r *fileResource) SetLastModified(ctx context.Context, t time.Time) error {
	return r.fs().Chtimes(r.pathname(), time.Now(), t)
}

func (r *fileResource) Etag(ctx context.Context) (string, error) {
	info, err := r.stat()
	if err != nil {
		return "", err
	}
	return utils.FileEtag(statInode(info), info.Size(), info.ModTime()), nil
}

func (r *fileResource) ContentType(ctx context.Context) (string, error) {
	if r.IsCollection(ctx) {
		return collectionMimeType, nil
	}
	etag, err := r.Etag(ctx)
	if err != nil {
		return "", err
	}
	return r.f.contentType(ctx, r.Path(), etag)
}

func (r *fileResource) ContentLength(ctx context.Context) (int64, error) {
	info, err := r.stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (r *fileResource) Get(ctx context.Context, req *resource.Request, resp *resource.Response) error {
	if r.IsCollection(ctx) {
		return r.renderListing(ctx, resp)
	}
	fio, err := r.fs().Open(r.pathname())
	if err != nil {
		return fmt.Errorf("open file failed, path:%s, err:%w", r.Path(), err)
	}
	resp.Body = fio
	return nil
}

func (r *fileResource) Put(ctx context.Context, req *resource.Request, resp *resource.Response) error {
	n, err := utils.SafeSaveIO(r.fs(), r.pathname(), req.Body)
	if err != nil {
		return fmt.Errorf("save file failed, path:%s, err:%w", r.Path(), err)
	}
	logutil.GetLogger(ctx).Debug("write file succ", zap.String("path", r.Path()), zap.String("size", humanize.IBytes(uint64(n))))
	return nil
}

func (r *fileResource) Post(ctx context.Context, req *resource.Request, resp *resource.Response) error {
	return resource.Unimplemented{}.Post(ctx, req, resp)
}

func (r *fileResource) Delete(ctx context.Context) error {
	if r.IsCollection(ctx) {
		return r.fs().RemoveAll(r.pathname())
	}
	return r.fs().Remove(r.pathname())
}

func (r *fileResource) MakeCollection(ctx context.Context) error {
	return r.fs().Mkdir(r.pathname(), defaultDirMode)
}

// Copy 目标已存在时先改名备份, 拷贝成功后删除备份, 失败则还原备份,
// 目标要么是完整的新内容, 要么保持拷贝前的状态
func (r *fileResource) Copy(ctx context.Context, dst resource.IResource, depth int) error {
	d, ok := dst.(*fileResource)
	if !ok {
		return fmt.Errorf("copy to non file resource, dst:%s, err:%w", dst.Path(), resource.ErrUnimplemented)
	}
	collection := r.IsCollection(ctx)
	if err := resource.CheckCopyTarget(r.Path(), d.Path(), collection); err != nil {
		return err
	}
	return r.makeBackupAndDeleteOnSuccess(ctx, d.pathname(), func(created *bool) error {
		if depth == resource.DepthInfinity || !collection {
			return copyTree(r.fs(), r.pathname(), d.pathname(), created)
		}
		if err := r.fs().Mkdir(d.pathname(), defaultDirMode); err != nil {
			return err
		}
		*created = true
		return nil
	})
}

func (r *fileResource) Move(ctx context.Context, dst resource.IResource, depth int) error {
	return resource.MoveByCopy(ctx, r, dst, depth)
}

func backupName(p string) string {
	return filepath.Join(filepath.Dir(p), fmt.Sprintf(".backup.%s.%d.%s", filepath.Base(p), os.Getpid(), uuid.NewString()))
}

// makeBackupAndDeleteOnSuccess fn创建出目标后需要将created置为true,
// 失败时只清理本次创建的内容, 并发请求先一步创建的目标不会被删除
func (r *fileResource) makeBackupAndDeleteOnSuccess(ctx context.Context, p string, fn func(created *bool) error) error {
	fs := r.fs()
	created := false
	if _, err := fs.Stat(p); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := fn(&created); err != nil {
			if created {
				_ = fs.RemoveAll(p)
			}
			return err
		}
		return nil
	}
	backup := backupName(p)
	if err := fs.Rename(p, backup); err != nil {
		return fmt.Errorf("backup dst failed, err:%w", err)
	}
	if err := fn(&created); err != nil {
		//清理拷贝了一半的内容, 再把备份还原回去
		if created {
			if rerr := fs.RemoveAll(p); rerr != nil {
				logutil.GetLogger(ctx).Error("remove partial copy failed", zap.String("path", p), zap.Error(rerr))
			}
		}
		if rerr := fs.Rename(backup, p); rerr != nil {
			logutil.GetLogger(ctx).Error("restore backup failed", zap.String("backup", backup), zap.String("path", p), zap.Error(rerr))
		}
		return err
	}
	if err := fs.RemoveAll(backup); err != nil {
		logutil.GetLogger(ctx).Error("remove backup failed", zap.String("backup", backup), zap.Error(err))
	}
	return nil
}

// copyTree 递归拷贝, 调用方需保证dst不在src子树内; dst根节点创建成功后置created
func copyTree(fs afero.Fs, src string, dst string, created *bool) error {
	info, err := fs.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(fs, src, dst, info.Mode(), created)
	}
	infos, err := afero.ReadDir(fs, src)
	if err != nil {
		return err
	}
	if err := fs.Mkdir(dst, info.Mode().Perm()); err != nil {
		return err
	}
	if created != nil {
		*created = true
	}
	for _, item := range infos {
		if err := copyTree(fs, filepath.Join(src, item.Name()), filepath.Join(dst, item.Name()), nil); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(fs afero.Fs, src string, dst string, mode os.FileMode, created *bool) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		return err
	}
	if created != nil {
		*created = true
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
