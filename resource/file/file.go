package file

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davfile/cacheapi"
	cachewrap "github.com/xxxsen/davfile/cacheapi/adaptor"
	"github.com/xxxsen/davfile/resource"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultResourceClass = "file"
	defaultMimeType      = "application/octet-stream"
	collectionMimeType   = "text/html"
)

type fileFactory struct {
	fs    afero.Fs
	opts  *resource.Options
	sniff cacheapi.ICache[string, string]
	sf    singleflight.Group
}

// New 基于afero.Fs构建文件资源工厂, 所有路径都会拼接在opts.Root下
func New(fs afero.Fs, opts *resource.Options) (resource.IFactory, error) {
	if len(opts.Root) == 0 {
		return nil, fmt.Errorf("no root provided")
	}
	f := &fileFactory{fs: fs, opts: opts}
	if opts.SniffCacheSize > 0 {
		c, err := cachewrap.NewStringCache(opts.SniffCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create sniff cache failed, err:%w", err)
		}
		f.sniff = c
	}
	return f, nil
}

func (f *fileFactory) Name() string {
	return defaultResourceClass
}

func (f *fileFactory) NewResource(p string) resource.IResource {
	return &fileResource{
		Base: resource.NewBase(p, f.opts),
		f:    f,
	}
}

func (f *fileFactory) pathname(p string) string {
	return filepath.Join(f.opts.Root, filepath.FromSlash(p))
}

// contentType 优先按扩展名判断, 无法判断时读取文件头部内容识别
func (f *fileFactory) contentType(ctx context.Context, p string, etag string) (string, error) {
	if ct := mime.TypeByExtension(path.Ext(p)); len(ct) != 0 {
		return ct, nil
	}
	if f.sniff == nil {
		return f.detect(ctx, p)
	}
	key := p + "#" + etag
	v, err, _ := f.sf.Do(key, func() (interface{}, error) {
		return cacheapi.Load(ctx, f.sniff, key, func(ctx context.Context, _ string) (string, error) {
			return f.detect(ctx, p)
		})
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (f *fileFactory) detect(ctx context.Context, p string) (string, error) {
	fio, err := f.fs.Open(f.pathname(p))
	if err != nil {
		return "", err
	}
	defer fio.Close()
	m, err := mimetype.DetectReader(fio)
	if err != nil {
		logutil.GetLogger(ctx).Error("detect mime type failed, use default", zap.String("path", p), zap.Error(err))
		return defaultMimeType, nil
	}
	return m.String(), nil
}

func create(opts *resource.Options) (resource.IFactory, error) {
	return New(afero.NewOsFs(), opts)
}

func init() {
	resource.Register(defaultResourceClass, create)
}
