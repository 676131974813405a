package resource

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/xxxsen/davfile/status"
)

const (
	DepthInfinity = -1
)

var (
	ErrUnimplemented = fmt.Errorf("resource operation unimplemented:%w", status.NotImplemented)
)

// Options 所有资源共享的只读配置
type Options struct {
	Root           string
	ResourceClass  string
	BaseURI        string
	SniffCacheSize int64
}

// IResource 存储后端需要实现的能力集合, 每个请求都会重新构建, 本身不持有生命周期
type IResource interface {
	Path() string
	Options() *Options
	Child(name string) IResource
	Parent() IResource

	Exist(ctx context.Context) bool
	IsCollection(ctx context.Context) bool
	// Children 仅在集合上可用
	Children(ctx context.Context) ([]IResource, error)

	CreationDate(ctx context.Context) (time.Time, error)
	LastModified(ctx context.Context) (time.Time, error)
	SetLastModified(ctx context.Context, t time.Time) error
	Etag(ctx context.Context) (string, error)
	ContentType(ctx context.Context) (string, error)
	ContentLength(ctx context.Context) (int64, error)

	Get(ctx context.Context, req *Request, resp *Response) error
	Put(ctx context.Context, req *Request, resp *Response) error
	Post(ctx context.Context, req *Request, resp *Response) error
	Delete(ctx context.Context) error
	Copy(ctx context.Context, dst IResource, depth int) error
	Move(ctx context.Context, dst IResource, depth int) error
	MakeCollection(ctx context.Context) error
}

// Base path + options, equality is decided by path only.
type Base struct {
	path string
	opts *Options
}

func NewBase(p string, opts *Options) Base {
	return Base{path: CleanPath(p), opts: opts}
}

func (b Base) Path() string {
	return b.path
}

func (b Base) Options() *Options {
	return b.opts
}

func (b Base) Name() string {
	return path.Base(b.path)
}

func (b Base) ChildPath(name string) string {
	return path.Join(b.path, name)
}

// ParentPath 根目录的父目录仍是自己
func (b Base) ParentPath() string {
	return path.Dir(b.path)
}

func CleanPath(p string) string {
	if len(p) == 0 || p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

func Equal(a, b IResource) bool {
	return a.Path() == b.Path()
}

// IsDescendant p位于root之下, 不含root本身; root为"/"时除根以外都算
func IsDescendant(p string, root string) bool {
	if root == "/" {
		return p != "/"
	}
	return strings.HasPrefix(p, root+"/")
}

// ErrCopyIntoSelf 集合不能拷贝/移动到自身或自身的子树中
var ErrCopyIntoSelf = fmt.Errorf("destination inside source collection:%w", status.Forbidden)

// CheckCopyTarget 集合拷贝的目标为自身或位于自身子树时返回ErrCopyIntoSelf
func CheckCopyTarget(src string, dst string, collection bool) error {
	if src == dst || (collection && IsDescendant(dst, src)) {
		return ErrCopyIntoSelf
	}
	return nil
}

// Unimplemented 后端可以嵌入该结构, 未覆盖的能力一律返回ErrUnimplemented
type Unimplemented struct{}

func (Unimplemented) Children(ctx context.Context) ([]IResource, error) {
	return nil, ErrUnimplemented
}

func (Unimplemented) CreationDate(ctx context.Context) (time.Time, error) {
	return time.Time{}, ErrUnimplemented
}

func (Unimplemented) LastModified(ctx context.Context) (time.Time, error) {
	return time.Time{}, ErrUnimplemented
}

func (Unimplemented) SetLastModified(ctx context.Context, t time.Time) error {
	return ErrUnimplemented
}

func (Unimplemented) Etag(ctx context.Context) (string, error) {
	return "", ErrUnimplemented
}

func (Unimplemented) ContentType(ctx context.Context) (string, error) {
	return "", ErrUnimplemented
}

func (Unimplemented) ContentLength(ctx context.Context) (int64, error) {
	return 0, ErrUnimplemented
}

func (Unimplemented) Get(ctx context.Context, req *Request, resp *Response) error {
	return ErrUnimplemented
}

func (Unimplemented) Put(ctx context.Context, req *Request, resp *Response) error {
	return ErrUnimplemented
}

// Post is forbidden unless a backend overrides it.
func (Unimplemented) Post(ctx context.Context, req *Request, resp *Response) error {
	return status.Forbidden
}

func (Unimplemented) Delete(ctx context.Context) error {
	return ErrUnimplemented
}

func (Unimplemented) Copy(ctx context.Context, dst IResource, depth int) error {
	return ErrUnimplemented
}

func (Unimplemented) Move(ctx context.Context, dst IResource, depth int) error {
	return ErrUnimplemented
}

func (Unimplemented) MakeCollection(ctx context.Context) error {
	return ErrUnimplemented
}
