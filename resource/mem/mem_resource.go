package mem

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"time"

	"github.com/xxxsen/davfile/resource"
	"github.com/xxxsen/davfile/utils"
)

type memResource struct {
	resource.Base
	resource.Unimplemented
	s *store
	f *memFactory
}

func (r *memResource) node() (*node, error) {
	n, ok := r.s.lookup(r.Path())
	if !ok {
		return nil, fmt.Errorf("lookup %s:%w", r.Path(), os.ErrNotExist)
	}
	return n, nil
}

func (r *memResource) Child(name string) resource.IResource {
	return r.f.NewResource(r.ChildPath(name))
}

func (r *memResource) Parent() resource.IResource {
	return r.f.NewResource(r.ParentPath())
}

func (r *memResource) Exist(ctx context.Context) bool {
	_, ok := r.s.lookup(r.Path())
	return ok
}

func (r *memResource) IsCollection(ctx context.Context) bool {
	n, ok := r.s.lookup(r.Path())
	return ok && n.isDir
}

func (r *memResource) Children(ctx context.Context) ([]resource.IResource, error) {
	names, err := r.s.children(r.Path())
	if err != nil {
		return nil, err
	}
	rs := make([]resource.IResource, 0, len(names))
	for _, name := range names {
		rs = append(rs, r.Child(name))
	}
	return rs, nil
}

func (r *memResource) CreationDate(ctx context.Context) (time.Time, error) {
	n, err := r.node()
	if err != nil {
		return time.Time{}, err
	}
	return n.ctime, nil
}

func (r *memResource) LastModified(ctx context.Context) (time.Time, error) {
	n, err := r.node()
	if err != nil {
		return time.Time{}, err
	}
	return n.mtime, nil
}

func (r *memResource) SetLastModified(ctx context.Context, t time.Time) error {
	return r.s.touch(r.Path(), t)
}

func (r *memResource) Etag(ctx context.Context) (string, error) {
	n, err := r.node()
	if err != nil {
		return "", err
	}
	return utils.ContentEtag(n.data, n.mtime), nil
}

func (r *memResource) ContentType(ctx context.Context) (string, error) {
	n, err := r.node()
	if err != nil {
		return "", err
	}
	if n.isDir {
		return "text/html", nil
	}
	if ct := mime.TypeByExtension(path.Ext(r.Path())); len(ct) != 0 {
		return ct, nil
	}
	return "application/octet-stream", nil
}

func (r *memResource) ContentLength(ctx context.Context) (int64, error) {
	n, err := r.node()
	if err != nil {
		return 0, err
	}
	return int64(len(n.data)), nil
}

func (r *memResource) Get(ctx context.Context, req *resource.Request, resp *resource.Response) error {
	n, err := r.node()
	if err != nil {
		return err
	}
	resp.Body = bytes.NewReader(n.data)
	return nil
}

func (r *memResource) Put(ctx context.Context, req *resource.Request, resp *resource.Response) error {
	data, err := readAll(req.Body)
	if err != nil {
		return fmt.Errorf("read body failed, err:%w", err)
	}
	return r.s.put(r.Path(), data)
}

func (r *memResource) Delete(ctx context.Context) error {
	return r.s.remove(r.Path())
}

func (r *memResource) MakeCollection(ctx context.Context) error {
	return r.s.mkdir(r.Path())
}

func (r *memResource) Copy(ctx context.Context, dst resource.IResource, depth int) error {
	if _, ok := dst.(*memResource); !ok {
		return fmt.Errorf("copy to non mem resource, dst:%s, err:%w", dst.Path(), resource.ErrUnimplemented)
	}
	return r.s.copy(r.Path(), dst.Path(), depth == resource.DepthInfinity)
}

func (r *memResource) Move(ctx context.Context, dst resource.IResource, depth int) error {
	return resource.MoveByCopy(ctx, r, dst, depth)
}
