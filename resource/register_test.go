package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xxxsen/davfile/status"
)

type stubResource struct {
	Base
	Unimplemented
}

func (s *stubResource) Child(name string) IResource {
	return &stubResource{Base: NewBase(s.ChildPath(name), s.Options())}
}

func (s *stubResource) Parent() IResource {
	return &stubResource{Base: NewBase(s.ParentPath(), s.Options())}
}

func (s *stubResource) Exist(ctx context.Context) bool {
	return true
}

func (s *stubResource) IsCollection(ctx context.Context) bool {
	return false
}

type stubFactory struct {
	opts *Options
}

func (f *stubFactory) Name() string {
	return "stub"
}

func (f *stubFactory) NewResource(p string) IResource {
	return &stubResource{Base: NewBase(p, f.opts)}
}

func TestRegisterCreate(t *testing.T) {
	Register("stub", func(opts *Options) (IFactory, error) {
		return &stubFactory{opts: opts}, nil
	})
	assert.Contains(t, List(), "stub")
	f, err := Create(&Options{ResourceClass: "stub"})
	assert.NoError(t, err)
	assert.Equal(t, "stub", f.Name())
	_, err = Create(&Options{ResourceClass: "not-exist"})
	assert.Error(t, err)
}

func TestUnimplemented(t *testing.T) {
	ctx := context.Background()
	r := (&stubFactory{opts: &Options{}}).NewResource("a/b/../c")
	assert.Equal(t, "/a/c", r.Path())
	assert.Equal(t, "/a", r.Parent().Path())
	assert.Equal(t, "/a/c/d", r.Child("d").Path())

	_, err := r.Children(ctx)
	assert.True(t, errors.Is(err, ErrUnimplemented))
	st, ok := status.FromError(err)
	assert.True(t, ok)
	assert.Equal(t, status.NotImplemented, st)
	assert.True(t, errors.Is(r.Delete(ctx), ErrUnimplemented))
	assert.True(t, errors.Is(r.Copy(ctx, r.Child("x"), DepthInfinity), ErrUnimplemented))
	assert.True(t, errors.Is(r.MakeCollection(ctx), ErrUnimplemented))
	assert.Equal(t, status.Forbidden, r.Post(ctx, &Request{}, NewResponse()))

	_, err = GetProperty(ctx, r, PropGetEtag)
	assert.True(t, errors.Is(err, ErrUnimplemented))
	v, err := GetProperty(ctx, r, PropDisplayName)
	assert.NoError(t, err)
	assert.Equal(t, "c", v.Text)
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, "/", CleanPath(""))
	assert.Equal(t, "/", CleanPath("/"))
	assert.Equal(t, "/a", CleanPath("a/"))
	assert.Equal(t, "/a/b", CleanPath("//a//b/"))
	assert.Equal(t, "/", NewBase("/", nil).ParentPath())
}
