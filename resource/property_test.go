package resource_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xxxsen/davfile/resource"
	"github.com/xxxsen/davfile/resource/mem"
	"github.com/xxxsen/davfile/status"
)

func newMem(t *testing.T) resource.IFactory {
	f, err := mem.New(&resource.Options{ResourceClass: "mem"})
	assert.NoError(t, err)
	return f
}

func TestGetProperty(t *testing.T) {
	ctx := context.Background()
	f := newMem(t)
	dir := f.NewResource("/dir")
	assert.NoError(t, dir.MakeCollection(ctx))
	file := dir.Child("a.txt")
	assert.NoError(t, file.Put(ctx, &resource.Request{Body: strings.NewReader("abc")}, resource.NewResponse()))

	v, err := resource.GetProperty(ctx, dir, resource.PropResourceType)
	assert.NoError(t, err)
	assert.True(t, v.IsStructured())
	assert.Equal(t, "D:collection", v.Element.FullTag())

	v, err = resource.GetProperty(ctx, file, resource.PropResourceType)
	assert.NoError(t, err)
	assert.False(t, v.IsStructured())
	assert.Empty(t, v.Text)

	v, err = resource.GetProperty(ctx, file, resource.PropGetContentLength)
	assert.NoError(t, err)
	assert.Equal(t, "3", v.Text)

	v, err = resource.GetProperty(ctx, file, resource.PropDisplayName)
	assert.NoError(t, err)
	assert.Equal(t, "a.txt", v.Text)

	v, err = resource.GetProperty(ctx, file, resource.PropGetEtag)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(v.Text, `"`) && strings.HasSuffix(v.Text, `"`))

	v, err = resource.GetProperty(ctx, file, resource.PropCreationDate)
	assert.NoError(t, err)
	_, err = time.Parse(time.RFC3339, v.Text)
	assert.NoError(t, err)

	v, err = resource.GetProperty(ctx, file, resource.PropGetLastModified)
	assert.NoError(t, err)
	_, err = http.ParseTime(v.Text)
	assert.NoError(t, err)

	_, err = resource.GetProperty(ctx, file, "unknown")
	assert.True(t, errors.Is(err, resource.ErrPropertyNotFound))
	st, ok := status.FromError(err)
	assert.True(t, ok)
	assert.Equal(t, status.NotFound, st)

	_, err = resource.GetProperty(ctx, f.NewResource("/missing"), resource.PropGetContentLength)
	assert.Error(t, err)
}

func TestSetProperty(t *testing.T) {
	ctx := context.Background()
	f := newMem(t)
	file := f.NewResource("/a")
	assert.NoError(t, file.Put(ctx, &resource.Request{Body: strings.NewReader("a")}, resource.NewResponse()))

	assert.NoError(t, resource.SetProperty(ctx, file, resource.PropGetLastModified, "Mon, 02 Jan 2006 15:04:05 GMT"))
	mtime, err := file.LastModified(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1136214245), mtime.Unix())

	err = resource.SetProperty(ctx, file, resource.PropGetLastModified, "yesterday")
	assert.True(t, errors.Is(err, status.Conflict))

	for _, name := range []string{resource.PropResourceType, resource.PropGetEtag, resource.PropGetContentType, resource.PropDisplayName} {
		assert.Equal(t, status.Forbidden, resource.SetProperty(ctx, file, name, "x"), "name:%s", name)
	}
	assert.NoError(t, resource.SetProperty(ctx, file, "unknown", "x"))
	assert.Equal(t, status.Forbidden, resource.RemoveProperty(ctx, file, resource.PropGetEtag))
}

func TestPropertyNames(t *testing.T) {
	names := resource.PropertyNames()
	assert.Len(t, names, 7)
	names[0] = "changed"
	assert.NotEqual(t, "changed", resource.PropertyNames()[0])
}
