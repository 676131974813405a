package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xxxsen/davfile/resource"
)

func TestURLEscape(t *testing.T) {
	assert.Equal(t, "/a+b/c%26d", URLEscape("/a b/c&d"))
	assert.Equal(t, "/A-z_0.9/", URLEscape("/A-z_0.9/"))
	assert.Equal(t, "%2B%25", URLEscape("+%"))
	assert.Equal(t, "%E4%B8%AD", URLEscape("中"))
}

func TestURLUnescape(t *testing.T) {
	assert.Equal(t, "/a b/c&d", URLUnescape("/a+b/c%26d"))
	assert.Equal(t, "%zz%", URLUnescape("%zz%"))
	assert.Equal(t, "%4", URLUnescape("%4"))
	assert.Equal(t, "中", URLUnescape("%e4%b8%ad"))
}

func TestURLRoundTrip(t *testing.T) {
	for _, s := range []string{"", "/", "/a b", "/100%/x+y", "/中文/文件.txt", "/#?&=;", "/~user/.hidden"} {
		assert.Equal(t, s, URLUnescape(URLEscape(s)), "s:%s", s)
	}
}

func TestParseURI(t *testing.T) {
	c := New(&resource.Request{Scheme: "https", Host: "example.com"}, resource.NewResponse(), nil, &resource.Options{BaseURI: "/dav/"})
	p, err := c.parseURI("https://example.com/dav/a+b/c%20d")
	assert.NoError(t, err)
	assert.Equal(t, "/a b/c d", p)
	p, err = c.parseURI("/dav")
	assert.NoError(t, err)
	assert.Equal(t, "/", p)
	p, err = c.parseURI("/other/x")
	assert.NoError(t, err)
	assert.Equal(t, "/other/x", p)
	_, err = c.parseURI("http://[::1")
	assert.Error(t, err)

	assert.Equal(t, "https://example.com/dav/a+b", c.uri("/a b"))
}

func TestDepthOverwrite(t *testing.T) {
	req := &resource.Request{Header: make(http.Header)}
	c := New(req, resource.NewResponse(), nil, &resource.Options{})
	assert.Equal(t, resource.DepthInfinity, c.depth())
	assert.True(t, c.overwrite())
	req.Header.Set("Depth", "0")
	assert.Equal(t, 0, c.depth())
	req.Header.Set("Depth", "1")
	assert.Equal(t, 1, c.depth())
	req.Header.Set("Depth", "infinity")
	assert.Equal(t, resource.DepthInfinity, c.depth())
	req.Header.Set("Overwrite", "F")
	assert.False(t, c.overwrite())
	req.Header.Set("Overwrite", "T")
	assert.True(t, c.overwrite())
	assert.Equal(t, "localhost", hostname("localhost:8080"))
	assert.Equal(t, "localhost", hostname("localhost"))
}
