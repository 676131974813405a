package controller

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/xxxsen/davfile/resource"
)

const hexUpper = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '_' || c == '.' || c == '-' || c == '/'
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// URLEscape 白名单[A-Za-z0-9_.-/]之外的字节都按%XX编码, 空格编码为'+'
func URLEscape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isUnreserved(c):
			sb.WriteByte(c)
		case c == ' ':
			sb.WriteByte('+')
		default:
			sb.WriteByte('%')
			sb.WriteByte(hexUpper[c>>4])
			sb.WriteByte(hexUpper[c&15])
		}
	}
	return sb.String()
}

// URLUnescape URLEscape的逆操作, 非法的%序列原样保留
func URLUnescape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '+':
			sb.WriteByte(' ')
		case '%':
			if i+2 < len(s) {
				hi, ok1 := unhex(s[i+1])
				lo, ok2 := unhex(s[i+2])
				if ok1 && ok2 {
					sb.WriteByte(hi<<4 | lo)
					i += 2
					continue
				}
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func baseURIPrefix(opts *resource.Options) string {
	return strings.TrimSuffix(opts.BaseURI, "/")
}

// stripBaseURI 去掉配置的前缀, 结果总是以'/'开头
func (c *Controller) stripBaseURI(p string) string {
	prefix := baseURIPrefix(c.opts)
	if len(prefix) != 0 && (p == prefix || strings.HasPrefix(p, prefix+"/")) {
		p = strings.TrimPrefix(p, prefix)
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// parseURI 将完整的uri转换为资源路径
func (c *Controller) parseURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	return URLUnescape(c.stripBaseURI(u.EscapedPath())), nil
}

// uri 资源路径转换为对外可见的完整地址
func (c *Controller) uri(p string) string {
	scheme := c.req.Scheme
	if len(scheme) == 0 {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s%s%s", scheme, c.req.Host, baseURIPrefix(c.opts), URLEscape(p))
}

func hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func (c *Controller) depth() int {
	switch c.req.Header.Get("Depth") {
	case "0":
		return 0
	case "1":
		return 1
	}
	return resource.DepthInfinity
}

func (c *Controller) overwrite() bool {
	return strings.ToUpper(c.req.Header.Get("Overwrite")) != "F"
}
