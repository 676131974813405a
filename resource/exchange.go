package resource

import (
	"io"
	"net/http"
)

// Request 由传输层适配器构造, Path为未解码的原始路径
type Request struct {
	Method     string
	Scheme     string
	Host       string
	Path       string
	RequestURI string
	Header     http.Header
	Body       io.Reader
}

type Response struct {
	Status int
	Header http.Header
	// Body 可能是io.Closer, 由适配器负责关闭
	Body io.Reader
}

func NewResponse() *Response {
	return &Response{
		Header: make(http.Header),
	}
}
