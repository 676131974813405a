package webdav

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davfile/controller"
	"github.com/xxxsen/davfile/resource"
	"go.uber.org/zap"
)

type webdavHandler struct {
	factory resource.IFactory
	opts    *resource.Options
}

func NewWebdavHandler(factory resource.IFactory, opts *resource.Options) *webdavHandler {
	return &webdavHandler{factory: factory, opts: opts}
}

func AllowMethods() []string {
	return controller.AllowMethods()
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func buildRequest(r *http.Request) *resource.Request {
	return &resource.Request{
		Method:     r.Method,
		Scheme:     scheme(r),
		Host:       r.Host,
		Path:       r.URL.EscapedPath(),
		RequestURI: r.RequestURI,
		Header:     r.Header,
		Body:       r.Body,
	}
}

func (h *webdavHandler) Handler(c *gin.Context) {
	ctx := c.Request.Context()
	req := buildRequest(c.Request)
	resp := resource.NewResponse()
	defer closeBody(resp)
	if err := controller.New(req, resp, h.factory, h.opts).Run(ctx); err != nil {
		logutil.GetLogger(ctx).Error("handle webdav request failed", zap.String("method", req.Method),
			zap.String("path", req.Path), zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	writeResponse(c, resp)
}

func writeResponse(c *gin.Context, resp *resource.Response) {
	header := c.Writer.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	c.Status(resp.Status)
	c.Writer.WriteHeaderNow()
	if resp.Body == nil || c.Request.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		logutil.GetLogger(c.Request.Context()).Error("write response body failed", zap.Error(err))
	}
}

func closeBody(resp *resource.Response) {
	if cl, ok := resp.Body.(io.Closer); ok {
		_ = cl.Close()
	}
}
