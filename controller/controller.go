package controller

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davfile/resource"
	"github.com/xxxsen/davfile/status"
	"go.uber.org/zap"
)

// Controller 单个请求的处理状态机: 解析资源 -> 执行guard -> 分发方法 -> 写回状态
// 每个请求单独构建, 请求之间只共享只读的options
type Controller struct {
	req     *resource.Request
	resp    *resource.Response
	factory resource.IFactory
	opts    *resource.Options

	res    resource.IResource
	future resource.IResource
	dest   *url.URL
	body   []byte
	isRead bool
	doc    *etree.Document
}

func New(req *resource.Request, resp *resource.Response, factory resource.IFactory, opts *resource.Options) *Controller {
	if req.Header == nil {
		req.Header = make(map[string][]string)
	}
	if resp.Header == nil {
		resp.Header = make(map[string][]string)
	}
	return &Controller{
		req:     req,
		resp:    resp,
		factory: factory,
		opts:    opts,
	}
}

// Run 处理请求并将最终状态写入resp.Status.
// 只有无法映射为状态码的错误才会返回, 由适配器决定如何应答
func (c *Controller) Run(ctx context.Context) error {
	if litmus := c.req.Header.Get("X-Litmus"); len(litmus) != 0 {
		logutil.GetLogger(ctx).Info("******** litmus ********", zap.String("litmus", litmus))
	}
	method := strings.ToUpper(c.req.Method)
	st, err := c.run(ctx, method)
	if err != nil {
		mapped, ok := status.FromError(err)
		if !ok {
			logutil.GetLogger(ctx).Error("unmapped error", zap.String("method", method), zap.String("path", c.req.Path), zap.Error(err))
			return err
		}
		if !mapped.IsSuccess() {
			logutil.GetLogger(ctx).Debug("request terminated with status", zap.String("method", method),
				zap.String("path", c.req.Path), zap.Int("status", mapped.Code), zap.Error(err))
		}
		st = mapped
	}
	c.resp.Status = st.Code
	return nil
}

func (c *Controller) run(ctx context.Context, method string) (status.Status, error) {
	if err := c.guard(ctx, method); err != nil {
		return status.Status{}, err
	}
	fn, ok := davMethods[method]
	if !ok {
		c.resp.Header.Set("Allow", allowMethods)
		return status.MethodNotAllowed, nil
	}
	return fn(c, ctx)
}

func (c *Controller) newResource(p string) resource.IResource {
	return c.factory.NewResource(p)
}

func hasTraversal(p string) bool {
	return strings.Contains(p, "..")
}

// resource 请求路径对应的资源, 路径穿越与fragment直接拒绝
func (c *Controller) resource() (resource.IResource, error) {
	if c.res != nil {
		return c.res, nil
	}
	if hasTraversal(c.req.Path) || strings.Contains(c.req.RequestURI, "#") {
		return nil, status.Forbidden
	}
	p := URLUnescape(c.stripBaseURI(c.req.Path))
	if hasTraversal(p) || strings.Contains(p, "#") {
		return nil, status.Forbidden
	}
	c.res = c.newResource(p)
	return c.res, nil
}

func (c *Controller) destination() (*url.URL, error) {
	if c.dest != nil {
		return c.dest, nil
	}
	raw := c.req.Header.Get("Destination")
	if len(raw) == 0 {
		return nil, fmt.Errorf("no destination header:%w", status.BadRequest)
	}
	u, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return nil, err
	}
	c.dest = u
	return u, nil
}

func (c *Controller) futureResource() (resource.IResource, error) {
	if c.future != nil {
		return c.future, nil
	}
	dest, err := c.destination()
	if err != nil {
		return nil, err
	}
	p, err := c.parseURI(dest.String())
	if err != nil {
		return nil, err
	}
	if hasTraversal(p) {
		return nil, status.Forbidden
	}
	c.future = c.newResource(p)
	return c.future, nil
}

func (c *Controller) readBody() ([]byte, error) {
	if c.isRead {
		return c.body, nil
	}
	c.isRead = true
	if c.req.Body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(c.req.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body failed, err:%w", err)
	}
	c.body = raw
	return raw, nil
}

func (c *Controller) findResources(ctx context.Context) ([]resource.IResource, error) {
	res, err := c.resource()
	if err != nil {
		return nil, err
	}
	depth := c.depth()
	if depth == 0 || !res.IsCollection(ctx) {
		return []resource.IResource{res}, nil
	}
	var sub []resource.IResource
	if depth == 1 {
		sub, err = res.Children(ctx)
	} else {
		sub, err = resource.Descendants(ctx, res)
	}
	if err != nil {
		return nil, err
	}
	return append([]resource.IResource{res}, sub...), nil
}
