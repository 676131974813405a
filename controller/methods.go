package controller

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/xxxsen/davfile/resource"
	"github.com/xxxsen/davfile/status"
)

const (
	allowMethods = "OPTIONS,HEAD,GET,PUT,POST,DELETE,PROPFIND,PROPPATCH,MKCOL,COPY,MOVE,LOCK,UNLOCK"
	lockTimeout  = "Second-60"
)

type davMethod func(c *Controller, ctx context.Context) (status.Status, error)

var davMethods = map[string]davMethod{
	"OPTIONS":   (*Controller).davOptions,
	"HEAD":      (*Controller).davHead,
	"GET":       (*Controller).davGet,
	"PUT":       (*Controller).davPut,
	"POST":      (*Controller).davPost,
	"DELETE":    (*Controller).davDelete,
	"MKCOL":     (*Controller).davMkcol,
	"COPY":      (*Controller).davCopy,
	"MOVE":      (*Controller).davMove,
	"PROPFIND":  (*Controller).davPropfind,
	"PROPPATCH": (*Controller).davProppatch,
	"LOCK":      (*Controller).davLock,
	"UNLOCK":    (*Controller).davUnlock,
}

// AllowMethods 适配器需要为这些方法注册路由
func AllowMethods() []string {
	return strings.Split(allowMethods, ",")
}

func (c *Controller) davOptions(ctx context.Context) (status.Status, error) {
	c.resp.Header.Set("Allow", allowMethods)
	c.resp.Header.Set("DAV", "1,2")
	c.resp.Header.Set("MS-Author-Via", "DAV")
	return status.OK, nil
}

func (c *Controller) setMetaHeaders(ctx context.Context, r resource.IResource) error {
	etag, err := r.Etag(ctx)
	if err != nil {
		return err
	}
	ct, err := r.ContentType(ctx)
	if err != nil {
		return err
	}
	mtime, err := r.LastModified(ctx)
	if err != nil {
		return err
	}
	c.resp.Header.Set("Etag", resource.QuoteEtag(etag))
	c.resp.Header.Set("Content-Type", ct)
	c.resp.Header.Set("Last-Modified", mtime.UTC().Format(http.TimeFormat))
	return nil
}

func (c *Controller) davHead(ctx context.Context) (status.Status, error) {
	res, err := c.resource()
	if err != nil {
		return status.Status{}, err
	}
	if err := c.setMetaHeaders(ctx, res); err != nil {
		return status.Status{}, err
	}
	return status.OK, nil
}

func (c *Controller) davGet(ctx context.Context) (status.Status, error) {
	res, err := c.resource()
	if err != nil {
		return status.Status{}, err
	}
	if err := res.Get(ctx, c.req, c.resp); err != nil {
		return status.Status{}, err
	}
	if !res.IsCollection(ctx) {
		sz, err := res.ContentLength(ctx)
		if err != nil {
			return status.Status{}, err
		}
		c.resp.Header.Set("Content-Length", strconv.FormatInt(sz, 10))
	}
	if err := c.setMetaHeaders(ctx, res); err != nil {
		return status.Status{}, err
	}
	return status.OK, nil
}

func (c *Controller) davPut(ctx context.Context) (status.Status, error) {
	res, err := c.resource()
	if err != nil {
		return status.Status{}, err
	}
	if err := res.Put(ctx, c.req, c.resp); err != nil {
		return status.Status{}, err
	}
	return status.Created, nil
}

func (c *Controller) davPost(ctx context.Context) (status.Status, error) {
	res, err := c.resource()
	if err != nil {
		return status.Status{}, err
	}
	if err := res.Post(ctx, c.req, c.resp); err != nil {
		return status.Status{}, err
	}
	return status.Created, nil
}

func (c *Controller) davDelete(ctx context.Context) (status.Status, error) {
	res, err := c.resource()
	if err != nil {
		return status.Status{}, err
	}
	if err := res.Delete(ctx); err != nil {
		return status.Status{}, err
	}
	return status.OK, nil
}

func (c *Controller) davMkcol(ctx context.Context) (status.Status, error) {
	res, err := c.resource()
	if err != nil {
		return status.Status{}, err
	}
	if err := res.MakeCollection(ctx); err != nil {
		return status.Status{}, err
	}
	return status.Created, nil
}

// withFutureResource 目标在操作前已存在返回204, 否则返回201
func (c *Controller) withFutureResource(ctx context.Context, fn func(res, future resource.IResource) error) (status.Status, error) {
	res, err := c.resource()
	if err != nil {
		return status.Status{}, err
	}
	future, err := c.futureResource()
	if err != nil {
		return status.Status{}, err
	}
	result := status.Created
	if future.Exist(ctx) {
		result = status.NoContent
	}
	if err := fn(res, future); err != nil {
		return status.Status{}, err
	}
	return result, nil
}

func (c *Controller) davCopy(ctx context.Context) (status.Status, error) {
	depth := c.depth()
	return c.withFutureResource(ctx, func(res, future resource.IResource) error {
		return res.Copy(ctx, future, depth)
	})
}

// davMove 集合的移动总是按无限深度处理, 否则删除源时会丢失子项
func (c *Controller) davMove(ctx context.Context) (status.Status, error) {
	return c.withFutureResource(ctx, func(res, future resource.IResource) error {
		return res.Move(ctx, future, resource.DepthInfinity)
	})
}

func elementNames(els []*etree.Element) []string {
	rs := make([]string, 0, len(els))
	for _, el := range els {
		rs = append(rs, el.Tag)
	}
	return rs
}

func (c *Controller) davPropfind(ctx context.Context) (status.Status, error) {
	allprop, err := c.requestMatch("propfind", "allprop")
	if err != nil {
		return status.Status{}, err
	}
	var names []string
	if len(allprop) == 0 {
		props, err := c.requestMatch("propfind", "prop", "*")
		if err != nil {
			return status.Status{}, err
		}
		names = elementNames(props)
	}
	if len(names) == 0 {
		names = resource.PropertyNames()
	}
	resources, err := c.findResources(ctx)
	if err != nil {
		return status.Status{}, err
	}
	return c.multistatus(ctx, resources, func(r resource.IResource) *propStats {
		return c.getProperties(ctx, r, names)
	})
}

func (c *Controller) davProppatch(ctx context.Context) (status.Status, error) {
	res, err := c.resource()
	if err != nil {
		return status.Status{}, err
	}
	setEls, err := c.requestMatch("propertyupdate", "set", "prop", "*")
	if err != nil {
		return status.Status{}, err
	}
	removeEls, err := c.requestMatch("propertyupdate", "remove", "prop", "*")
	if err != nil {
		return status.Status{}, err
	}
	sets := make([]propPair, 0, len(setEls))
	for _, el := range setEls {
		sets = append(sets, propPair{name: el.Tag, value: el.Text()})
	}
	removes := elementNames(removeEls)
	return c.multistatus(ctx, []resource.IResource{res}, func(r resource.IResource) *propStats {
		return c.setProperties(ctx, r, sets, removes)
	})
}

func firstName(els []*etree.Element, def string) string {
	if len(els) == 0 {
		return def
	}
	return els[0].Tag
}

// makeLockToken 没有锁表, token仅由时间与etag拼接而成, 不做持久化
func makeLockToken(now time.Time, etag string) string {
	return fmt.Sprintf("opaquelocktoken:%x-%x-%s", now.Unix(), now.Second(), etag)
}

func (c *Controller) davLock(ctx context.Context) (status.Status, error) {
	res, err := c.resource()
	if err != nil {
		return status.Status{}, err
	}
	scopes, err := c.requestMatch("lockinfo", "lockscope", "*")
	if err != nil {
		return status.Status{}, err
	}
	types, err := c.requestMatch("lockinfo", "locktype", "*")
	if err != nil {
		return status.Status{}, err
	}
	owners, err := c.requestMatch("lockinfo", "owner", "href")
	if err != nil {
		return status.Status{}, err
	}
	etag, err := res.Etag(ctx)
	if err != nil {
		return status.Status{}, err
	}
	token := makeLockToken(time.Now(), etag)
	c.resp.Header.Set("Lock-Token", "<"+token+">")

	doc := newDavDocument()
	prop := doc.CreateElement("D:prop")
	prop.CreateAttr("xmlns:D", "DAV:")
	active := prop.CreateElement("D:lockdiscovery").CreateElement("D:activelock")
	active.CreateElement("D:lockscope").CreateElement("D:" + firstName(scopes, "exclusive"))
	active.CreateElement("D:locktype").CreateElement("D:" + firstName(types, "write"))
	active.CreateElement("D:depth").SetText("Infinity")
	if len(owners) != 0 {
		active.CreateElement("D:owner").CreateElement("D:href").SetText(owners[0].Text())
	}
	active.CreateElement("D:timeout").SetText(lockTimeout)
	active.CreateElement("D:locktoken").CreateElement("D:href").SetText(token)
	if err := c.renderXML(doc); err != nil {
		return status.Status{}, err
	}
	return status.OK, nil
}

// davUnlock 没有锁表可查, 总是成功
func (c *Controller) davUnlock(ctx context.Context) (status.Status, error) {
	return status.NoContent, nil
}
