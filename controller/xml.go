package controller

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/beevik/etree"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davfile/resource"
	"github.com/xxxsen/davfile/status"
	"go.uber.org/zap"
)

var emptyNamespaceDecl = regexp.MustCompile(`xmlns(?::[a-z]+)?=""`)

// requestDocument 解析请求体, 空body返回nil
func (c *Controller) requestDocument() (*etree.Document, error) {
	if c.doc != nil {
		return c.doc, nil
	}
	body, err := c.readBody()
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	if emptyNamespaceDecl.Match(body) {
		return nil, fmt.Errorf("empty namespace declaration:%w", status.BadRequest)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("parse xml failed, err:%v:%w", err, status.BadRequest)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("no root element:%w", status.BadRequest)
	}
	c.doc = doc
	return doc, nil
}

// requestMatch 按本地名逐级匹配, 最后一级为"*"时返回所有子元素
func (c *Controller) requestMatch(pattern ...string) ([]*etree.Element, error) {
	doc, err := c.requestDocument()
	if err != nil {
		return nil, err
	}
	if doc == nil || len(pattern) == 0 {
		return nil, nil
	}
	root := doc.Root()
	if root.Tag != pattern[0] {
		return nil, nil
	}
	current := []*etree.Element{root}
	for _, tag := range pattern[1:] {
		next := make([]*etree.Element, 0, 8)
		for _, el := range current {
			for _, child := range el.ChildElements() {
				if tag == "*" || child.Tag == tag {
					next = append(next, child)
				}
			}
		}
		current = next
	}
	return current, nil
}

type propEntry struct {
	name  string
	value *resource.PropValue
}

// propStats 按状态码分组的属性结果, 输出时200在前, 其余按状态码升序
type propStats struct {
	groups map[int][]propEntry
}

func newPropStats() *propStats {
	return &propStats{groups: make(map[int][]propEntry)}
}

func (p *propStats) add(st status.Status, name string, value *resource.PropValue) {
	p.groups[st.Code] = append(p.groups[st.Code], propEntry{name: name, value: value})
}

func (p *propStats) codes() []int {
	rs := make([]int, 0, len(p.groups))
	for code := range p.groups {
		rs = append(rs, code)
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i] == status.OK.Code {
			return true
		}
		if rs[j] == status.OK.Code {
			return false
		}
		return rs[i] < rs[j]
	})
	return rs
}

// mapPropError 单个属性的错误不会中断整个响应
func (c *Controller) mapPropError(ctx context.Context, r resource.IResource, name string, err error) status.Status {
	st, ok := status.FromError(err)
	if !ok {
		logutil.GetLogger(ctx).Error("property operation failed", zap.String("path", r.Path()), zap.String("prop", name), zap.Error(err))
		return status.InternalServerError
	}
	return st
}

func (c *Controller) getProperties(ctx context.Context, r resource.IResource, names []string) *propStats {
	stats := newPropStats()
	for _, name := range names {
		v, err := resource.GetProperty(ctx, r, name)
		if err != nil {
			stats.add(c.mapPropError(ctx, r, name, err), name, nil)
			continue
		}
		stats.add(status.OK, name, v)
	}
	return stats
}

type propPair struct {
	name  string
	value string
}

func (c *Controller) setProperties(ctx context.Context, r resource.IResource, sets []propPair, removes []string) *propStats {
	stats := newPropStats()
	for _, pair := range sets {
		if err := resource.SetProperty(ctx, r, pair.name, pair.value); err != nil {
			stats.add(c.mapPropError(ctx, r, pair.name, err), pair.name, nil)
			continue
		}
		stats.add(status.OK, pair.name, nil)
	}
	for _, name := range removes {
		if err := resource.RemoveProperty(ctx, r, name); err != nil {
			stats.add(c.mapPropError(ctx, r, name, err), name, nil)
			continue
		}
		stats.add(status.OK, name, nil)
	}
	return stats
}

func newDavDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc
}

func (c *Controller) renderXML(doc *etree.Document) error {
	doc.Indent(2)
	raw, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("render xml failed, err:%w", err)
	}
	c.resp.Body = bytes.NewReader(raw)
	c.resp.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	c.resp.Header.Set("Content-Length", strconv.Itoa(len(raw)))
	return nil
}

func statusLine(st status.Status) string {
	return "HTTP/1.1 " + st.StatusLine()
}

// multistatus 每个资源一个response, 每个状态码一个propstat
func (c *Controller) multistatus(ctx context.Context, resources []resource.IResource, fn func(r resource.IResource) *propStats) (status.Status, error) {
	doc := newDavDocument()
	ms := doc.CreateElement("D:multistatus")
	ms.CreateAttr("xmlns:D", "DAV:")
	for _, r := range resources {
		resp := ms.CreateElement("D:response")
		resp.CreateElement("D:href").SetText(c.uri(r.Path()))
		renderPropStats(resp, fn(r))
	}
	if err := c.renderXML(doc); err != nil {
		return status.Status{}, err
	}
	return status.MultiStatus, nil
}

func renderPropStats(parent *etree.Element, stats *propStats) {
	for _, code := range stats.codes() {
		ps := parent.CreateElement("D:propstat")
		prop := ps.CreateElement("D:prop")
		for _, entry := range stats.groups[code] {
			el := prop.CreateElement("D:" + entry.name)
			if entry.value == nil {
				continue
			}
			if entry.value.IsStructured() {
				convertElement(el, entry.value.Element)
				continue
			}
			if len(entry.value.Text) != 0 {
				el.SetText(entry.value.Text)
			}
		}
		ps.CreateElement("D:status").SetText(statusLine(status.Status{Code: code}))
	}
}

// convertElement 递归复制结构化属性, 保留标签名/属性/子元素
func convertElement(parent *etree.Element, src *etree.Element) {
	el := parent.CreateElement(src.FullTag())
	for _, attr := range src.Attr {
		el.CreateAttr(attr.FullKey(), attr.Value)
	}
	children := src.ChildElements()
	if len(children) == 0 {
		if text := src.Text(); len(text) != 0 {
			el.SetText(text)
		}
		return
	}
	for _, child := range children {
		convertElement(el, child)
	}
}
