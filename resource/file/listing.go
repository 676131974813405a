package file

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/xxxsen/davfile/resource"
)

// renderListing 集合上的GET返回一个简单的html目录列表
func (r *fileResource) renderListing(ctx context.Context, resp *resource.Response) error {
	children, err := r.Children(ctx)
	if err != nil {
		return err
	}
	buf := bytes.NewBuffer(nil)
	title := html.EscapeString(r.Path())
	fmt.Fprintf(buf, "<html><head><title>%s</title></head><body>\n<h1>%s</h1>\n<table>\n", title, title)
	buf.WriteString("<tr><th>Name</th><th>Size</th><th>Type</th><th>Last Modified</th></tr>\n")
	if r.Path() != "/" {
		buf.WriteString("<tr><td><a href=\"../\">../</a></td><td></td><td></td><td></td></tr>\n")
	}
	for _, child := range children {
		name := path.Base(child.Path())
		size := "-"
		if !child.IsCollection(ctx) {
			if sz, err := child.ContentLength(ctx); err == nil {
				size = humanize.IBytes(uint64(sz))
			}
		} else {
			name += "/"
		}
		ct, _ := child.ContentType(ctx)
		mtime := ""
		if t, err := child.LastModified(ctx); err == nil {
			mtime = t.UTC().Format(http.TimeFormat)
		}
		link := (&url.URL{Path: name}).String()
		fmt.Fprintf(buf, "<tr><td><a href=\"%s\">%s</a></td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(link), html.EscapeString(name), size, html.EscapeString(ct), mtime)
	}
	buf.WriteString("</table>\n</body></html>\n")
	resp.Header.Set("Content-Length", strconv.Itoa(buf.Len()))
	resp.Body = buf
	return nil
}
