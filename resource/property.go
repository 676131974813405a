package resource

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/xxxsen/davfile/status"
)

const (
	PropCreationDate     = "creationdate"
	PropDisplayName      = "displayname"
	PropGetLastModified  = "getlastmodified"
	PropGetEtag          = "getetag"
	PropResourceType     = "resourcetype"
	PropGetContentType   = "getcontenttype"
	PropGetContentLength = "getcontentlength"
)

var (
	ErrPropertyNotFound = fmt.Errorf("property not found:%w", status.NotFound)
)

// PropValue 属性值, 简单属性使用Text, 结构化属性(如resourcetype)使用Element
type PropValue struct {
	Text    string
	Element *etree.Element
}

func TextValue(s string) *PropValue {
	return &PropValue{Text: s}
}

func (p *PropValue) IsStructured() bool {
	return p != nil && p.Element != nil
}

type propGetter func(ctx context.Context, r IResource) (*PropValue, error)
type propSetter func(ctx context.Context, r IResource, value string) error

type propHandler struct {
	get propGetter
	set propSetter
}

var propertyNames = []string{
	PropCreationDate,
	PropDisplayName,
	PropGetLastModified,
	PropGetEtag,
	PropResourceType,
	PropGetContentType,
	PropGetContentLength,
}

var propHandlers = map[string]propHandler{
	PropResourceType: {get: getResourceType, set: readonlyProperty},
	PropDisplayName:  {get: getDisplayName, set: readonlyProperty},
	PropCreationDate: {
		get: func(ctx context.Context, r IResource) (*PropValue, error) {
			t, err := r.CreationDate(ctx)
			if err != nil {
				return nil, err
			}
			return TextValue(t.UTC().Format(time.RFC3339)), nil
		},
		set: readonlyProperty,
	},
	PropGetContentLength: {
		get: func(ctx context.Context, r IResource) (*PropValue, error) {
			sz, err := r.ContentLength(ctx)
			if err != nil {
				return nil, err
			}
			return TextValue(strconv.FormatInt(sz, 10)), nil
		},
		set: readonlyProperty,
	},
	PropGetContentType: {
		get: func(ctx context.Context, r IResource) (*PropValue, error) {
			ct, err := r.ContentType(ctx)
			if err != nil {
				return nil, err
			}
			return TextValue(ct), nil
		},
		set: readonlyProperty,
	},
	PropGetEtag: {
		get: func(ctx context.Context, r IResource) (*PropValue, error) {
			etag, err := r.Etag(ctx)
			if err != nil {
				return nil, err
			}
			return TextValue(QuoteEtag(etag)), nil
		},
		set: readonlyProperty,
	},
	PropGetLastModified: {
		get: func(ctx context.Context, r IResource) (*PropValue, error) {
			t, err := r.LastModified(ctx)
			if err != nil {
				return nil, err
			}
			return TextValue(t.UTC().Format(http.TimeFormat)), nil
		},
		set: setLastModified,
	},
}

func getResourceType(ctx context.Context, r IResource) (*PropValue, error) {
	if !r.IsCollection(ctx) {
		return &PropValue{}, nil
	}
	return &PropValue{Element: etree.NewElement("D:collection")}, nil
}

func getDisplayName(ctx context.Context, r IResource) (*PropValue, error) {
	return TextValue(NewBase(r.Path(), nil).Name()), nil
}

func setLastModified(ctx context.Context, r IResource, value string) error {
	t, err := http.ParseTime(value)
	if err != nil {
		return fmt.Errorf("parse last modified failed, value:%s, err:%w", value, status.Conflict)
	}
	return r.SetLastModified(ctx, t)
}

func readonlyProperty(ctx context.Context, r IResource, value string) error {
	return status.Forbidden
}

func QuoteEtag(etag string) string {
	return `"` + etag + `"`
}

// PropertyNames 标准WebDAV属性集合
func PropertyNames() []string {
	rs := make([]string, len(propertyNames))
	copy(rs, propertyNames)
	return rs
}

// GetProperty 未知属性返回ErrPropertyNotFound
func GetProperty(ctx context.Context, r IResource, name string) (*PropValue, error) {
	h, ok := propHandlers[name]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	return h.get(ctx, r)
}

// SetProperty 未知属性不做任何处理
func SetProperty(ctx context.Context, r IResource, name string, value string) error {
	h, ok := propHandlers[name]
	if !ok {
		return nil
	}
	return h.set(ctx, r, value)
}

// RemoveProperty no backend supports removing properties.
func RemoveProperty(ctx context.Context, r IResource, name string) error {
	return status.Forbidden
}
