package resource

import (
	"fmt"
	"sort"
)

// IFactory 由具体后端提供, 根据逻辑路径构建资源
type IFactory interface {
	Name() string
	NewResource(path string) IResource
}

type CreateFunc func(opts *Options) (IFactory, error)

var mp = make(map[string]CreateFunc)

func Register(name string, fn CreateFunc) {
	mp[name] = fn
}

func Create(opts *Options) (IFactory, error) {
	fn, ok := mp[opts.ResourceClass]
	if !ok {
		return nil, fmt.Errorf("resource class not found, name:%s", opts.ResourceClass)
	}
	return fn(opts)
}

func List() []string {
	rs := make([]string, 0, len(mp))
	for name := range mp {
		rs = append(rs, name)
	}
	sort.Strings(rs)
	return rs
}
