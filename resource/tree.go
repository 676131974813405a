package resource

import (
	"context"
	"fmt"
)

// Descendants 通过逐级展开Children得到整棵子树(不含自身), 任何后端都可直接复用
func Descendants(ctx context.Context, r IResource) ([]IResource, error) {
	children, err := r.Children(ctx)
	if err != nil {
		return nil, err
	}
	rs := make([]IResource, 0, len(children))
	for _, child := range children {
		rs = append(rs, child)
		if !child.IsCollection(ctx) {
			continue
		}
		sub, err := Descendants(ctx, child)
		if err != nil {
			return nil, err
		}
		rs = append(rs, sub...)
	}
	return rs, nil
}

// MoveByCopy copy then delete. Not cheap, backends with an atomic rename may do better.
func MoveByCopy(ctx context.Context, src IResource, dst IResource, depth int) error {
	if err := src.Copy(ctx, dst, depth); err != nil {
		return err
	}
	if err := src.Delete(ctx); err != nil {
		return fmt.Errorf("delete source after copy failed, path:%s, err:%w", src.Path(), err)
	}
	return nil
}
