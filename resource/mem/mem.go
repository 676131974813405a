package mem

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/davfile/resource"
)

const (
	defaultResourceClass = "mem"
)

type node struct {
	isDir bool
	data  []byte
	ctime time.Time
	mtime time.Time
}

func (n *node) clone() *node {
	cp := *n
	if n.data != nil {
		cp.data = append([]byte(nil), n.data...)
	}
	return &cp
}

// store 进程内的目录树, key为规范化后的路径
type store struct {
	mu    sync.RWMutex
	nodes map[string]*node
}

func newStore() *store {
	now := time.Now()
	return &store{
		nodes: map[string]*node{
			"/": {isDir: true, ctime: now, mtime: now},
		},
	}
}

func (s *store) lookup(p string) (*node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[p]
	if !ok {
		return nil, false
	}
	return n.clone(), true
}

func (s *store) children(p string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[p]
	if !ok {
		return nil, fmt.Errorf("list %s:%w", p, os.ErrNotExist)
	}
	if !n.isDir {
		return nil, fmt.Errorf("list %s: not a collection", p)
	}
	rs := make([]string, 0, 16)
	for k := range s.nodes {
		if k != "/" && path.Dir(k) == p {
			rs = append(rs, path.Base(k))
		}
	}
	sort.Strings(rs)
	return rs, nil
}

// checkParentLocked 调用方需持有写锁
func (s *store) checkParentLocked(p string) error {
	parent, ok := s.nodes[path.Dir(p)]
	if !ok || !parent.isDir {
		return fmt.Errorf("parent of %s:%w", p, os.ErrNotExist)
	}
	return nil
}

func (s *store) put(p string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkParentLocked(p); err != nil {
		return err
	}
	now := time.Now()
	ctime := now
	if old, ok := s.nodes[p]; ok {
		ctime = old.ctime
	}
	s.nodes[p] = &node{data: data, ctime: ctime, mtime: now}
	return nil
}

func (s *store) mkdir(p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[p]; ok {
		return fmt.Errorf("mkdir %s:%w", p, os.ErrExist)
	}
	if err := s.checkParentLocked(p); err != nil {
		return err
	}
	now := time.Now()
	s.nodes[p] = &node{isDir: true, ctime: now, mtime: now}
	return nil
}

func (s *store) removeLocked(p string) {
	delete(s.nodes, p)
	for k := range s.nodes {
		if resource.IsDescendant(k, p) {
			delete(s.nodes, k)
		}
	}
}

func (s *store) remove(p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[p]; !ok {
		return fmt.Errorf("remove %s:%w", p, os.ErrNotExist)
	}
	if p == "/" {
		return fmt.Errorf("remove root:%w", os.ErrPermission)
	}
	s.removeLocked(p)
	return nil
}

// copy 在一把锁内完成替换, 目标要么是完整的新内容, 要么保持原样
func (s *store) copy(src string, dst string, deep bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, ok := s.nodes[src]
	if !ok {
		return fmt.Errorf("copy %s:%w", src, os.ErrNotExist)
	}
	if err := resource.CheckCopyTarget(src, dst, sn.isDir); err != nil {
		return err
	}
	if err := s.checkParentLocked(dst); err != nil {
		return err
	}
	staged := map[string]*node{dst: sn.clone()}
	if sn.isDir && deep {
		for k, v := range s.nodes {
			if resource.IsDescendant(k, src) {
				staged[path.Join(dst, strings.TrimPrefix(k, src))] = v.clone()
			}
		}
	}
	s.removeLocked(dst)
	now := time.Now()
	for k, v := range staged {
		v.mtime = now
		s.nodes[k] = v
	}
	return nil
}

func (s *store) touch(p string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[p]
	if !ok {
		return fmt.Errorf("touch %s:%w", p, os.ErrNotExist)
	}
	n.mtime = t
	return nil
}

type memFactory struct {
	opts *resource.Options
	s    *store
}

func New(opts *resource.Options) (resource.IFactory, error) {
	return &memFactory{opts: opts, s: newStore()}, nil
}

func (m *memFactory) Name() string {
	return defaultResourceClass
}

func (m *memFactory) NewResource(p string) resource.IResource {
	return &memResource{
		Base: resource.NewBase(p, m.opts),
		s:    m.s,
		f:    m,
	}
}

func create(opts *resource.Options) (resource.IFactory, error) {
	return New(opts)
}

func init() {
	resource.Register(defaultResourceClass, create)
}

// readAll 供Put使用, 先完整读入再一次性替换
func readAll(r io.Reader) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(r)
}
