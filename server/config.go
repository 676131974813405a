package server

import "github.com/xxxsen/davfile/resource"

type config struct {
	factory resource.IFactory
	resOpts *resource.Options
}

type Option func(c *config)

func WithResource(factory resource.IFactory, opts *resource.Options) Option {
	return func(c *config) {
		c.factory = factory
		c.resOpts = opts
	}
}

func applyOpts(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
