package controller

import (
	"context"

	"github.com/xxxsen/davfile/resource"
	"github.com/xxxsen/davfile/status"
)

type GuardID string

const (
	GuardCollectionResource GuardID = "CollectionResource"
	GuardExistingResource   GuardID = "ExistingResource"
	GuardMalformedXML       GuardID = "MalformedXML"
	GuardMissingResource    GuardID = "MissingResource"
	GuardOverwrite          GuardID = "Overwrite"
	GuardRemoteDestination  GuardID = "RemoteDestination"
	GuardSameDestination    GuardID = "SameDestination"
	GuardWeirdBody          GuardID = "WeirdBody"
	GuardZeroDepth          GuardID = "ZeroDepth"
)

type guardFunc func(c *Controller, ctx context.Context) error

// guardTable 方法 => 有序的guard列表, 顺序决定了哪个错误先暴露
var guardTable = map[string][]GuardID{
	"OPTIONS":   {},
	"HEAD":      {GuardMissingResource},
	"GET":       {GuardMissingResource},
	"PUT":       {GuardCollectionResource},
	"DELETE":    {GuardMissingResource},
	"MKCOL":     {GuardExistingResource, GuardWeirdBody},
	"COPY":      {GuardMissingResource, GuardRemoteDestination, GuardSameDestination, GuardOverwrite},
	"MOVE":      {GuardMissingResource, GuardRemoteDestination, GuardSameDestination, GuardOverwrite},
	"PROPFIND":  {GuardMissingResource, GuardMalformedXML},
	"PROPPATCH": {GuardMissingResource},
	"LOCK":      {GuardMissingResource},
	"UNLOCK":    {},
}

var guards = map[GuardID]guardFunc{
	GuardCollectionResource: func(c *Controller, ctx context.Context) error {
		res, err := c.resource()
		if err != nil {
			return err
		}
		if res.IsCollection(ctx) {
			return status.Forbidden
		}
		return nil
	},
	GuardExistingResource: func(c *Controller, ctx context.Context) error {
		res, err := c.resource()
		if err != nil {
			return err
		}
		if res.Exist(ctx) {
			return status.MethodNotAllowed
		}
		return nil
	},
	GuardMalformedXML: func(c *Controller, ctx context.Context) error {
		doc, err := c.requestDocument()
		if err != nil {
			return err
		}
		if doc == nil { //空body等同于allprop
			return nil
		}
		if root := doc.Root(); root == nil || root.Tag != "propfind" {
			return status.BadRequest
		}
		return nil
	},
	GuardMissingResource: func(c *Controller, ctx context.Context) error {
		res, err := c.resource()
		if err != nil {
			return err
		}
		if !res.Exist(ctx) {
			return status.NotFound
		}
		return nil
	},
	GuardOverwrite: func(c *Controller, ctx context.Context) error {
		if c.overwrite() {
			return nil
		}
		future, err := c.futureResource()
		if err != nil {
			return err
		}
		if future.Exist(ctx) {
			return status.PreconditionFailed
		}
		return nil
	},
	GuardRemoteDestination: func(c *Controller, ctx context.Context) error {
		dest, err := c.destination()
		if err != nil {
			return err
		}
		if len(dest.Host) != 0 && dest.Hostname() != hostname(c.req.Host) {
			return status.BadGateway
		}
		return nil
	},
	GuardSameDestination: func(c *Controller, ctx context.Context) error {
		res, err := c.resource()
		if err != nil {
			return err
		}
		future, err := c.futureResource()
		if err != nil {
			return err
		}
		if resource.Equal(future, res) {
			return status.Forbidden
		}
		//集合不允许复制/移动到自身子树, MOVE时会连同目标一起被删除
		if res.IsCollection(ctx) && resource.IsDescendant(future.Path(), res.Path()) {
			return status.Forbidden
		}
		return nil
	},
	GuardWeirdBody: func(c *Controller, ctx context.Context) error {
		body, err := c.readBody()
		if err != nil {
			return err
		}
		if len(body) != 0 {
			return status.UnsupportedMediaType
		}
		return nil
	},
	GuardZeroDepth: func(c *Controller, ctx context.Context) error {
		if c.depth() == 0 {
			return status.Conflict
		}
		return nil
	},
}

// Guards 未知方法返回空列表
func Guards(method string) []GuardID {
	rs := guardTable[method]
	out := make([]GuardID, len(rs))
	copy(out, rs)
	return out
}

func (c *Controller) guard(ctx context.Context, method string) error {
	if _, err := c.resource(); err != nil {
		return err
	}
	for _, id := range Guards(method) {
		if err := guards[id](c, ctx); err != nil {
			return err
		}
	}
	return nil
}
