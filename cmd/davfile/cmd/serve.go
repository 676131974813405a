package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/davfile/resource"
	"github.com/xxxsen/davfile/server"
	"go.uber.org/zap"
)

type serveArgs struct {
	bind string
	root string
}

func NewServeCmd(c *Context) *cobra.Command {
	args := &serveArgs{}
	ctx := context.Background()
	subc := &cobra.Command{
		Use:   "serve",
		Short: "Run webdav server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return onRunServe(ctx, c, args)
		},
	}
	subc.PersistentFlags().StringVarP(&args.bind, "bind", "b", "", "listen address, override config")
	subc.PersistentFlags().StringVarP(&args.root, "root", "r", "", "storage root, override config")
	return subc
}

func onRunServe(ctx context.Context, c *Context, args *serveArgs) error {
	if len(args.bind) != 0 {
		c.Config.Bind = args.bind
	}
	if len(args.root) != 0 {
		c.Config.Webdav.Root = args.root
	}
	logger := logutil.GetLogger(ctx)
	opts := c.Config.ResourceOptions()
	logger.Info("recv config", zap.Any("config", c.Config))
	logger.Info("current available resource class", zap.Strings("list", resource.List()))
	logger.Info("current use resource class", zap.String("name", opts.ResourceClass))
	logger.Info("-- webdav root", zap.String("root", opts.Root), zap.String("base_uri", opts.BaseURI))
	logger.Info("-- sniff cache", zap.Bool("enable", opts.SniffCacheSize > 0), zap.String("max_items", humanize.Comma(opts.SniffCacheSize)))
	factory, err := resource.Create(opts)
	if err != nil {
		return fmt.Errorf("init resource factory failed, err:%w", err)
	}
	svr, err := server.New(c.Config.Bind, server.WithResource(factory, opts))
	if err != nil {
		return fmt.Errorf("init server failed, err:%w", err)
	}
	logger.Info("init server succ, start it...", zap.String("bind", c.Config.Bind))
	return svr.Run()
}

func init() {
	register(NewServeCmd)
}
