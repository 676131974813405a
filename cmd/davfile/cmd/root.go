package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/davfile/config"
)

const (
	defaultConfigFileEnv = "DAVFILE_CONFIG"
)

var cmds []CreateFunc

type Context struct {
	Config *config.Config
}

type CreateFunc func(ctx *Context) *cobra.Command

func register(cr CreateFunc) {
	cmds = append(cmds, cr)
}

// initContext 显式指定的配置必须可用, 否则依次尝试候选路径, 都不存在时使用默认配置
func initContext(ctx *Context, explicit string, cfgs []string) error {
	var c *config.Config
	var err error
	if len(explicit) != 0 {
		c, err = config.Parse(explicit)
		if err != nil {
			return fmt.Errorf("parse config failed, file:%s, err:%w", explicit, err)
		}
	}
	for _, cfg := range cfgs {
		if c != nil {
			break
		}
		if len(cfg) == 0 {
			continue
		}
		c, _ = config.Parse(cfg)
	}
	if c == nil {
		c = config.Default()
	}
	ctx.Config = c
	logitem := c.LogInfo
	logger.Init(logitem.File, logitem.Level, int(logitem.FileCount), int(logitem.FileSize), int(logitem.KeepDays), logitem.Console)
	return nil
}

func NewRoot() *cobra.Command {
	var configFile string
	ctx := &Context{}
	var rootCmd = &cobra.Command{
		Use:   "davfile",
		Short: "WebDAV file server",
	}
	for _, cr := range cmds {
		rootCmd.AddCommand(cr(ctx))
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		envConfigFile, _ := os.LookupEnv(defaultConfigFileEnv)
		return initContext(ctx, configFile, []string{envConfigFile, "/etc/davfile/config.json"})
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	return rootCmd
}
