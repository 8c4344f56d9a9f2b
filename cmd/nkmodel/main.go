// Package main nkmodel 命令行入口：serve 启动 HTTP/gRPC 服务，simulate 运行单次脉冲响应，calibrate 拉取宏观数据校准初值
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// 构建信息，由 ldflags 注入
var (
	version = "dev"
	commit  = "none"
)

const defaultConfigPath = "configs/nkmodel/config.toml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "nkmodel",
		Short:         "New Keynesian impulse-response simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to config file")

	root.AddCommand(
		buildServeCmd(&configPath),
		buildSimulateCmd(),
		buildCalibrateCmd(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "nkmodel %s (%s)\n", version, commit)
			},
		},
	)
	return root
}
