package main

import (
	"fmt"

	"github.com/brbranch/mcp-demo-server/internal/jsonrpc"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mcp-demo",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", jsonrpc.ServerName, jsonrpc.ServerVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
