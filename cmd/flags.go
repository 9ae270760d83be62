package cmd

import (
	"github.com/gnames/gitmo/pkg/config"
	"github.com/spf13/cobra"
)

// importFlags turns explicitly set import flags into options.
func importFlags(cmd *cobra.Command) []config.Option {
	var res []config.Option
	flags := cmd.Flags()

	if flags.Changed("atomic") {
		b, _ := flags.GetBool("atomic")
		res = append(res, config.OptImportAtomic(b))
	}
	if flags.Changed("encoding") {
		s, _ := flags.GetString("encoding")
		res = append(res, config.OptImportEncoding(s))
	}
	if flags.Changed("on-decode-error") {
		s, _ := flags.GetString("on-decode-error")
		res = append(res, config.OptImportOnDecodeError(s))
	}
	if flags.Changed("progress") {
		b, _ := flags.GetBool("progress")
		res = append(res, config.OptImportProgress(b))
	}
	return res
}

// serveFlags turns explicitly set server flags into options.
func serveFlags(cmd *cobra.Command) []config.Option {
	var res []config.Option
	flags := cmd.Flags()

	if flags.Changed("port") {
		i, _ := flags.GetInt("port")
		res = append(res, config.OptServerPort(i))
	}
	if flags.Changed("host") {
		s, _ := flags.GetString("host")
		res = append(res, config.OptServerHost(s))
	}
	return res
}
