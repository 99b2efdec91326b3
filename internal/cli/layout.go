package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/waffle/layout"
)

func newLayoutCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "layout [chart]",
		Short: "Print the computed layout of a chart as JSON",
		Long:  `layout parses a chart file, computes the page layout and prints the result (panels, layers, draw commands and legends, all in millimetres) as JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bound, err := decodeData(data)
			if err != nil {
				return err
			}
			p, err := newPipeline(configFromContext(ctx), args[0], bound)
			if err != nil {
				return err
			}
			res, err := p.build(ctx)
			if err != nil {
				return err
			}
			if err := layout.EncodeDebugJSON(cmd.OutOrStdout(), res); err != nil {
				return fmt.Errorf("输出布局 JSON 失败: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON data for ${...} placeholders, or @file.json")
	return cmd
}
