package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/afumu/watrace/internal/analytics"
	"github.com/afumu/watrace/internal/parser"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var replaceAll, join, monthFirst bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "导入 WhatsApp 导出文件 (.txt / .zip)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			in := a.ingestService(s)
			opts := in.Defaults()
			if cmd.Flags().Changed("replace-all") {
				opts.ReplaceAll = replaceAll
			}
			if cmd.Flags().Changed("join") {
				opts.Parser.Continuation = parser.DropContinuation
				if join {
					opts.Parser.Continuation = parser.JoinContinuation
				}
			}
			if monthFirst {
				opts.Parser.DayFirst = false
			}

			res, err := in.ImportFile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&replaceAll, "replace-all", false, "导入前清空全部已有数据")
	cmd.Flags().BoolVar(&join, "join", false, "把没有日期前缀的续行拼接到上一条消息")
	cmd.Flags().BoolVar(&monthFirst, "month-first", false, "日期格式为 M/D/YYYY")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var (
		year    int
		section string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "stats <chat-id>",
		Short: "输出会话统计 (JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("无效的会话编号 %q", args[0])
			}
			sec, ok := analytics.ParseSection(section)
			if !ok {
				return fmt.Errorf("未知的统计项 %q", section)
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.GetAnalysis(cmd.Context(), id, year, sec, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "只统计某一年，0 表示全部")
	cmd.Flags().StringVar(&section, "section", string(analytics.SectionReport), "统计项")
	cmd.Flags().IntVar(&limit, "limit", 0, "词频 / 表情榜单长度")
	return cmd
}

func newChatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "列出已导入的会话",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			chats, err := s.GetChats(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMESSAGES\tSKIPPED\tIMPORTED")
			for _, c := range chats {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", c.ID, c.Name, c.MessageCount, c.SkippedLines, c.ImportedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "清空全部已导入的数据",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "已清空全部数据")
			return nil
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
