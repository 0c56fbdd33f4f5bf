package main

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/bamsammich/cuesplit/internal/cuesheet"
	"github.com/bamsammich/cuesplit/internal/layout"
	"github.com/bamsammich/cuesplit/internal/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info <sheet.cue>",
	Short: "Show the computed track layout without writing anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().String("sheet-encoding", "utf-8", "cue sheet text encoding (utf-8 or latin1)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	encodingStr, _ := cmd.Flags().GetString("sheet-encoding") //nolint:errcheck // flag name is hardcoded
	encoding, err := cuesheet.ParseEncoding(encodingStr)
	if err != nil {
		return err
	}

	sheet, err := cuesheet.Parse(args[0], encoding)
	if err != nil {
		return err
	}
	if err := layout.Resolve(sheet); err != nil {
		return err
	}

	headers := []string{"TRACK", "MODE", "FILE", "START", "LENGTH", "PREGAP", "POSTGAP"}
	aligns := []columnAlignment{
		alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight,
	}

	var total int64
	rows := make([][]string, 0, len(sheet.Tracks))
	for _, t := range sheet.Tracks {
		total += t.LengthBytes
		rows = append(rows, []string{
			fmt.Sprintf("%02d", t.Number),
			t.Mode,
			filepath.Base(sheet.SourceOf(t).Path),
			ui.FormatCount(t.StartByte),
			ui.FormatCount(t.LengthBytes),
			gapCell(t.PregapFrames),
			gapCell(t.PostgapFrames),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
	fmt.Fprintf(out, "%d tracks, %s total\n", len(sheet.Tracks), ui.FormatBytes(total))
	return nil
}

func gapCell(frames int64) string {
	if frames == 0 {
		return "-"
	}
	return cuesheet.FormatTime(frames)
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
