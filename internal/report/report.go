// Package report renders comparison results for people and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/kadirbelkuyu/schemer/internal/compare"
)

const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// FormatDiff needs the snapshots and is written by RenderDiff.
const FormatDiff = "diff"

// Formats lists the accepted report formats.
var Formats = []string{FormatText, FormatTable, FormatJSON, FormatYAML, FormatDiff}

type document struct {
	Master  string                `json:"master" yaml:"master"`
	Targets []string              `json:"targets" yaml:"targets"`
	Mode    compare.Mode          `json:"mode" yaml:"mode"`
	Tables  []compare.TableResult `json:"tables" yaml:"tables"`
	Summary compare.Summary       `json:"summary" yaml:"summary"`
}

// Render writes res to w in the named format. An empty format means text.
func Render(w io.Writer, format string, res *compare.Result) error {
	if res == nil {
		return fmt.Errorf("result cannot be nil")
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return renderText(w, res)
	case FormatTable:
		return renderTable(w, res)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(res))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(res)); err != nil {
			return err
		}
		return enc.Close()
	case FormatDiff:
		return fmt.Errorf("diff format needs the compared snapshots, use RenderDiff")
	default:
		return fmt.Errorf("unsupported report format: %s (expected one of %s)", format, strings.Join(Formats, ", "))
	}
}

func newDocument(res *compare.Result) document {
	tables := res.Tables
	if tables == nil {
		tables = []compare.TableResult{}
	}
	return document{
		Master:  res.Master,
		Targets: res.Targets,
		Mode:    res.Mode,
		Tables:  tables,
		Summary: res.Summary(),
	}
}

func renderText(w io.Writer, res *compare.Result) error {
	width := 0
	for _, id := range res.Targets {
		if len(id) > width {
			width = len(id)
		}
	}

	var b strings.Builder
	for _, table := range res.Tables {
		fmt.Fprintf(&b, "Table %s\n", table.Table)
		for _, target := range table.Targets {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, target.TargetID, target.Disposition)
			for _, diff := range target.Differences {
				fmt.Fprintf(&b, "      %s.%s: master=%s peer=%s\n",
					diff.Column, diff.Attribute, FormatValue(diff.MasterValue), FormatValue(diff.PeerValue))
			}
			if target.ColumnCountMismatch() {
				fmt.Fprintf(&b, "      column count differs: master=%d peer=%d\n", target.MasterColumns, target.PeerColumns)
			}
		}
		b.WriteString("\n")
	}

	s := res.Summary()
	fmt.Fprintf(&b, "%d tables compared, %d inconsistent (%d matched, %d mismatched, %d missing)\n",
		s.Tables, s.Inconsistent, s.Matched, s.Mismatched, s.Missing)

	_, err := io.WriteString(w, b.String())
	return err
}

func renderTable(w io.Writer, res *compare.Result) error {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Table", "Target", "Disposition", "Column", "Attribute", "Master", "Peer"})
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)

	for _, table := range res.Tables {
		for _, target := range table.Targets {
			if len(target.Differences) == 0 {
				tw.Append([]string{table.Table, target.TargetID, string(target.Disposition), "", "", "", ""})
				continue
			}
			for _, diff := range target.Differences {
				tw.Append([]string{
					table.Table,
					target.TargetID,
					string(target.Disposition),
					diff.Column,
					diff.Attribute,
					FormatValue(diff.MasterValue),
					FormatValue(diff.PeerValue),
				})
			}
		}
	}

	tw.Render()
	return nil
}

// FormatValue renders an attribute value; strings are quoted so empty values stay visible.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprint(x)
	}
}
