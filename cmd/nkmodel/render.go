package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/application"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
)

const (
	formatJSON  = "json"
	formatCSV   = "csv"
	formatTable = "table"
)

func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(s); f {
	case formatJSON, formatCSV, formatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q, want json, csv or table", s)
	}
}

// render 输出模拟结果；percent 仅影响展示，不修改 dto
func render(w io.Writer, dto *application.SimulationDTO, format string, percent bool) error {
	format, err := parseFormat(format)
	if err != nil {
		return err
	}
	out := *dto
	if percent && out.Result != nil {
		out.Result = out.Result.Scaled(100)
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case formatCSV:
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(rows(out.Result)); err != nil {
			return err
		}
		return cw.Error()
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		for _, r := range rows(out.Result) {
			fmt.Fprintln(tw, strings.Join(r, "\t")+"\t")
		}
		return tw.Flush()
	}
}

// rows 第一行为表头，之后每期一行
func rows(res *domain.PathResult) [][]string {
	header := []string{"t", "pi", "output_gap", "interest_rate"}
	if res == nil {
		return [][]string{header}
	}
	wage := res.WageInflation != nil
	if wage {
		header = append(header, "wage_inflation", "wage_level")
	}
	out := make([][]string, 0, res.Horizon()+1)
	out = append(out, header)
	for t := 0; t < res.Horizon(); t++ {
		r := []string{strconv.Itoa(t), num(res.Pi[t]), num(res.OutputGap[t]), num(res.InterestRate[t])}
		if wage {
			r = append(r, num(res.WageInflation[t]), num(res.WageLevel[t]))
		}
		out = append(out, r)
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
