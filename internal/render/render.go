// Package render formats calculator results as terminal tables.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/profit"
	"github.com/koptimizer/inferprofit/pkg/sizing"
)

// HighlightMark prefixes the rank of highlighted rows.
const HighlightMark = "*"

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	return table
}

// Money formats v as dollars with thousands separators and two decimals.
func Money(v float64) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	out := "$" + group(s[:len(s)-3]) + s[len(s)-3:]
	if v < 0 && s != "0.00" {
		return "-" + out
	}
	return out
}

// group inserts thousands separators into a string of digits.
func group(digits string) string {
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// UnitPrice formats a per-item price that is usually a fraction of a cent.
func UnitPrice(v float64) string {
	return fmt.Sprintf("$%.4f", v)
}

// number formats whole values with separators and others with one decimal.
func number(v float64) string {
	if v != math.Trunc(v) || math.Abs(v) >= 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	s := group(strconv.FormatFloat(math.Abs(v), 'f', 0, 64))
	if v < 0 {
		return "-" + s
	}
	return s
}

// rank numbers a row and marks the first highlight rows. Color is dropped
// automatically when stdout is not a terminal.
func rank(i, highlight int) string {
	if i < highlight {
		return color.GreenString(HighlightMark + strconv.Itoa(i+1))
	}
	return strconv.Itoa(i + 1)
}

// profitCell formats a monthly figure, red when it is a loss.
func profitCell(v float64) string {
	if v < 0 {
		return color.RedString(Money(v))
	}
	return Money(v)
}

// LLM renders a ranked list of LLM configurations. The first highlight rows
// are marked.
func LLM(w io.Writer, rows []profit.LLMResult, highlight int) {
	table := newTable(w, []string{"#", "GPU", "Model", "Tok/s", "In $/MTok", "Out $/MTok", "Revenue/mo", "Profit/mo"})
	for i, r := range rows {
		table.Append([]string{
			rank(i, highlight), r.GPU, r.Model,
			strconv.FormatFloat(r.TokensPerSecond, 'f', -1, 64),
			UnitPrice(r.InputPricePerMTok), UnitPrice(r.OutputPricePerMTok),
			Money(r.RevenuePerMonth), profitCell(r.ProfitPerMonth),
		})
	}
	table.Render()
}

// Media renders a ranked list of image or video configurations.
func Media(w io.Writer, rows []profit.MediaResult, highlight int) {
	unit := "Unit"
	if len(rows) > 0 {
		u := rows[0].Kind.Unit()
		unit = strings.ToUpper(u[:1]) + u[1:]
	}
	table := newTable(w, []string{"#", "GPU", "Provider", "Model", unit + "s/hr", "Cost/" + unit, "Price/" + unit, "Margin", "Profit/mo"})
	for i, r := range rows {
		table.Append([]string{
			rank(i, highlight), r.GPU, r.Provider.String(), r.Model,
			number(r.UnitsPerHour), UnitPrice(r.CostPerUnit), UnitPrice(r.PricePerUnit),
			fmt.Sprintf("%.1f%%", r.MarginPct), profitCell(r.ProfitPerMonth),
		})
	}
	table.Render()
}

// Voice renders a ranked list of voice configurations.
func Voice(w io.Writer, rows []profit.VoiceResult, highlight int) {
	table := newTable(w, []string{"#", "GPU", "Model", "Category", "Jobs/hr", "Cost/job", "Price/job", "Competitor", "Profit/mo"})
	for i, r := range rows {
		table.Append([]string{
			rank(i, highlight), r.GPU, r.Model, r.Category,
			number(r.JobsPerHour), UnitPrice(r.CostPerJob), UnitPrice(r.PricePerJob),
			UnitPrice(r.CompetitorPriceUSD), profitCell(r.ProfitPerMonth),
		})
	}
	table.Render()
}

// Competitors renders a competitor comparison for one unit price.
func Competitors(w io.Writer, quotes []profit.CompetitorQuote) {
	table := newTable(w, []string{"Competitor", "Price", "Difference", "Undercut"})
	for _, q := range quotes {
		undercut := "no"
		if q.Undercut {
			undercut = "yes"
		}
		table.Append([]string{q.Competitor, UnitPrice(q.PriceUSD), UnitPrice(q.DifferenceUSD), undercut})
	}
	table.Render()
}

// Estimates renders one row per sized cluster.
func Estimates(w io.Writer, rows []sizing.Result) {
	table := newTable(w, []string{"GPU", "Precision", "Memory GB", "By memory", "By throughput", "GPUs", "Bound by", "Capex", "$/MTok"})
	for _, r := range rows {
		table.Append([]string{
			r.GPU, r.Precision.String(), strconv.FormatFloat(r.MemoryGB, 'f', 1, 64),
			strconv.Itoa(r.GPUsByMemory), strconv.Itoa(r.GPUsByThroughput), strconv.Itoa(r.FinalGPUs),
			r.Constraint.String(), Money(r.CapexUSD), UnitPrice(r.CostPerMTok),
		})
	}
	table.Render()
}

// Estimate renders a single sizing result as a field/value table.
func Estimate(w io.Writer, r sizing.Result) {
	table := newTable(w, []string{"Field", "Value"})
	fallback := ""
	if r.ThroughputFallback {
		fallback = " (estimated)"
	}
	table.AppendBulk([][]string{
		{"Model", r.Model},
		{"GPU", r.GPU},
		{"Precision", r.Precision.String()},
		{"Scaling policy", r.Policy},
		{"Daily tokens", number(r.DailyTokens)},
		{"Peak tokens/s", strconv.FormatFloat(r.PeakTPS, 'f', 2, 64)},
		{"Model memory", strconv.FormatFloat(r.MemoryGB, 'f', 1, 64) + " GB"},
		{"Base tokens/s per GPU", strconv.FormatFloat(r.BaseTPS, 'f', -1, 64) + fallback},
		{"GPUs by memory", strconv.Itoa(r.GPUsByMemory)},
		{"GPUs by throughput", strconv.Itoa(r.GPUsByThroughput)},
		{"Scaling efficiency", fmt.Sprintf("%.0f%%", r.Efficiency*100)},
		{"Final GPUs", strconv.Itoa(r.FinalGPUs)},
		{"Binding constraint", r.Constraint.String()},
		{"Capex", Money(r.CapexUSD)},
		{"Monthly cost", Money(r.MonthlyCostUSD)},
		{"Cost per 1M tokens", UnitPrice(r.CostPerMTok)},
	})
	table.Render()
}

// Curve renders every step-th point of a profit curve, always including
// 100%.
func Curve(w io.Writer, points []profit.CurvePoint, step int) {
	if step < 1 {
		step = 1
	}
	table := newTable(w, []string{"Utilization", "Profit/mo"})
	for i, p := range points {
		if (i+1)%step != 0 && i != len(points)-1 {
			continue
		}
		table.Append([]string{fmt.Sprintf("%d%%", p.UtilizationPct), profitCell(p.MonthlyProfit)})
	}
	table.Render()
}

// TableNames lists the catalog tables Catalog can render.
var TableNames = []string{"llm-gpus", "llm-models", "media-gpus", "image-models", "video-models", "voice-models", "estimator-gpus", "estimator-models", "competitors"}

// Catalog renders one reference table.
func Catalog(w io.Writer, t catalog.Tables, name string) error {
	var (
		header []string
		rows   [][]string
	)
	switch name {
	case "llm-gpus":
		header = []string{"Name", "VRAM GB", "$/hr", "Provider"}
		for _, g := range t.LLMGPUs {
			rows = append(rows, []string{g.Name, number(g.VRAMGB), Money(g.HourlyCostUSD), g.Provider})
		}
	case "llm-models":
		header = []string{"Name", "In $/MTok", "Out $/MTok", "Context", "Notes"}
		for _, m := range t.LLMModels {
			rows = append(rows, []string{m.Name, UnitPrice(m.InputCostPerMTok), UnitPrice(m.OutputCostPerMTok), m.Context, m.Notes})
		}
	case "media-gpus":
		header = []string{"Name", "VRAM GB", "Cudo $/hr", "RunPod $/hr", "Serverless $/s"}
		for _, g := range t.MediaGPUs {
			rows = append(rows, []string{g.Name, number(g.VRAMGB), optional(g.Cudo, Money), optional(g.RunPod, Money), optional(g.RunPodServerless, func(v float64) string {
				return "$" + strconv.FormatFloat(v, 'f', -1, 64)
			})})
		}
	case "image-models":
		header = []string{"Name", "Baseline", "H100/hr", "L40S/hr", "A100/hr", "Competitor key"}
		for _, m := range t.ImageModels {
			rows = append(rows, []string{m.Name, UnitPrice(m.BaselinePrice), number(m.PerHourH100), number(m.PerHourL40S), number(m.PerHourA100), m.CompetitorKey})
		}
	case "video-models":
		header = []string{"Name", "Baseline", "Sec/video", "Duration", "Competitor key"}
		for _, m := range t.VideoModels {
			rows = append(rows, []string{m.Name, UnitPrice(m.BaselinePrice), number(m.SecondsPerVideo), number(m.DurationSeconds) + "s", m.CompetitorKey})
		}
	case "voice-models":
		header = []string{"Name", "Category", "Competitor", "GPUs"}
		for _, m := range t.VoiceModels {
			rows = append(rows, []string{m.Name, m.Category, UnitPrice(m.CompetitorPriceUSD), strings.Join(m.JobsPerHour.Keys(), ", ")})
		}
	case "estimator-gpus":
		header = []string{"Name", "VRAM GB", "TB/s", "Price", "$/hr"}
		for _, g := range t.EstimatorGPUs {
			rows = append(rows, []string{g.Name, number(g.VRAMGB), strconv.FormatFloat(g.BandwidthTBs, 'f', -1, 64), Money(g.PriceUSD), Money(g.HourlyRateUSD)})
		}
	case "estimator-models":
		header = []string{"Name", "Params B", "Active B", "GPUs"}
		for _, m := range t.EstimatorModels {
			rows = append(rows, []string{m.Name, strconv.FormatFloat(m.ParamsB, 'f', -1, 64), optional(m.ActiveParamsB, func(v float64) string {
				return strconv.FormatFloat(v, 'f', -1, 64)
			}), strings.Join(m.TokensPerSecond.Keys(), ", ")})
		}
	case "competitors":
		header = []string{"Name", "Prices"}
		for _, c := range t.Competitors {
			var prices []string
			for _, key := range c.Prices.Keys() {
				p, _ := c.Prices.Get(key)
				prices = append(prices, key+"="+UnitPrice(p))
			}
			rows = append(rows, []string{c.Name, strings.Join(prices, " ")})
		}
	default:
		return fmt.Errorf("unknown table %q (want one of %s)", name, strings.Join(TableNames, ", "))
	}

	table := newTable(w, header)
	table.AppendBulk(rows)
	table.Render()
	return nil
}

func optional(v *float64, format func(float64) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}
