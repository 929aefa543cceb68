// Package charts renders interactive HTML charts of tag graphs and samples.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Colors     []string // Series colors, cycled
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "600px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single bar in a chart.
type DataPoint struct {
	Label string
	Value float64
}

func (c ChartConfig) globalOptions(trigger string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  c.Width,
			Height: c.Height,
			Theme:  c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.Title,
			Subtitle: c.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: trigger,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(c.ShowLegend),
		}),
	}
}

// maxDepthCategories caps the legend; deeper nodes share the last category.
const maxDepthCategories = 6

// RenderTagGraph writes a force-directed graph of g. Nodes are colored by
// depth below the root and labelled with their short name.
func RenderTagGraph(w io.Writer, g *tags.Graph, config ChartConfig) error {
	if g == nil {
		return fmt.Errorf("tag graph is nil")
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(config.globalOptions("item")...)

	nodes := make([]opts.GraphNode, 0, g.Len())
	for _, node := range g.Nodes() {
		depth := min(nodeDepth(g, node), maxDepthCategories-1)
		nodes = append(nodes, opts.GraphNode{
			Name:       node,
			Category:   depth,
			SymbolSize: 24 - 3*depth,
		})
	}

	edges := g.Edges()
	links := make([]opts.GraphLink, 0, len(edges))
	for _, e := range edges {
		links = append(links, opts.GraphLink{Source: e.Child, Target: e.Parent})
	}

	categories := make([]*opts.GraphCategory, maxDepthCategories)
	for i := range categories {
		categories[i] = &opts.GraphCategory{Name: fmt.Sprintf("depth %d", i)}
	}

	graph.AddSeries("tags", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:     "force",
			Roam:       opts.Bool(true),
			Draggable:  opts.Bool(true),
			EdgeSymbol: []string{"none", "arrow"},
			Force: &opts.GraphForce{
				Repulsion:  120,
				EdgeLength: 40,
			},
			Categories: categories,
		}),
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Position:  "right",
			Formatter: string(shortNameFormatter),
		}),
	)

	if err := graph.Render(w); err != nil {
		return fmt.Errorf("failed to render tag graph: %w", err)
	}
	return nil
}

// shortNameFormatter shows the last segment of a qualified tag node.
var shortNameFormatter = opts.FuncOpts(`function (p) { var s = p.name.split('` + tags.Separator + `'); return s[s.length - 1]; }`)

func nodeDepth(g *tags.Graph, node string) int {
	depth := 0
	for {
		parent, ok := g.Parent(node)
		if !ok {
			return depth
		}
		depth++
		node = parent
	}
}

// RenderBarChart writes a single-series bar chart.
func RenderBarChart(w io.Writer, series string, data []DataPoint, config ChartConfig) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(config.globalOptions("axis")...)
	if len(config.Colors) > 0 {
		bar.SetGlobalOptions(charts.WithColorsOpts(opts.Colors{config.Colors[0]}))
	}

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(series, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(true),
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderSampleLabels charts how many rows of a sample carry each label.
func RenderSampleLabels(w io.Writer, s *decks.Sample, config ChartConfig) error {
	data := []DataPoint{
		{Label: "same deck", Value: float64(s.NumTrue)},
		{Label: "deck and complement", Value: float64(s.NumHalf)},
		{Label: "universe", Value: float64(s.NumFalse)},
	}
	return RenderBarChart(w, "rows", data, config)
}

// RenderDeckSizes charts the validated card count of every deck in a pool.
func RenderDeckSizes(w io.Writer, pool *decks.Pool, config ChartConfig) error {
	ds := pool.Decks()
	data := make([]DataPoint, len(ds))
	for i, d := range ds {
		name := d.Name()
		if name == "" {
			name = fmt.Sprintf("deck %d", i+1)
		}
		data[i] = DataPoint{Label: name, Value: float64(d.NumCards())}
	}
	return RenderBarChart(w, "cards", data, config)
}

// WriteFile creates outputPath and renders into it.
func WriteFile(outputPath string, render func(io.Writer) error) (err error) {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close chart file: %w", closeErr)
		}
	}()

	return render(f)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
