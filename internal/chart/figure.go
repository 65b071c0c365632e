package chart

import (
	"encoding/json"
	"io"

	dasherrors "golang-export-dashboard/pkg/errors"
)

// Figure is the declarative chart document the dashboard front end
// consumes. The schema follows the plotly figure convention: a flat
// trace list plus a layout block carrying the filter dropdown and axis
// configuration.
type Figure struct {
	Data   []*figureTrace `json:"data"`
	Layout *figureLayout  `json:"layout"`
}

type figureTrace struct {
	Type          string        `json:"type"`
	X             []string      `json:"x"`
	Y             []float64     `json:"y"`
	Name          string        `json:"name"`
	Mode          string        `json:"mode,omitempty"`
	Marker        *traceMarker  `json:"marker,omitempty"`
	Line          *traceLine    `json:"line,omitempty"`
	LegendGroup   string        `json:"legendgroup,omitempty"`
	LegendRank    int           `json:"legendrank"`
	CustomData    []string      `json:"customdata,omitempty"`
	HoverTemplate string        `json:"hovertemplate,omitempty"`
}

type traceMarker struct {
	Color string `json:"color"`
}

type traceLine struct {
	Color string `json:"color"`
	Width int    `json:"width"`
	Dash  string `json:"dash"`
}

type figureLayout struct {
	Title       *layoutTitle  `json:"title"`
	BarMode     string        `json:"barmode"`
	Template    string        `json:"template"`
	PaperBG     string        `json:"paper_bgcolor"`
	PlotBG      string        `json:"plot_bgcolor"`
	Legend      *layoutLegend `json:"legend"`
	Margin      *layoutMargin `json:"margin"`
	XAxis       *layoutAxis   `json:"xaxis"`
	YAxis       *layoutAxis   `json:"yaxis"`
	UpdateMenus []*updateMenu `json:"updatemenus"`
}

type layoutTitle struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type layoutLegend struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	XAnchor string  `json:"xanchor"`
	YAnchor string  `json:"yanchor"`
}

type layoutMargin struct {
	T int `json:"t"`
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
}

type layoutAxis struct {
	AutoMargin    bool     `json:"automargin"`
	Type          string   `json:"type,omitempty"`
	CategoryOrder string   `json:"categoryorder,omitempty"`
	CategoryArray []string `json:"categoryarray,omitempty"`
}

type updateMenu struct {
	Buttons    []*menuButton `json:"buttons"`
	Direction  string        `json:"direction"`
	ShowActive bool          `json:"showactive"`
	X          float64       `json:"x"`
	XAnchor    string        `json:"xanchor"`
	Y          float64       `json:"y"`
	YAnchor    string        `json:"yanchor"`
	BGColor    string        `json:"bgcolor"`
	Font       *menuFont     `json:"font"`
}

type menuFont struct {
	Color string `json:"color"`
}

type menuButton struct {
	Label  string        `json:"label"`
	Method string        `json:"method"`
	Args   []*buttonArgs `json:"args"`
}

type buttonArgs struct {
	Visible []bool `json:"visible"`
}

const (
	barHoverTemplate   = "<b>%{x}</b><br>Commodity: %{customdata}<br>Value: $%{y:,.0f}<extra></extra>"
	trendHoverTemplate = "<b>%{x}</b><br>TOTAL: $%{y:,.0f}<extra></extra>"
	defaultTitle       = "Saskatchewan Ag Export Composition (Monthly)"
	transparent        = "rgba(0,0,0,0)"
)

// BuildFigure converts an assembly into the figure document. Trace
// order, legend ranks, and visibility vectors carry through unchanged.
func BuildFigure(assembly *Assembly) *Figure {
	return BuildFigureWithTitle(assembly, defaultTitle)
}

// BuildFigureWithTitle is BuildFigure with a caller-supplied chart title.
func BuildFigureWithTitle(assembly *Assembly, title string) *Figure {
	data := make([]*figureTrace, 0, len(assembly.Traces))
	for _, trace := range assembly.Traces {
		data = append(data, encodeTrace(trace))
	}

	buttons := make([]*menuButton, 0, len(assembly.Filters))
	for _, filter := range assembly.Filters {
		buttons = append(buttons, &menuButton{
			Label:  filter.Label,
			Method: "update",
			Args:   []*buttonArgs{{Visible: filter.Visible}},
		})
	}

	return &Figure{
		Data: data,
		Layout: &figureLayout{
			Title:    &layoutTitle{Text: title, X: 0.5, Y: 0.95},
			BarMode:  "stack",
			Template: "plotly_dark",
			PaperBG:  transparent,
			PlotBG:   transparent,
			Legend:   &layoutLegend{X: 1.02, Y: 1, XAnchor: "left", YAnchor: "top"},
			Margin:   &layoutMargin{T: 120, L: 40, R: 40, B: 40},
			XAxis: &layoutAxis{
				AutoMargin:    true,
				Type:          "category",
				CategoryOrder: "array",
				CategoryArray: assembly.Months,
			},
			YAxis: &layoutAxis{AutoMargin: true},
			UpdateMenus: []*updateMenu{{
				Buttons:    buttons,
				Direction:  "down",
				ShowActive: true,
				X:          0,
				XAnchor:    "left",
				Y:          1.15,
				YAnchor:    "top",
				BGColor:    transparent,
				Font:       &menuFont{Color: "white"},
			}},
		},
	}
}

func encodeTrace(trace *Trace) *figureTrace {
	if trace.Kind == KindTrend {
		return &figureTrace{
			Type:          "scatter",
			X:             trace.X,
			Y:             trace.Y,
			Name:          trace.Name,
			Mode:          "lines+markers",
			Line:          &traceLine{Color: trace.Color, Width: 3, Dash: "solid"},
			LegendRank:    trace.LegendRank,
			HoverTemplate: trendHoverTemplate,
		}
	}

	custom := make([]string, len(trace.X))
	for i := range custom {
		custom[i] = trace.Name
	}
	return &figureTrace{
		Type:          "bar",
		X:             trace.X,
		Y:             trace.Y,
		Name:          trace.Name,
		Marker:        &traceMarker{Color: trace.Color},
		LegendGroup:   string(trace.Category),
		LegendRank:    trace.LegendRank,
		CustomData:    custom,
		HoverTemplate: barHoverTemplate,
	}
}

// WriteJSON encodes the figure as indented JSON. Hover templates embed
// literal angle brackets, so HTML escaping is disabled.
func (f *Figure) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(f); err != nil {
		return dasherrors.ChartError(dasherrors.CodeEncodeFailed, "encode_figure", err)
	}
	return nil
}
