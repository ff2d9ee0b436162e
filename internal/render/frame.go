// Package render turns a model snapshot into render instructions. Nothing in
// here touches a surface: every function is a pure function of its inputs, so
// the same inputs always produce deep-equal frames.
package render

import "html/template"

type View string

const (
	Dashboard   View = "dashboard"
	RouteMap    View = "route-map"
	TrainFleet  View = "train-fleet"
	Depot       View = "depot"
	Maintenance View = "maintenance"
	Simulation  View = "simulation"
	Analytics   View = "analytics"
)

// Views lists every screen in navigation order.
var Views = []View{Dashboard, RouteMap, TrainFleet, Depot, Maintenance, Simulation, Analytics}

func ParseView(s string) (View, bool) {
	for _, v := range Views {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

type ChartType string

const (
	Doughnut ChartType = "doughnut"
	Line     ChartType = "line"
	Bar      ChartType = "bar"
)

type Series struct {
	Label  string    `json:"label,omitempty"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"colors"`
	Fill   bool      `json:"fill,omitempty"`
}

// ChartSpec describes one chart for a slot. A surface keeps at most one live
// chart per slot.
type ChartSpec struct {
	Slot   string    `json:"slot"`
	Type   ChartType `json:"type"`
	Labels []string  `json:"labels"`
	Series []Series  `json:"series"`
	Min    *float64  `json:"min,omitempty"`
	Max    *float64  `json:"max,omitempty"`
}

type Content struct {
	Region string        `json:"region"`
	HTML   template.HTML `json:"html"`
}

// Attr sets a named attribute on a region: "transform", "hidden", "value".
type Attr struct {
	Region string `json:"region"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

// Frame is an ordered batch of render instructions for one view.
type Frame struct {
	View    View        `json:"view"`
	Content []Content   `json:"content,omitempty"`
	Attrs   []Attr      `json:"attrs,omitempty"`
	Charts  []ChartSpec `json:"charts,omitempty"`
}

func (f *Frame) Set(region string, html template.HTML) {
	f.Content = append(f.Content, Content{Region: region, HTML: html})
}

// Text sets escaped plain text as a region's content.
func (f *Frame) Text(region, text string) {
	f.Set(region, template.HTML(template.HTMLEscapeString(text)))
}

func (f *Frame) Attr(region, name, value string) {
	f.Attrs = append(f.Attrs, Attr{Region: region, Name: name, Value: value})
}

func (f *Frame) Chart(c ChartSpec) { f.Charts = append(f.Charts, c) }

func (f *Frame) Empty() bool {
	return len(f.Content) == 0 && len(f.Attrs) == 0 && len(f.Charts) == 0
}
