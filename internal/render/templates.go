package render

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strings"

	"github.com/dustin/go-humanize"
)

var funcMap = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"kilo":  func(n int) string { return fmt.Sprintf("%.0fk", float64(n)/1000) },
	"label": func(s any) string { return strings.ReplaceAll(fmt.Sprint(s), "_", " ") },
	"slug":  func(s string) string { return strings.ReplaceAll(strings.ToLower(s), " ", "-") },
	"lower": strings.ToLower,
	"def": func(v, def int) int {
		if v == 0 {
			return def
		}
		return v
	},
	"yesno": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
	"pct": func(f float64) string { return fmt.Sprintf("%.2f", f) },
}

var tmpl = template.Must(template.New("render").Funcs(funcMap).Parse(`
{{define "statusList"}}{{range .}}<div class="status-item"><span>{{.Label}}</span><span class="status status--{{.Level}}">{{.Status}}</span></div>{{end}}{{end}}

{{define "weather"}}<div class="weather-icon">{{.Icon}}</div><div class="weather-details"><div class="weather-condition">{{.Condition}}</div><div class="weather-temp">{{.Temperature}}°C • Humidity: {{.Humidity}}%</div></div>{{end}}

{{define "incidents"}}{{if eq . 0}}<div class="status-item"><span>No active incidents</span><span class="status status--success">All Clear</span></div>{{else}}<div class="status-item"><span>{{.}} active incident(s)</span><span class="status status--warning">Attention</span></div>{{end}}{{end}}

{{define "stations"}}{{range .}}<div class="station {{.Class}}" data-station-id="{{.ID}}" style="left: {{pct .Left}}%; top: 50%" title="{{.Title}}"><div class="station-label">{{.Label}}</div></div>{{end}}{{end}}

{{define "trains"}}{{range .}}<div class="train-marker" data-train-id="{{.ID}}" style="left: {{pct .Left}}%; top: 50%" title="{{.Title}}"></div>{{end}}{{end}}

{{define "stationDetails"}}<h4>{{.Name}} Station ({{.Code}})</h4><div class="detail-grid"><div><div class="metric-label">Type</div><div class="metric-value">{{.Type}}</div></div><div><div class="metric-label">Status</div><div class="status status--success">{{.Status}}</div></div><div><div class="metric-label">Current Passengers</div><div class="metric-value">{{.Passengers}}</div></div><div><div class="metric-label">Platform Height</div><div class="metric-value">{{.Height}}m</div></div></div>{{end}}

{{define "fleetGrid"}}{{range .}}<div class="train-card" data-train-id="{{.ID}}"><div class="train-header"><div class="train-id">{{.ID}}</div><div class="train-status {{.Status}}">{{label .Status}}</div></div><div class="train-metrics"><div class="train-metric"><div class="train-metric-value">{{.Health}}%</div><div class="train-metric-label">Health</div></div><div class="train-metric"><div class="train-metric-value">{{.Speed}}</div><div class="train-metric-label">Speed (km/h)</div></div><div class="train-metric"><div class="train-metric-value">{{kilo .Mileage}}</div><div class="train-metric-label">Mileage (km)</div></div><div class="train-metric"><div class="train-metric-value">{{yesno (ne .Branding.Advertiser "")}}</div><div class="train-metric-label">Branded</div></div></div></div>{{end}}{{end}}

{{define "trainModal"}}<div class="detail-grid"><div><h4>System Health</h4><div class="train-metric"><div class="train-metric-value">{{.Health}}%</div><div class="train-metric-label">Overall Health</div></div><div class="train-metric"><div class="train-metric-value">{{def .Doors 90}}%</div><div class="train-metric-label">Door System</div></div><div class="train-metric"><div class="train-metric-value">{{def .Braking 85}}%</div><div class="train-metric-label">Braking System</div></div><div class="train-metric"><div class="train-metric-value">{{def .HVAC 92}}%</div><div class="train-metric-label">HVAC System</div></div></div><div><h4>Operational Data</h4><div class="train-metric"><div class="train-metric-value">{{label .Status}}</div><div class="train-metric-label">Current Status</div></div><div class="train-metric"><div class="train-metric-value">{{kilo .Mileage}} km</div><div class="train-metric-label">Total Mileage</div></div><div class="train-metric"><div class="train-metric-value">{{with .Branding.Advertiser}}{{.}}{{else}}None{{end}}</div><div class="train-metric-label">Current Branding</div></div><div class="train-metric"><div class="train-metric-value">{{.Branding.HoursRemaining}}h</div><div class="train-metric-label">Branding Remaining</div></div></div></div>{{end}}

{{define "bays"}}{{range .}}<div class="bay {{.Class}}">Bay {{.Number}}<br>{{.Occupant}}</div>{{end}}{{end}}

{{define "metrics"}}{{range .}}<div class="train-metric"><div class="train-metric-value">{{.Value}}</div><div class="train-metric-label">{{.Label}}</div></div>{{end}}{{end}}

{{define "activities"}}{{range .}}<div class="operation-item"><div><div class="item-title">{{.Activity}}</div><div class="item-sub">{{.Window}}</div></div><div class="status status--{{slug .Status}}">{{.Status}}</div></div>{{end}}{{end}}

{{define "schedule"}}{{range .}}<div class="maintenance-item"><div><div class="item-title">{{.TrainID}}</div><div class="item-sub">{{.Type}}</div></div><div><div class="status status--{{lower .Priority}}">{{.Priority}}</div><div class="item-sub">{{.Date}}</div></div></div>{{end}}{{end}}

{{define "priorities"}}{{range .}}<div class="priority-item"><div><div class="item-title">{{.TrainID}}</div><div class="item-sub">{{.Issue}}</div><div class="item-sub">ETA: {{.ETA}}</div></div><div class="status status--{{lower .Priority}}">{{.Priority}}</div></div>{{end}}{{end}}

{{define "crews"}}{{range .}}<div class="crew-item"><div class="item-title">{{.Name}}</div><div class="item-sub">Lead: {{.Lead}}</div><div class="item-sub">{{.Task}}</div><div class="item-sub">{{.Shift}} Shift</div></div>{{end}}{{end}}

{{define "options"}}{{range .}}<option value="{{.Value}}">{{.Text}}</option>{{end}}{{end}}

{{define "kpis"}}{{range .}}<div class="kpi-item"><div class="kpi-label">{{.Label}}</div><div class="kpi-value">{{.Value}}</div></div>{{end}}{{end}}

{{define "impact"}}<div class="detail-grid"><div class="train-metric"><div class="train-metric-value">{{.AffectedServices}}</div><div class="train-metric-label">Affected Services</div></div><div class="train-metric"><div class="train-metric-value">{{comma .PassengerImpact}}</div><div class="train-metric-label">Passenger Impact</div></div><div class="train-metric"><div class="train-metric-value">₹{{comma .RevenueLoss}}</div><div class="train-metric-label">Revenue Loss</div></div><div class="train-metric"><div class="train-metric-value">{{.RecoveryMinutes}} min</div><div class="train-metric-label">Recovery Time</div></div></div><div class="recommendations"><h4>Recommended Actions:</h4><ul><li>Deploy backup train from depot</li><li>Implement {{.AlternativeRoutes}} alternative route(s)</li><li>Increase service frequency on adjacent lines</li><li>Activate passenger information system</li></ul></div>{{end}}
`))

// exec renders a named fragment. Templates are fixed at build time, so an
// execution error is a programming mistake; it is logged and the region is
// rendered empty.
func exec(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		return ""
	}
	return template.HTML(buf.String())
}
