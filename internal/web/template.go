package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sweeney/lift-controller/internal/params"
	"github.com/sweeney/lift-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"cm":    params.FormatFloat,
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"since": func(then, now time.Time) string {
		if then.IsZero() {
			return "never"
		}
		return humanize.RelTime(then, now, "ago", "from now")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Lift Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Lift Controller</h1>

<h2>Lift</h2>
<table>
<tr><th>State</th><td id="state">{{.State}}</td></tr>
<tr><th>Position</th><td>{{cm .Lift.Position}} cm</td></tr>
<tr><th>Target</th><td>{{cm .Lift.MoveTo}} cm</td></tr>
<tr><th>Distance</th><td>{{cm .Lift.Distance}} cm</td></tr>
<tr><th>Motion</th><td class="{{if .Lift.Motion}}on{{else}}off{{end}}">{{if .Lift.Motion}}yes{{else}}no{{end}}</td></tr>
<tr><th>Last motion</th><td>{{since .Lift.LastMotion .Now}}</td></tr>
<tr><th>Transitions</th><td>{{comma .Lift.Transitions}}</td></tr>
</table>

<h2>Parameters</h2>
<table>
{{range .Params}}<tr><th>{{.Name}}</th><td>{{.Value}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Base topic</th><td>{{.Config.Base}}</td></tr>
{{if .Queued}}<tr><th>Queued</th><td>{{.Queued}}</td></tr>{{end}}
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Distance sensor</th><td>{{.Config.Distance}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a>{{if .HasMetrics}} | <a href="/metrics">metrics</a>{{end}}</p>
</body>
</html>
`

type paramRow struct {
	Name  string
	Value string
}

func renderHTML(w io.Writer, snap status.Snapshot, hasMetrics bool) {
	state := snap.Lift.State.String()
	if state == "" {
		state = "UNKNOWN"
	}

	rows := make([]paramRow, 0, len(params.Names()))
	for _, name := range params.Names() {
		v, _ := snap.Lift.Params.Get(name)
		rows = append(rows, paramRow{Name: name, Value: v})
	}

	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		State      string
		Uptime     time.Duration
		Params     []paramRow
		HasMetrics bool
	}{
		Snapshot:   snap,
		State:      state,
		Uptime:     snap.Uptime(),
		Params:     rows,
		HasMetrics: hasMetrics,
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("http: render status page: %v", err)
	}
}
