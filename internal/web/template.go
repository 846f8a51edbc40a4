package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/pihole-buttons/internal/logic"
	"github.com/sweeney/pihole-buttons/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Pi-hole Buttons</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.idle { color: #888; }
.armed { color: orange; font-weight: bold; }
.executing { color: green; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.bar { background: #eee; width: 200px; height: 12px; display: inline-block; vertical-align: middle; }
.bar span { background: #fc0; height: 12px; display: block; }
</style>
</head>
<body>
<h1>Pi-hole Buttons</h1>

<h2>Brightness</h2>
<table>
<tr><th>Level</th><td>{{.Brightness}}% <span class="bar"><span style="width: {{.Brightness}}%"></span></span></td></tr>
<tr><th>PWM duty</th><td>{{printf "%.3f" .Duty}}</td></tr>
</table>

<h2>Confirmation Windows</h2>
<table>
{{range .WindowRows}}<tr><th>{{.Name}}</th><td class="{{.Class}}">{{.State}}{{if .Remaining}} ({{.Remaining}}s left){{end}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
{{range .PressRows}}<tr><th>{{.Name}} presses</th><td>{{.Count}}</td></tr>
{{end}}<tr><th>Armed</th><td>{{.Counts.Armed}}</td></tr>
<tr><th>Confirmed</th><td>{{.Counts.Confirmed}}</td></tr>
<tr><th>Canceled</th><td>{{.Counts.Canceled}}</td></tr>
<tr><th>Expired</th><td>{{.Counts.Expired}}</td></tr>
<tr><th>Succeeded</th><td>{{.Counts.Succeeded}}</td></tr>
<tr><th>Failed</th><td>{{.Counts.Failed}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Ready</th><td>{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Confirm timeout</th><td>{{.Config.ConfirmTimeoutMs}}ms</td></tr>
<tr><th>Gamma</th><td>{{.Config.Gamma}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

type windowRow struct {
	Name      string
	State     string
	Class     string
	Remaining int64
}

type pressRow struct {
	Name  string
	Count int
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Template needs stable ordering; maps iterate randomly.
	var windowRows []windowRow
	for _, kind := range []logic.ActionKind{logic.ActionGravity, logic.ActionSystem} {
		win, ok := snap.Windows[kind]
		if !ok {
			continue
		}
		row := windowRow{Name: string(kind), State: string(win.State)}
		switch win.State {
		case logic.StateArmed:
			row.Class = "armed"
			row.Remaining = int64(snap.WindowRemaining(kind).Truncate(time.Second).Seconds())
		case logic.StateExecuting:
			row.Class = "executing"
		default:
			row.Class = "idle"
		}
		windowRows = append(windowRows, row)
	}

	var pressRows []pressRow
	for btn := logic.Button(0); btn < logic.NumButtons; btn++ {
		pressRows = append(pressRows, pressRow{Name: btn.String(), Count: snap.Counts.Presses[btn]})
	}

	data := struct {
		status.Snapshot
		Uptime     time.Duration
		WindowRows []windowRow
		PressRows  []pressRow
	}{
		Snapshot:   snap,
		Uptime:     snap.Uptime(),
		WindowRows: windowRows,
		PressRows:  pressRows,
	}
	indexTmpl.Execute(w, data)
}
