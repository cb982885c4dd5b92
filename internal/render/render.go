package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/slipway-sh/slipwayd/internal/manifest"
)

// The rendered file mirrors the build pipeline step for step, so an image
// built with an external Dockerfile engine matches what the daemon builds
// natively. The dependency layers come first for the same reason they form
// a separate stage internally: editing application files must not bust the
// install layers.
const dockerfileTemplate = `FROM {{ .Base }}
{{- if .Packages }}

RUN apt-get update && apt-get install -y --no-install-recommends {{ join .Packages " " }} && rm -rf /var/lib/apt/lists/*
{{- end }}
{{- if .UpgradePip }}

RUN pip3 install --no-cache-dir --upgrade pip
{{- end }}
{{- if .Requirements }}

COPY {{ .Requirements }} /requirements.txt
RUN pip3 install --no-cache-dir -r /requirements.txt
{{- end }}
{{- if .Files }}

{{ range .Files }}COPY {{ . }} /
{{ end }}
{{- end }}
RUN useradd -m -u {{ .UID }} -d {{ .Home }} {{ .User }}
USER {{ .UID }}

ENV HOME={{ .Home }}
{{- range .Env }}
ENV {{ . }}
{{- end }}

WORKDIR {{ .Workdir }}
COPY --chown={{ .UID }}:{{ .UID }} . {{ .Workdir }}

EXPOSE {{ .Port }}

HEALTHCHECK --interval={{ .Interval }} --timeout={{ .Timeout }} --start-period={{ .StartPeriod }} --retries={{ .Retries }} \
    CMD curl --fail http://localhost:{{ .Port }}{{ .HealthPath }} || exit 1

CMD {{ .Command }}
`

var tmpl = template.Must(template.New("dockerfile").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(dockerfileTemplate))

// Template inputs derived from a manifest.
type params struct {
	Base         string
	Packages     []string
	UpgradePip   bool
	Requirements string
	Files        []string
	User         string
	UID          int
	Home         string
	Workdir      string
	Env          []string
	Port         int
	HealthPath   string
	Interval     string
	Timeout      string
	StartPeriod  string
	Retries      int
	Command      string
}

// Renders a manifest as an equivalent Dockerfile.
func Dockerfile(m *manifest.Manifest) (string, error) {
	command, err := json.Marshal(m.Serve.Command)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	p := params{
		Base:         m.Image.Base,
		Packages:     m.System.Packages,
		UpgradePip:   m.Python.UpgradePip,
		Requirements: m.Python.Requirements,
		Files:        m.App.Files,
		User:         m.App.User,
		UID:          m.App.UID,
		Home:         m.App.Home,
		Workdir:      m.App.Workdir,
		Env:          sortedEnv(m.Env),
		Port:         m.Serve.Port,
		HealthPath:   m.Health.Path,
		Interval:     durationArg(m.Health.Interval),
		Timeout:      durationArg(m.Health.Timeout),
		StartPeriod:  durationArg(m.Health.StartPeriod),
		Retries:      m.Health.Retries,
		Command:      string(command),
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, p); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	return b.String(), nil
}

// Formats env entries as sorted "KEY=VALUE" strings for stable output.
func sortedEnv(env map[string]string) []string {
	entries := make([]string, 0, len(env))
	for k, v := range env {
		entries = append(entries, k+"="+v)
	}
	sort.Strings(entries)
	return entries
}

// Formats a manifest duration as a HEALTHCHECK argument (e.g. "30s").
func durationArg(d manifest.Duration) string {
	return time.Duration(d).String()
}
