// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/farsistream-cli/farsistream/color"
	"github.com/farsistream-cli/farsistream/constant"
	"github.com/farsistream-cli/farsistream/key"
	"github.com/farsistream-cli/farsistream/style"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Farsistream + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.TrustDomains, []string{"farsiplex.com", "farsiland.com", "farsicdn.net"}, "Hosts the resolver is allowed to fetch from and accept stream URLs on.\nAny URL outside this set is rejected before a single byte is fetched")
	register(key.TrustAllowSubdomains, true, "Accept subdomains of trusted hosts (e.g. cdn3.farsiplex.com)")
	register(key.FetchTimeoutSeconds, 15, "Timeout covering connect and read for a single page or mirror fetch")
	register(key.FetchMaxPageBytes, 2*1024*1024, "Byte cap for a content page body. Bodies are truncated, not failed, at the cap")
	register(key.FetchMaxMirrorBytes, 256*1024, "Byte cap for a mirror API response body")
	register(key.FetchSpoofTLS, false, "Fetch with a Chrome TLS fingerprint (uTLS) to pass anti-bot checks.\nSlower connection setup; enable only when the plain client gets blocked")
	register(key.MatchTimeoutMs, 500, "Wall-clock deadline for a single extraction pattern match")
	register(key.MatchMaxInputBytes, 1024*1024, "Input cap applied before any pattern matching is attempted")
	register(key.MatchMaxScriptBytes, 128*1024, "Inline scripts larger than this are skipped, not scanned")
	register(key.MirrorsMax, 5, "Maximum numbered mirror endpoints to probe per page")
	register(key.MirrorsProbeTimeoutSeconds, 8, "Timeout for a single mirror probe")
	register(key.MirrorsRaceTimeoutSeconds, 12, "Overall deadline for the whole mirror race")
	register(key.CacheTTLMinutes, 10, "How long resolved stream URLs stay cached.\nKeep this short: stream URLs are signed and expire upstream")
	register(key.HistorySaveOnResolve, true, "Record successful resolutions in the local history file")
	register(key.SearchShowURLSuggestions, true, "Suggest previously resolved page URLs on shell completion")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"wrap":     func(s string) string { return wordwrap.String(s, 80) },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint (wrap .Description) }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
