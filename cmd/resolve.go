package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/farsistream-cli/farsistream/color"
	"github.com/farsistream-cli/farsistream/history"
	"github.com/farsistream-cli/farsistream/icon"
	"github.com/farsistream-cli/farsistream/internal/cache"
	"github.com/farsistream-cli/farsistream/key"
	"github.com/farsistream-cli/farsistream/open"
	"github.com/farsistream-cli/farsistream/query"
	"github.com/farsistream-cli/farsistream/resolver"
	"github.com/farsistream-cli/farsistream/source"
	"github.com/farsistream-cli/farsistream/style"
	"github.com/farsistream-cli/farsistream/util"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringP("type", "t", "movie", "Content type of the page (movie, episode, series)")
	lo.Must0(resolveCmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"movie", "episode", "series"}, cobra.ShellCompDirectiveNoFileComp
	}))

	resolveCmd.Flags().IntP("id", "i", 0, "Site-internal post ID, skips discovery from markup")
	resolveCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	resolveCmd.Flags().BoolP("best", "b", false, "Print only the best quality stream URL")
	resolveCmd.Flags().BoolP("cached", "c", false, "Replay the last stored result for this page without touching the network")

	resolveCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}

	resolveCmd.SetOut(os.Stdout)
}

// resolveOutput is the wire shape of the scriptable resolve mode.
type resolveOutput struct {
	PageURL string          `json:"page_url" jsonschema:"description=Canonical URL of the content page that was resolved."`
	Kind    string          `json:"kind" jsonschema:"description=Outcome discriminator: success, no_sources_found, network_error, parse_error or security_rejected."`
	Sources []*source.Video `json:"sources,omitempty" jsonschema:"description=Playable streams ordered best quality first. Present only on success."`
	Reason  string          `json:"reason,omitempty" jsonschema:"description=Human-readable explanation for negative outcomes."`
	Cause   string          `json:"cause,omitempty" jsonschema:"description=Underlying error text for network and parse failures."`
}

func newResolveOutput(pageURL string, res source.Result) *resolveOutput {
	out := &resolveOutput{
		PageURL: pageURL,
		Kind:    string(res.Kind()),
		Sources: res.Sources(),
		Reason:  res.Reason(),
	}
	if err := res.Err(); err != nil {
		out.Cause = err.Error()
	}
	return out
}

// resolveCmd resolves a content page without any interactive prompting.
var resolveCmd = &cobra.Command{
	Use:   "resolve [page-url]",
	Short: "Resolve a content page into playable stream URLs (scriptable)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			pageURL  = strings.TrimSpace(args[0])
			asJson   = lo.Must(cmd.Flags().GetBool("json"))
			bestOnly = lo.Must(cmd.Flags().GetBool("best"))
			replay   = lo.Must(cmd.Flags().GetBool("cached"))
		)

		var out *resolveOutput
		if replay {
			out = readArtifact(pageURL)
			if out == nil {
				handleErr(errors.New("no stored result for this page, resolve without --cached first"))
			}
		} else {
			page := pageFromFlags(cmd, pageURL)
			res := resolver.Default().Resolve(context.Background(), page)
			out = newResolveOutput(pageURL, res)
			afterResolve(page, res)
		}

		if asJson {
			lo.Must0(json.NewEncoder(cmd.OutOrStdout()).Encode(out))
		} else {
			switch {
			case out.Kind != string(source.KindSuccess):
				handleErr(errors.New(resultMessage(out)))
			case bestOnly:
				cmd.Println(out.Sources[0].URL)
			default:
				for _, v := range out.Sources {
					cmd.Println(v.URL)
				}
			}
		}

		if out.Kind != string(source.KindSuccess) {
			os.Exit(1)
		}
	},
}

func init() {
	resolveCmd.AddCommand(resolveSchemaCmd)
}

// resolveSchemaCmd generates the JSON schema for the scriptable resolve output.
var resolveSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema for the scriptable resolve output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "video", "resolveoutput":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		schema := reflector.Reflect(&resolveOutput{})
		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}

// resolveInteractive is the bare `farsistream <url>` flow: resolve, then let
// the user pick a stream from the ordered list.
func resolveInteractive(pageURL string) {
	page := &source.Page{URL: strings.TrimSpace(pageURL), Type: source.PageMovie}

	erase := util.PrintErasable(fmt.Sprintf("%s Resolving %s...", icon.Get(icon.Progress), pageURL))
	res := resolver.Default().Resolve(context.Background(), page)
	erase()

	if !res.IsSuccess() {
		handleErr(errors.New(resultMessage(newResolveOutput(pageURL, res))))
	}

	afterResolve(page, res)

	sources := res.Sources()
	labels := lo.Map(sources, func(v *source.Video, _ int) string {
		label := fmt.Sprintf("%s  %s", style.QualityTag(v.Quality), v.CDN)
		if v.Mirror > 0 {
			label += style.Faint(fmt.Sprintf(" (mirror %d)", v.Mirror))
		}
		return label
	})

	var picked int
	prompt := &survey.Select{
		Message: fmt.Sprintf("Found %s:", util.Quantify(len(sources), "stream", "streams")),
		Options: labels,
	}
	handleErr(survey.AskOne(prompt, &picked))

	fmt.Printf("%s %s\n", icon.Get(icon.Video), sources[picked].URL)

	launch := false
	confirm := &survey.Confirm{Message: "Open in the default player?", Default: false}
	if err := survey.AskOne(confirm, &launch); err == nil && launch {
		handleErr(open.Start(sources[picked].URL))
	}
}

// pageFromFlags builds the page reference from the resolve command flags.
func pageFromFlags(cmd *cobra.Command, pageURL string) *source.Page {
	page := &source.Page{URL: pageURL}

	switch lo.Must(cmd.Flags().GetString("type")) {
	case "episode":
		page.Type = source.PageEpisode
	case "series":
		page.Type = source.PageSeries
	default:
		page.Type = source.PageMovie
	}

	if id := lo.Must(cmd.Flags().GetInt("id")); id > 0 {
		page.InternalID = mo.Some(id)
	}

	return page
}

// afterResolve runs the bookkeeping every successful resolution shares:
// URL suggestions, resolution history and the replayable artifact.
func afterResolve(page *source.Page, res source.Result) {
	if !res.IsSuccess() {
		return
	}

	_ = query.Remember(page.URL, 1)

	if viper.GetBool(key.HistorySaveOnResolve) {
		_ = history.Save(page, res.Sources())
	}

	_ = cache.Write(
		cache.GenerateKey(page.URL, "resolve"),
		newResolveOutput(page.URL, res),
	)
}

// readArtifact loads the last stored result for a page, if fresh enough.
func readArtifact(pageURL string) *resolveOutput {
	var out resolveOutput
	if !cache.Read(cache.GenerateKey(pageURL, "resolve"), &out) {
		return nil
	}
	return &out
}

// resultMessage renders a negative outcome for terminal display.
func resultMessage(out *resolveOutput) string {
	switch source.Kind(out.Kind) {
	case source.KindSecurityRejected:
		return fmt.Sprintf("%s %s", icon.Get(icon.Lock), out.Reason)
	case source.KindNoSources:
		return fmt.Sprintf("no playable sources: %s", out.Reason)
	case source.KindNetworkError:
		return fmt.Sprintf("network failure: %s %s", out.Cause, style.Faint("(retry may help)"))
	case source.KindParseError:
		return fmt.Sprintf("extraction failure: %s %s", out.Cause, style.Fg(color.Yellow)("(upstream markup may have changed)"))
	default:
		return out.Kind
	}
}
