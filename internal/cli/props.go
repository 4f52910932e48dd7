package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	jsoniter "github.com/json-iterator/go"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thushan/llamadeck/internal/adapter/props"
	"github.com/thushan/llamadeck/internal/core/domain"
	"github.com/thushan/llamadeck/internal/store"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newPropsCmd(a *app) *cobra.Command {
	var (
		output string
		query  string
	)

	cmd := &cobra.Command{
		Use:   "props",
		Short: "Show the properties reported by the llama.cpp server",
		Example: "  llamadeck props\n" +
			"  llamadeck props --output yaml\n" +
			"  llamadeck props --query '$.default_generation_settings.n_ctx'",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case OutputTable, OutputJSON, OutputYAML:
			default:
				return fmt.Errorf("unknown output format %q, expected table, json or yaml", output)
			}

			client := props.NewClient(a.cfg.API.BaseURL, a.cfg.API.Key, a.cfg.API.Timeout, a.log)
			serverStore := store.NewServerStore(client, a.log)
			defer serverStore.Close()

			if err := serverStore.Fetch(cmd.Context()); err != nil {
				return fmt.Errorf("%s (%s): %w", serverStore.Error(), client.Endpoint(), err)
			}

			state := serverStore.Snapshot()
			if query != "" {
				return renderQuery(cmd.OutOrStdout(), state.Props, query)
			}
			return renderProps(cmd.OutOrStdout(), state, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "output format: table, json or yaml")
	cmd.Flags().StringVarP(&query, "query", "q", "", "JSONPath expression evaluated against the raw payload")
	return cmd
}

// rawDocument decodes the payload generically so unknown fields survive
func rawDocument(p *domain.ServerProps) (any, error) {
	var doc any
	if len(p.Raw) == 0 {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		p = &domain.ServerProps{Raw: raw}
	}
	if err := json.Unmarshal(p.Raw, &doc); err != nil {
		return nil, fmt.Errorf("decode props: %w", err)
	}
	return doc, nil
}

func renderQuery(w io.Writer, p *domain.ServerProps, query string) error {
	doc, err := rawDocument(p)
	if err != nil {
		return err
	}

	value, err := jsonpath.Get(query, doc)
	if err != nil {
		return fmt.Errorf("query %q: %w", query, err)
	}

	if s, ok := value.(string); ok {
		_, err = fmt.Fprintln(w, s)
		return err
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func renderProps(w io.Writer, state domain.FetchState, output string) error {
	switch output {
	case OutputJSON:
		doc, err := rawDocument(state.Props)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err

	case OutputYAML:
		doc, err := rawDocument(state.Props)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()

	default:
		table, err := pterm.DefaultTable.WithHasHeader().WithData(propsTable(state)).Srender()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, table)
		return err
	}
}

func propsTable(state domain.FetchState) [][]string {
	p := state.Props
	rows := [][]string{
		{"PROPERTY", "VALUE"},
		{"role", state.Role.Label()},
		{"model", orDash(p.ModelPath)},
		{"alias", orDash(p.ModelAlias)},
		{"build", orDash(p.BuildInfo)},
		{"slots", strconv.Itoa(p.TotalSlots)},
	}

	if gs := p.DefaultGenerationSettings; gs != nil {
		if gs.NCtx != nil {
			rows = append(rows, []string{"context size", strconv.Itoa(*gs.NCtx)})
		}
		if params := gs.Params; params != nil {
			rows = append(rows,
				[]string{"temperature", strconv.FormatFloat(params.Temperature, 'g', -1, 64)},
				[]string{"top_k", strconv.Itoa(params.TopK)},
				[]string{"top_p", strconv.FormatFloat(params.TopP, 'g', -1, 64)},
			)
		}
	}

	if m := p.Modalities; m != nil {
		var modalities []string
		if m.Vision {
			modalities = append(modalities, "vision")
		}
		if m.Audio {
			modalities = append(modalities, "audio")
		}
		rows = append(rows, []string{"modalities", orDash(strings.Join(modalities, ", "))})
	}

	if len(p.WebUISettings) > 0 {
		rows = append(rows, []string{"webui settings", strconv.Itoa(len(p.WebUISettings))})
	}
	return rows
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
