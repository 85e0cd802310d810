package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/wukong/query"
)

type queryOptions struct {
	filters      []string
	sort         string
	rows         int
	start        int
	fields       []string
	search       string
	minimumMatch string
	facets       []string
	stats        []string
	paramsOnly   bool
}

func queryCmd(root *rootOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a collection with keyword filters",
		Example: `  wukong query -c cities --nodes solr1:8983 -f country__eq=TW -f population__ge=1000000 --sort -population
  wukong query -c cities -f "name__wc=Tai*" --params`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := opts.manager(query.NewManager(nil))
			if err != nil {
				return err
			}

			if opts.paramsOnly {
				params, err := m.Params()
				if err != nil {
					return err
				}

				return writeJSON(cmd.OutOrStdout(), params)
			}

			s, err := root.connect(cmd.Context(), cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			m, err = opts.manager(s.collection.Documents())
			if err != nil {
				return err
			}

			sections := []query.Section{}
			if len(opts.facets) > 0 {
				sections = append(sections, query.SectionFacets)
			}
			if len(opts.stats) > 0 {
				sections = append(sections, query.SectionStats)
			}

			params, err := m.Params()
			if err != nil {
				return err
			}

			res, err := s.collection.Select(cmd.Context(), params, sections...)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.filters, "filter", "f", nil, "Keyword filter field__operator=value, may be repeated")
	flags.StringVar(&opts.sort, "sort", "", "Sort field, prefix with - for descending order")
	flags.IntVar(&opts.rows, "rows", 10, "Maximum number of documents")
	flags.IntVar(&opts.start, "start", 0, "Offset of the first document")
	flags.StringSliceVar(&opts.fields, "fl", nil, "Fields to return")
	flags.StringVar(&opts.search, "search", "", "Free text searched with edismax")
	flags.StringVar(&opts.minimumMatch, "mm", "", "Minimum should match of the free text search")
	flags.StringSliceVar(&opts.facets, "facet", nil, "Fields to facet on")
	flags.StringSliceVar(&opts.stats, "stats", nil, "Fields to compute statistics for")
	flags.BoolVar(&opts.paramsOnly, "params", false, "Print the compiled request parameters without querying")

	return cmd
}

// manager applies the query flags to m.
func (o *queryOptions) manager(m query.Manager) (query.Manager, error) {
	terms := make([]query.Term, 0, len(o.filters))
	for _, f := range o.filters {
		kw, err := parseFilter(f)
		if err != nil {
			return query.Manager{}, err
		}
		terms = append(terms, kw)
	}

	if len(terms) > 0 {
		var err error
		if m, err = m.Filter(terms...); err != nil {
			return query.Manager{}, err
		}
	}

	if o.sort != "" {
		m = m.SortBy(o.sort)
	}
	if len(o.fields) > 0 {
		m = m.Only(o.fields...)
	}
	if o.search != "" {
		m = m.Search(o.search, o.minimumMatch, nil)
	}
	if len(o.facets) > 0 {
		m = m.Facet(o.facets, 1, nil)
	}
	if len(o.stats) > 0 {
		m = m.Stats(o.stats...)
	}

	return m.Limit(o.rows).Offset(o.start), nil
}

// parseFilter parses "field__operator=value". The value is decoded as a
// YAML scalar or flow sequence, so "42" is a number and "[a, b]" a list.
func parseFilter(arg string) (query.Keyword, error) {
	key, raw, ok := strings.Cut(arg, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return query.Keyword{}, fmt.Errorf("invalid filter %q, expected field__operator=value", arg)
	}

	value := any(raw)
	if raw != "" {
		var decoded any
		if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
			return query.Keyword{}, fmt.Errorf("invalid filter value %q: %w", raw, err)
		}
		value = decoded
	}

	return query.K(strings.TrimSpace(key), value), nil
}
