package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arloliu/wukong"
	logrusadapter "github.com/arloliu/wukong/contrib/logging/logrus"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	collection string
	nodes      []string
	zookeeper  string
	natsURL    string
	natsBucket string
	order      string
	timeout    time.Duration
	logLevel   string
}

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "wukong",
		Short:         "wukong queries Solr collections through a failover-aware node router.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	flags.StringVarP(&opts.collection, "collection", "c", "", "Collection or alias name")
	flags.StringSliceVar(&opts.nodes, "nodes", nil, "Solr node addresses, e.g. solr1:8983,http://solr2:8983/solr/")
	flags.StringVar(&opts.zookeeper, "zookeeper", "", "ZooKeeper connect string, e.g. zk1:2181,zk2:2181/solr")
	flags.StringVar(&opts.natsURL, "nats-url", "", "NATS server URL of the membership bucket")
	flags.StringVar(&opts.natsBucket, "nats-bucket", "", "NATS KV bucket holding node membership")
	flags.StringVar(&opts.order, "order", "", "Node order: random, round_robin, sticky or fixed")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Timeout of a single node attempt")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		queryCmd(opts),
		nodesCmd(opts),
		schemaCmd(opts),
		aliveCmd(opts),
		publishCmd(opts),
	)

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// config loads the configuration file and applies flag overrides.
func (o *rootOptions) config() (*Config, error) {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.collection != "" {
		cfg.Collection = o.collection
	}
	if len(o.nodes) > 0 {
		cfg.Nodes = o.nodes
	}
	if o.zookeeper != "" {
		cfg.ZooKeeper.Connect = o.zookeeper
	}
	if o.natsURL != "" {
		cfg.NATS.URL = o.natsURL
	}
	if o.natsBucket != "" {
		cfg.NATS.Bucket = o.natsBucket
	}
	if o.order != "" {
		cfg.Order = o.order
	}
	if o.timeout > 0 {
		cfg.Timeout = o.timeout
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// session is everything a command needs to talk to a collection.
type session struct {
	config     *Config
	logger     *logrusadapter.Logger
	source     *source
	collection *wukong.Collection
}

func (s *session) Close() {
	if s.source != nil {
		s.source.close()
	}
}

// newLogger creates a logrus logger writing to w at the given level.
func newLogger(w io.Writer, level string) (*logrusadapter.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	return logrusadapter.New(l).With("app", "wukong"), nil
}

// connect builds the membership source and, when a collection is
// configured, the collection API.
func (o *rootOptions) connect(ctx context.Context, cmd *cobra.Command, needCollection bool) (*session, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	src, err := cfg.membershipSource(ctx, logger)
	if err != nil {
		return nil, err
	}

	s := &session{config: cfg, logger: logger, source: src}
	if !needCollection {
		return s, nil
	}

	if cfg.Collection == "" {
		s.Close()

		return nil, fmt.Errorf("a collection is required (--collection)")
	}

	var ms wukong.MembershipSource
	if src != nil {
		ms = src
	}

	s.collection, err = wukong.Open(cfg.Collection, cfg.Nodes, cfg.options(ms, logger)...)
	if err != nil {
		s.Close()

		return nil, err
	}

	return s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
