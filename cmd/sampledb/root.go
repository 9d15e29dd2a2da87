package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ryanbastic/go-sampledb/internal/config"
	"github.com/ryanbastic/go-sampledb/internal/metrics"
	"github.com/ryanbastic/go-sampledb/pkg/sampledb"
)

// cli carries configuration shared by every subcommand.
type cli struct {
	cfg    config.Config
	logger *slog.Logger

	address string
	apiKey  string
}

func newRootCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	c := &cli{cfg: cfg, logger: logger}

	root := &cobra.Command{
		Use:           "sampledb",
		Short:         "Query and update a SampleDB instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.address, "address", cfg.Address, "SampleDB server address (SAMPLEDB_ADDRESS)")
	root.PersistentFlags().StringVar(&c.apiKey, "api-key", cfg.APIKey, "SampleDB API key (SAMPLEDB_API_KEY)")

	root.AddCommand(
		c.meCmd(),
		c.usersCmd(),
		c.actionsCmd(),
		c.actionTypesCmd(),
		c.instrumentsCmd(),
		c.instrumentLogCmd(),
		c.locationsCmd(),
		c.locationTypesCmd(),
		c.objectsCmd(),
		c.objectDataCmd(),
		c.commentCmd(),
		c.uploadCmd(),
		c.logCmd(),
		c.followCmd(),
		c.fakeCmd(),
	)
	return root
}

// connect returns an authenticated client. Requests are instrumented with
// the sampledb_client_* metrics.
func (c *cli) connect(cmd *cobra.Command) (*sampledb.Client, error) {
	client := sampledb.New(
		sampledb.WithHTTPClient(&http.Client{
			Timeout:   c.cfg.Timeout,
			Transport: metrics.Transport(http.DefaultTransport),
		}),
		sampledb.WithLogger(c.logger),
	)
	if err := client.Authenticate(cmd.Context(), c.address, c.apiKey); err != nil {
		return nil, err
	}
	return client, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type confirmation struct {
	Status   int    `json:"status"`
	Location string `json:"location,omitempty"`
}

func printResponse(w io.Writer, resp *sampledb.Response) error {
	return printJSON(w, confirmation{Status: resp.StatusCode, Location: resp.Header.Get("Location")})
}

func parseID(name, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", name, s)
	}
	return id, nil
}

// listOrGet builds a command that lists a resource or, given an id, fetches
// one item.
func listOrGet[T any](
	c *cli,
	use, short string,
	list func(context.Context, *sampledb.Client) ([]T, error),
	get func(context.Context, *sampledb.Client, int) (*T, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.connect(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				items, err := list(cmd.Context(), client)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), items)
			}
			id, err := parseID("id", args[0])
			if err != nil {
				return err
			}
			item, err := get(cmd.Context(), client, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), item)
		},
	}
}
