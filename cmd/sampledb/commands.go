package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ryanbastic/go-sampledb/pkg/sampledb"
)

func (c *cli) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the user the API key belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.connect(cmd)
			if err != nil {
				return err
			}
			u, err := client.Users.Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
}

func (c *cli) usersCmd() *cobra.Command {
	return listOrGet(c, "users", "List users or show one",
		func(ctx context.Context, cl *sampledb.Client) ([]sampledb.User, error) { return cl.Users.List(ctx) },
		func(ctx context.Context, cl *sampledb.Client, id int) (*sampledb.User, error) { return cl.Users.Get(ctx, id) },
	)
}

func (c *cli) actionsCmd() *cobra.Command {
	return listOrGet(c, "actions", "List actions or show one",
		func(ctx context.Context, cl *sampledb.Client) ([]sampledb.Action, error) { return cl.Actions.List(ctx) },
		func(ctx context.Context, cl *sampledb.Client, id int) (*sampledb.Action, error) { return cl.Actions.Get(ctx, id) },
	)
}

func (c *cli) actionTypesCmd() *cobra.Command {
	return listOrGet(c, "action-types", "List action types or show one",
		func(ctx context.Context, cl *sampledb.Client) ([]sampledb.ActionType, error) { return cl.ActionTypes.List(ctx) },
		func(ctx context.Context, cl *sampledb.Client, id int) (*sampledb.ActionType, error) {
			return cl.ActionTypes.Get(ctx, id)
		},
	)
}

func (c *cli) instrumentsCmd() *cobra.Command {
	return listOrGet(c, "instruments", "List instruments or show one",
		func(ctx context.Context, cl *sampledb.Client) ([]sampledb.Instrument, error) { return cl.Instruments.List(ctx) },
		func(ctx context.Context, cl *sampledb.Client, id int) (*sampledb.Instrument, error) {
			return cl.Instruments.Get(ctx, id)
		},
	)
}

func (c *cli) locationsCmd() *cobra.Command {
	return listOrGet(c, "locations", "List locations or show one",
		func(ctx context.Context, cl *sampledb.Client) ([]sampledb.Location, error) { return cl.Locations.List(ctx) },
		func(ctx context.Context, cl *sampledb.Client, id int) (*sampledb.Location, error) {
			return cl.Locations.Get(ctx, id)
		},
	)
}

func (c *cli) locationTypesCmd() *cobra.Command {
	return listOrGet(c, "location-types", "List location types or show one",
		func(ctx context.Context, cl *sampledb.Client) ([]sampledb.LocationType, error) {
			return cl.LocationTypes.List(ctx)
		},
		func(ctx context.Context, cl *sampledb.Client, id int) (*sampledb.LocationType, error) {
			return cl.LocationTypes.Get(ctx, id)
		},
	)
}

func (c *cli) instrumentLogCmd() *cobra.Command {
	var req sampledb.LogEntryRequest
	cmd := &cobra.Command{
		Use:   "instrument-log <instrument_id> [log_entry_id]",
		Short: "List an instrument's log, show one entry or post a new one",
		Long: "Without --post the log entries are listed, or the given entry is shown.\n" +
			"With --post a new entry is created; --file, --category and --object add attachments.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			instrumentID, err := parseID("instrument_id", args[0])
			if err != nil {
				return err
			}
			client, err := c.connect(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch {
			case req.Content != "":
				resp, err := client.Instruments.CreateLogEntry(ctx, instrumentID, req)
				if err != nil {
					return err
				}
				return printResponse(out, resp)
			case len(args) == 2:
				entryID, err := parseID("log_entry_id", args[1])
				if err != nil {
					return err
				}
				entry, err := client.Instruments.LogEntry(ctx, instrumentID, entryID)
				if err != nil {
					return err
				}
				return printJSON(out, entry)
			default:
				entries, err := client.Instruments.LogEntries(ctx, instrumentID)
				if err != nil {
					return err
				}
				return printJSON(out, entries)
			}
		},
	}
	cmd.Flags().StringVar(&req.Content, "post", "", "content of a new log entry")
	cmd.Flags().IntSliceVar(&req.CategoryIDs, "category", nil, "category id for the new entry (repeatable)")
	cmd.Flags().StringSliceVar(&req.FilePaths, "file", nil, "file to attach to the new entry (repeatable)")
	cmd.Flags().IntSliceVar(&req.ObjectIDs, "object", nil, "object id to attach to the new entry (repeatable)")
	return cmd
}

func (c *cli) objectsCmd() *cobra.Command {
	var (
		opts    sampledb.ListObjectsOptions
		version int
	)
	cmd := &cobra.Command{
		Use:   "objects [object_id]",
		Short: "List objects or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.connect(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) == 0 {
				objects, err := client.Objects.List(ctx, opts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), objects)
			}

			id, err := parseID("object_id", args[0])
			if err != nil {
				return err
			}
			var obj *sampledb.Object
			if cmd.Flags().Changed("version") {
				obj, err = client.Objects.Version(ctx, id, version)
			} else {
				obj, err = client.Objects.Get(ctx, id)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), obj)
		},
	}
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "search query")
	cmd.Flags().IntVar(&opts.ActionID, "action-id", 0, "only objects of this action")
	cmd.Flags().StringVar(&opts.ActionType, "action-type", "", "only objects of this action type")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of objects")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "number of objects to skip")
	cmd.Flags().BoolVar(&opts.NameOnly, "name-only", false, "reduce data to the object name")
	cmd.Flags().IntVar(&version, "version", 0, "show this version instead of the current one")
	return cmd
}

func (c *cli) objectDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "object-data <object_id>",
		Short: "Show an object's data with typed values decoded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("object_id", args[0])
			if err != nil {
				return err
			}
			client, err := c.connect(cmd)
			if err != nil {
				return err
			}
			obj, err := client.Objects.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), obj.Values())
		},
	}
}

func (c *cli) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <object_id> [content]",
		Short: "List an object's comments or post one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("object_id", args[0])
			if err != nil {
				return err
			}
			client, err := c.connect(cmd)
			if err != nil {
				return err
			}
			if len(args) == 2 {
				resp, err := client.Objects.PostComment(cmd.Context(), id, args[1])
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp)
			}
			comments, err := client.Objects.Comments(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), comments)
		},
	}
}

func (c *cli) uploadCmd() *cobra.Command {
	var name, link string
	cmd := &cobra.Command{
		Use:   "upload <object_id> [path|-]",
		Short: "Upload a file to an object, or attach a link with --link",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("object_id", args[0])
			if err != nil {
				return err
			}
			client, err := c.connect(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var resp *sampledb.Response
			switch {
			case link != "":
				resp, err = client.Objects.PostLink(ctx, id, link)
			case len(args) == 2 && args[1] == "-":
				resp, err = client.Objects.UploadFileReader(ctx, id, name, cmd.InOrStdin())
			case len(args) == 2:
				resp, err = client.Objects.UploadFile(ctx, id, args[1], name)
			default:
				return cmd.Usage()
			}
			if err != nil {
				return err
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "file name to store (required when reading stdin)")
	cmd.Flags().StringVar(&link, "link", "", "attach this URL instead of uploading a file")
	return cmd
}

func (c *cli) logCmd() *cobra.Command {
	var afterID int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print object log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.connect(cmd)
			if err != nil {
				return err
			}
			entries, err := client.ObjectLog.List(cmd.Context(), afterID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&afterID, "after", 0, "only entries after this log entry id")
	return cmd
}
