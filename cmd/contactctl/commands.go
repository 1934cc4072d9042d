package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dilshat/contacts-admin/console"
	"github.com/dilshat/contacts-admin/log"
	"github.com/dilshat/contacts-admin/service/dto"
	"github.com/dilshat/contacts-admin/util"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	api     string
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "contactctl",
		Short:         "Terminal console for the contact service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			if _, err := log.Init(level, true); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.api, "api", util.GetEnv("CONTACTS_API", "http://localhost:8080"), "contact service base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newImportCmd(opts),
		newDeleteCmd(opts),
		newBroadcastCmd(opts),
	)

	return root
}

func (o *options) console() *console.Console {
	return console.NewConsole(console.NewClient(o.api, &http.Client{Timeout: o.timeout}))
}

// report prints the console status and passes err through.
func report(w io.Writer, c *console.Console, err error) error {
	if err != nil {
		return err
	}
	return console.RenderStatus(w, c.Status())
}

func newListCmd(opts *options) *cobra.Command {
	var (
		search string
		more   []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts grouped by sector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.console()
			if err := c.Load(cmd.Context()); err != nil {
				return err
			}

			c.Update(func(s console.State) console.State {
				s = s.Search(search)
				for _, sector := range more {
					s = s.ShowMore(sector)
				}
				return s
			})

			return console.Render(cmd.OutOrStdout(), c.State())
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "only contacts whose name, phone, e-mail or sector contain this text")
	cmd.Flags().StringArrayVar(&more, "more", nil, "show another page of this sector (repeatable)")

	return cmd
}

func newAddCmd(opts *options) *cobra.Command {
	var contact dto.Contact

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a single contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.console()
			if err := c.Load(cmd.Context()); err != nil {
				return err
			}

			_, err := c.Add(cmd.Context(), contact)
			return report(cmd.OutOrStdout(), c, err)
		},
	}

	cmd.Flags().StringVar(&contact.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&contact.Name, "name", "", "name")
	cmd.Flags().StringVar(&contact.Email, "email", "", "e-mail")
	cmd.Flags().StringVar(&contact.Sector, "sector", "", "sector")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import contacts from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			c := opts.console()
			_, err = c.Import(cmd.Context(), file)
			return report(cmd.OutOrStdout(), c, err)
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid contact id %q", args[0])
			}

			c := opts.console()
			_, err = c.Delete(cmd.Context(), id)
			return report(cmd.OutOrStdout(), c, err)
		},
	}
}

func newBroadcastCmd(opts *options) *cobra.Command {
	var (
		text    string
		sectors []string
		ids     []int
		at      string
	)

	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Send a message to the selected sectors and contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var scheduleAt *time.Time
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q, want RFC3339", at)
				}
				scheduleAt = &parsed
			}

			c := opts.console()
			if err := c.Load(cmd.Context()); err != nil {
				return err
			}

			c.Update(func(s console.State) console.State {
				for _, sector := range sectors {
					s = s.SelectSector(sector, true)
				}
				for _, id := range ids {
					s = s.SelectContact(id, true)
				}
				return s
			})

			_, err := c.Broadcast(cmd.Context(), text, scheduleAt)
			return report(cmd.OutOrStdout(), c, err)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "message text")
	cmd.Flags().StringArrayVar(&sectors, "sector", nil, "select every contact of this sector (repeatable)")
	cmd.Flags().IntSliceVar(&ids, "id", nil, "select this contact (repeatable)")
	cmd.Flags().StringVar(&at, "at", "", "deliver at this RFC3339 time instead of now")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}
