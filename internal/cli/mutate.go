package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mbkm-console/internal/model"
	"mbkm-console/internal/statusutil"
)

// readData returns the --data payload; "-" reads stdin and "@path" reads a file.
func readData(cmd *cobra.Command, data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	switch {
	case data == "":
		return nil, errors.New("missing --data")
	case data == "-":
		return io.ReadAll(cmd.InOrStdin())
	case strings.HasPrefix(data, "@"):
		return os.ReadFile(strings.TrimPrefix(data, "@"))
	default:
		return []byte(data), nil
	}
}

func newCreateCmd(app *App) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "create <resource>",
		Short: "Create a program, place or setting from JSON",
		Example: strings.TrimSpace(`
mbkm create programs --data '{"name":"Magang Riset","category":"Magang","quota":10}'
mbkm create places --data @place.json
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			r, err := lookupResource(c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			body, err := readData(cmd, data)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Programs and settings default to the active period.
			p := app.resolver(c).Resolve(cmd.Context()).Period
			env, err := r.create(cmd.Context(), body, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, env)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON payload, @file or - for stdin")
	return cmd
}

func newUpdateCmd(app *App) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "update <resource> <id>",
		Short: "Replace a program, place or setting from JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, r, id, err := app.target(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			body, err := readData(cmd, data)
			if err != nil {
				return writeErr(cmd, err)
			}
			p := app.resolver(c).Resolve(cmd.Context()).Period
			env, err := r.update(cmd.Context(), id, body, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, env)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON payload, @file or - for stdin")
	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <resource> <id>",
		Short: "Flip the active flag of a program, place or setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, id, err := app.target(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			env, err := r.toggle(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, env)
		},
	}
}

func newReviewCmd(app *App) *cobra.Command {
	var status, note string
	cmd := &cobra.Command{
		Use:   "review <registrant-id>",
		Short: "Approve, reject or reset a registration",
		Example: strings.TrimSpace(`
mbkm review 12 --status approved
mbkm review 12 --status rejected --note "incomplete documents"
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := statusutil.ReviewStatus(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			change, msg, err := c.Registrants().SetStatus(cmd.Context(), id, model.RegistrantReview{Status: st, Note: note})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: change, Message: msg})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "New status: approved|rejected|pending (approve, reject and reset also work)")
	cmd.Flags().StringVar(&note, "note", "", "Optional note for the student")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	var confirm string
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a record after confirming its exact name",
		Example: strings.TrimSpace(`
mbkm delete places 3 --confirm "Gojek"
mbkm delete places 3 --confirm "Gojek" --force
mbkm delete settings 1 --confirm "2024/2025 Genap"
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, id, err := app.target(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			env, err := r.remove(cmd.Context(), id, confirm, force)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, env)
		},
	}
	cmd.Flags().StringVar(&confirm, "confirm", "", "The record's exact name")
	cmd.Flags().BoolVar(&force, "force", false, "Delete permanently instead of moving to trash (places)")
	return cmd
}

func newUploadLogoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload-logo <place-id> <file>",
		Short: "Upload a place's logo image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			f, err := os.Open(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			defer f.Close()
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			place, msg, err := c.UploadPlaceLogo(cmd.Context(), id, filepath.Base(args[1]), f)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: place, Message: msg})
		},
	}
}
