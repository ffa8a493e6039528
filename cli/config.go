package cli

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"progressboard/model"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the sheet the relay reads from",
	}
	cmd.AddCommand(configGetCmd(a), configSetCmd(a))
	return cmd
}

func configGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the relay's saved sheet configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.store.LoadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", titleStyle.Render("sheet_url: "), st.Config.SheetURL)
			fmt.Fprintf(a.out, "%s %s\n", titleStyle.Render("sheet_name:"), st.Config.SheetName)
			return nil
		},
	}
}

func configSetCmd(a *app) *cobra.Command {
	var fetch bool
	cmd := &cobra.Command{
		Use:   "set <sheet-url> <sheet-name>",
		Short: "Save a new sheet configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := model.WebhookConfig{SheetURL: args[0], SheetName: args[1]}
			if _, err := a.store.SetConfig(cmd.Context(), cfg); err != nil {
				var ve *model.ValidationError
				if errors.As(err, &ve) {
					return errors.Errorf("invalid %s: %s", ve.Field, ve.Message)
				}
				return err
			}
			fmt.Fprintln(a.out, "configuration saved")

			if !fetch {
				return nil
			}
			n, err := a.client.FetchAndSaveSheetData(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "fetched %d row(s) from %s\n", n, cfg.SheetName)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fetch, "fetch", false, "make the relay fetch the new sheet right away")
	return cmd
}

func refreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Make the relay pull fresh data from its default source",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.store.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			renderSync(a.out, st.SaveTime, len(st.Tasks))
			return nil
		},
	}
}

func sampleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print the built-in sample rows in the webhook's JSON format",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := json.MarshalIndent(model.SampleTasks(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(b))
			return nil
		},
	}
}
