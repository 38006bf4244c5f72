package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldline/foldline/internal/app"
	"github.com/foldline/foldline/internal/backend"
	"github.com/foldline/foldline/internal/dialog"
	"github.com/foldline/foldline/internal/prefs"
)

var (
	jsonDataType  string
	pickStartDir  string
	applyDataRoot bool
)

type selectFunc func(context.Context, dialog.Picker, dialog.Options) (string, bool, error)

// pathArg returns args[0] or asks the picker. ok is false when the user
// cancelled the picker.
func pathArg(ctx context.Context, args []string, sel selectFunc) (string, bool, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], true, nil
	}
	theme := prefs.NewThemeStore("").Initialize()
	return sel(ctx, picker, dialog.Options{StartDir: pickStartDir, Theme: theme})
}

func importCommand(use, short string, sel selectFunc, run func(context.Context, backend.Requester, string) (backend.ImportResponse, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [PATH]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok, err := pathArg(cmd.Context(), args, sel)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "import cancelled")
				return nil
			}
			return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
				resp, err := run(ctx, s.Connector, path)
				if err != nil {
					return err
				}
				styles := currentStyles()
				if resp.Success {
					fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessText.Render("✓ "+resp.Message))
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), styles.DangerText.Render("✗ "+resp.Message))
				}
				if len(resp.Summary) > 0 {
					return printJSON(cmd.OutOrStdout(), resp.Summary)
				}
				return nil
			})
		},
	}
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import health data into the backend",
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick a file or folder and print its path",
}

func pickCommand(use, short string, sel selectFunc, after func(cmd *cobra.Command, path string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok, err := pathArg(cmd.Context(), nil, sel)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			if after != nil {
				return after(cmd, path)
			}
			return nil
		},
	}
}

func setDataRoot(cmd *cobra.Command, path string) error {
	if !applyDataRoot {
		return nil
	}
	return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
		resp, err := backend.SetDataRoot(ctx, s.Connector, path)
		if err != nil {
			return err
		}
		if !resp.Success {
			return fmt.Errorf("set data root: %s", resp.Message)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), resp.Message)
		return nil
	})
}

func init() {
	importJSON := importCommand("json-folder", "Import a folder of Garmin JSON exports", dialog.SelectFitFolder,
		func(ctx context.Context, r backend.Requester, path string) (backend.ImportResponse, error) {
			return backend.ImportJSONFolder(ctx, r, path, jsonDataType)
		})
	importJSON.Flags().StringVar(&jsonDataType, "type", backend.JSONSleep, "data type: sleep, daily_summaries or all")

	importCmd.AddCommand(
		importCommand("garmin-export", "Import a Garmin data export archive", dialog.SelectGarminExport, backend.ImportGarminExport),
		importCommand("fit-folder", "Import a folder of FIT files", dialog.SelectFitFolder, backend.ImportFitFolder),
		importJSON,
	)
	importCmd.PersistentFlags().StringVar(&pickStartDir, "from", "", "directory the picker starts in")

	pickDataRoot := pickCommand("data-root", "Pick the backend data folder", dialog.SelectDataRoot, setDataRoot)
	pickDataRoot.Flags().BoolVar(&applyDataRoot, "apply", false, "send the folder to the backend as its data root")

	pickCmd.AddCommand(
		pickCommand("garmin-export", "Pick a Garmin export archive", dialog.SelectGarminExport, nil),
		pickCommand("fit-folder", "Pick a FIT folder", dialog.SelectFitFolder, nil),
		pickDataRoot,
	)
	pickCmd.PersistentFlags().StringVar(&pickStartDir, "from", "", "directory the picker starts in")
}
