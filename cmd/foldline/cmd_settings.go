package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldline/foldline/internal/license"
	"github.com/foldline/foldline/internal/prefs"
)

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Show or change the license activation",
}

var licenseShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show activation state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := license.Open("")
		if err != nil {
			return err
		}
		styles := currentStyles()
		out := cmd.OutOrStdout()
		if !store.IsActivated() {
			fmt.Fprintln(out, styles.MutedText.Render("not activated"))
			return nil
		}
		st := store.State()
		fmt.Fprintf(out, "%s %s\n", styles.SuccessText.Render("activated"), license.MaskedKey(st.LicenseKey))
		if st.ActivatedAt != nil {
			fmt.Fprintf(out, "since %s\n", st.ActivatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var licenseActivateCmd = &cobra.Command{
	Use:   "activate KEY",
	Short: "Activate with a license key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := license.Open("")
		if err != nil {
			return err
		}
		if err := store.Activate(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "activated %s\n", license.MaskedKey(store.State().LicenseKey))
		return nil
	},
}

var licenseDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Remove the stored license",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := license.Open("")
		if err != nil {
			return err
		}
		if err := store.Deactivate(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deactivated")
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the color theme",
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), prefs.NewThemeStore("").Initialize())
		return nil
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set light|dark",
	Short:     "Persist a theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(prefs.Light), string(prefs.Dark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := prefs.ParseTheme(args[0])
		if err != nil {
			return err
		}
		if err := prefs.NewThemeStore("").Set(theme); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := prefs.NewThemeStore("")
		store.Initialize()
		next, err := store.Toggle()
		if err != nil {
			return fmt.Errorf("toggle theme: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), next)
		return nil
	},
}

func init() {
	licenseCmd.AddCommand(licenseShowCmd, licenseActivateCmd, licenseDeactivateCmd)
	themeCmd.AddCommand(themeShowCmd, themeSetCmd, themeToggleCmd)
}
