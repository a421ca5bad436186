// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rosetta/cli/internal/keychain"
	"rosetta/cli/internal/logging"
	"rosetta/cli/internal/terminal"
)

var credentialsCmd = &cobra.Command{
	Use:     "credentials",
	Aliases: []string{"creds"},
	Short:   "Manage the worker's App Store Connect and OpenAI credentials",
	Long: `Credentials are kept in the OS keychain and handed to the worker as
ISSUER_ID, KEY_ID, PRIVATE_KEY_PATH and OPENAI_API_KEY.`,
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Prompt for credentials and store them in the keychain",
	Long: `Prompts for each credential. Leaving an answer empty keeps the stored value.
Secrets are read without echo when stdin is a terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			return err
		}

		// Echoed ids are erased once read; the OpenAI key is never echoed.
		var c keychain.Credentials
		prompts := []struct {
			label  string
			secret bool
			erase  bool
			dst    *string
		}{
			{"App Store Connect issuer id: ", false, true, &c.IssuerID},
			{"App Store Connect key id: ", false, true, &c.KeyID},
			{"Path to the .p8 private key: ", false, false, &c.PrivateKeyPath},
			{"OpenAI API key (optional): ", true, false, &c.OpenAIKey},
		}
		interactive := terminal.IsInteractive(os.Stdin) && terminal.IsInteractive(os.Stdout)
		prompter := terminal.NewPrompter(os.Stdin, os.Stdout)
		for _, p := range prompts {
			v, err := prompter.Ask(p.label, p.secret)
			if err != nil {
				return fmt.Errorf("read %s: %w", p.label, err)
			}
			if p.erase && interactive && v != "" {
				terminal.ClearPreviousLines(os.Stdout, len(p.label)+len(v), terminal.Width(os.Stdout))
				fmt.Printf("%s%s\n", p.label, logging.MaskValue(v))
			}
			*p.dst = v
		}
		if c.PrivateKeyPath != "" {
			if _, err := os.Stat(c.PrivateKeyPath); err != nil {
				pterm.Warning.Printf("Private key %s is not readable: %v\n", c.PrivateKeyPath, err)
			}
		}

		if err := km.SaveCredentials(c); err != nil {
			fmt.Println("❌ Failed to save credentials securely.")
			return err
		}
		fmt.Println("✅ Credentials saved to the keychain")
		return nil
	},
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show which credentials are stored (masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		c, err := km.LoadCredentials()
		if err != nil {
			return err
		}
		rows := pterm.TableData{
			{"Credential", "Value"},
			{"ISSUER_ID", maskedOrMissing(c.IssuerID)},
			{"KEY_ID", maskedOrMissing(c.KeyID)},
			{"PRIVATE_KEY_PATH", orMissing(c.PrivateKeyPath)},
			{"OPENAI_API_KEY", maskedOrMissing(c.OpenAIKey)},
		}
		if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(rows).Render(); err != nil {
			return err
		}
		if !c.Complete() {
			pterm.Warning.Println("App Store Connect credentials are incomplete; run 'rosetta credentials set'")
		}
		return nil
	},
}

var credentialsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.ClearCredentials(); err != nil {
			return err
		}
		fmt.Println("✅ All stored credentials have been removed")
		return nil
	},
}

func maskedOrMissing(v string) string {
	if v == "" {
		return pterm.Gray("not set")
	}
	return logging.MaskValue(v)
}

func orMissing(v string) string {
	if v == "" {
		return pterm.Gray("not set")
	}
	return v
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsShowCmd, credentialsClearCmd)
	rootCmd.AddCommand(credentialsCmd)
}
