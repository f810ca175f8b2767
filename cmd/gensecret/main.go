package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/smartshuttle/shuttle/internal/crypto"
	"github.com/spf13/cobra"
)

var (
	outPath string
	force   bool
)

var rootCmd = &cobra.Command{
	Use:           "gensecret",
	Short:         "Generate the token signing secret",
	Long:          "Writes 32 random bytes, hex encoded, to a file readable only by its owner. Point JWT_SECRET_FILE at it.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := crypto.WriteSecretFile(outPath, force); err != nil {
			if errors.Is(err, crypto.ErrSecretExists) {
				return fmt.Errorf("%s already exists. Refusing to overwrite (use --force)", outPath)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Secret written to %s\n", outPath)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "jwt.secret", "file to write the secret to")
	rootCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
