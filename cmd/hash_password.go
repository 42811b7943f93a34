package cmd

import (
	"fmt"

	"catalog/internal/services"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const passwordFlag = "password"

func newHashPasswordCommand() *cobra.Command {
	flags := map[string]cobraflags.Flag{
		passwordFlag: &cobraflags.StringFlag{
			Name:  passwordFlag,
			Value: "",
			Usage: "Admin password to hash (required)",
		},
	}

	hashCmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash suitable for ADMIN_PASSWORD_HASH",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := flags[passwordFlag].GetString()
			if password == "" {
				return fmt.Errorf("--%s is required", passwordFlag)
			}

			hash, err := services.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cobraflags.RegisterMap(hashCmd, flags)
	return hashCmd
}
