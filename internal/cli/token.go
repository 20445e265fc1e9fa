package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/capture-stitcher/pkg/jwt"
)

// NewTokenCmd mints a service token for the recordings API
func NewTokenCmd(deps *Dependencies) *cobra.Command {
	var (
		service string
		scopes  []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a service token for the recordings API",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := jwt.NewManager(deps.Config.JWT.Secret, deps.Config.JWT.Issuer, deps.Config.JWT.Expiry)

			token, err := manager.GenerateServiceToken(service, scopes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🔐 Service: %s\n", service)
			fmt.Fprintf(out, "Scopes:     %v\n", scopes)
			fmt.Fprintf(out, "Expires in: %s\n\n", manager.GetExpiry())
			fmt.Fprintln(out, token)
			return nil
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "name of the calling service")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{jwt.ScopeRecordingsRead, jwt.ScopeRecordingsWrite}, "granted scopes (repeatable)")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}
