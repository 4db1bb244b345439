package cmd

import (
	"fmt"
	"os"

	"github.com/maktabdl/maktabdl/internal/auth"
	"github.com/maktabdl/maktabdl/internal/output"
	"github.com/maktabdl/maktabdl/internal/utils"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login --user EMAIL --password PASSWORD",
		Short: "Log in and persist the session for later runs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if userEmail == "" || userPassword == "" {
				output.PrintError("Both --user and --password are required for login")
				os.Exit(utils.ExitNoSession)
			}
			client := utils.NewMaktabHTTPClient(globalHTTPConfig)
			session, err := auth.Acquire(client, auth.Options{
				BaseURL:    baseURL,
				Email:      userEmail,
				Password:   userPassword,
				ForceLogin: true,
				RecordPath: sessionFile,
			})
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(utils.ExitNoSession)
			}
			output.PrintSuccess(fmt.Sprintf("%s Logged in as %s, session saved to %s",
				output.StyleSymbols["pass"], session.UserKey, sessionFile))
		},
	}
	return cmd
}
