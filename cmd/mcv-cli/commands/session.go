package commands

import (
	"fmt"

	"mcvassist-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Checks whether the MCV_COOKIE session is still logged in.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		valid, err := client.ValidateSession(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to validate session", err)
		}
		if valid {
			fmt.Println("session is valid")
			return
		}
		fmt.Println("session expired or invalid")
	},
}
