package commands

import (
	"fmt"
	"strconv"

	"mcvassist-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(detailCmd)
}

var detailCmd = &cobra.Command{
	Use:   "detail <cv_cid> <assignment_id>",
	Short: "Prints the readable summary of an assignment worksheet.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cvCid, err := strconv.Atoi(args[0])
		if err != nil {
			serviceutil.Fatal("cv_cid must be an integer", err)
		}
		assignmentId, err := strconv.Atoi(args[1])
		if err != nil {
			serviceutil.Fatal("assignment_id must be an integer", err)
		}
		client := createClient(cmd.Context())

		detail, err := client.AssignmentDetail(cmd.Context(), cvCid, assignmentId)
		if err != nil {
			serviceutil.Fatal("failed to fetch assignment detail", err)
		}
		fmt.Println(detail.HumanSummary)
	},
}
