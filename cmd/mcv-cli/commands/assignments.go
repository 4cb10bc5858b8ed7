package commands

import (
	"strconv"

	"mcvassist-backend/lib/scrapers/courseville"
	"mcvassist-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var assignmentsLimit *int

func init() {
	assignmentsLimit = assignmentsCmd.Flags().Int("limit", 50, "Maximum number of assignments to list.")
	rootCmd.AddCommand(assignmentsCmd)
	rootCmd.AddCommand(courseAssignmentsCmd)
}

func renderAssignments(assignments []courseville.Assignment) {
	t := newTable()
	t.AppendHeader(table.Row{"cv_cid", "assignment id", "name", "course no"})
	for _, a := range assignments {
		t.AppendRow(table.Row{a.McvCourseId, a.AssignmentId, a.AssignmentName, a.CourseNo})
	}
	t.Render()
}

var assignmentsCmd = &cobra.Command{
	Use:   "assignments [--limit <n>]",
	Short: "Lists recent assignments across all courses.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		assignments, err := client.RecentAssignments(cmd.Context(), *assignmentsLimit)
		if err != nil {
			serviceutil.Fatal("failed to fetch assignments", err)
		}
		renderAssignments(assignments)
	},
}

var courseAssignmentsCmd = &cobra.Command{
	Use:   "course-assignments <cv_cid>",
	Short: "Lists the assignments of a single course.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cvCid, err := strconv.Atoi(args[0])
		if err != nil {
			serviceutil.Fatal("cv_cid must be an integer", err)
		}
		client := createClient(cmd.Context())

		assignments, err := client.CourseAssignments(cmd.Context(), cvCid)
		if err != nil {
			serviceutil.Fatal("failed to fetch course assignments", err)
		}
		renderAssignments(assignments)
	},
}
