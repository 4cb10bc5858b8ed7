package commands

import (
	"fmt"

	"mcvassist-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var coursesYear *int
var coursesSemester *int

func init() {
	coursesYear = coursesCmd.Flags().Int("year", 0, "Academic year in Buddhist Era, 0 infers the current one.")
	coursesSemester = coursesCmd.Flags().Int("semester", 0, "Semester (1, 2, or 3 for summer), 0 infers the current one.")
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(findCourseCmd)
}

var coursesCmd = &cobra.Command{
	Use:   "courses [--year <be year>] [--semester <1|2|3>]",
	Short: "Lists enrolled courses.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		courses, err := client.Courses(cmd.Context(), *coursesYear, *coursesSemester)
		if err != nil {
			serviceutil.Fatal("failed to fetch courses", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"cv_cid", "course no", "title", "year", "semester"})
		for _, c := range courses {
			t.AppendRow(table.Row{c.CvCid, c.CourseNo, c.Title, c.Year, c.Semester})
		}
		t.Render()
	},
}

var findCourseCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Finds an enrolled course by fuzzy-matching its number or title.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())

		course, found, err := client.FindCourse(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to search courses", err)
		}
		if !found {
			fmt.Println("no course matched")
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"cv_cid", "course no", "title", "year", "semester"})
		t.AppendRow(table.Row{course.CvCid, course.CourseNo, course.Title, course.Year, course.Semester})
		t.Render()
	},
}
