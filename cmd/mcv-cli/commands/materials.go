package commands

import (
	"fmt"
	"strconv"

	"mcvassist-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(materialsCmd)
	rootCmd.AddCommand(materialContentCmd)
	rootCmd.AddCommand(announcementsCmd)
}

var materialsCmd = &cobra.Command{
	Use:   "materials <cv_cid>",
	Short: "Lists the materials of a course.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cvCid, err := strconv.Atoi(args[0])
		if err != nil {
			serviceutil.Fatal("cv_cid must be an integer", err)
		}
		client := createClient(cmd.Context())

		materials, err := client.CourseMaterials(cmd.Context(), cvCid)
		if err != nil {
			serviceutil.Fatal("failed to fetch materials", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"node id", "folder", "title", "view url"})
		for _, m := range materials {
			t.AppendRow(table.Row{m.MaterialNodeId, m.Folder, m.Title, m.ViewUrl})
		}
		t.Render()
	},
}

var materialContentCmd = &cobra.Command{
	Use:   "material-content <cv_cid> <material_node_id>",
	Short: "Shows the download url behind a material.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cvCid, err := strconv.Atoi(args[0])
		if err != nil {
			serviceutil.Fatal("cv_cid must be an integer", err)
		}
		nodeId, err := strconv.Atoi(args[1])
		if err != nil {
			serviceutil.Fatal("material_node_id must be an integer", err)
		}
		client := createClient(cmd.Context())

		content, err := client.MaterialContent(cmd.Context(), cvCid, nodeId)
		if err != nil {
			serviceutil.Fatal("failed to fetch material content", err)
		}

		fmt.Println("title:", content.Title)
		fmt.Println("page url:", content.PageUrl)
		fmt.Println("download url:", content.DownloadUrl)
	},
}

var announcementsCmd = &cobra.Command{
	Use:   "announcements <cv_cid>",
	Short: "Lists the announcements of a course.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cvCid, err := strconv.Atoi(args[0])
		if err != nil {
			serviceutil.Fatal("cv_cid must be an integer", err)
		}
		client := createClient(cmd.Context())

		announcements, err := client.Announcements(cmd.Context(), cvCid)
		if err != nil {
			serviceutil.Fatal("failed to fetch announcements", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"title", "content"})
		for _, a := range announcements {
			t.AppendRow(table.Row{a.Title, a.Content})
		}
		t.Render()
	},
}
