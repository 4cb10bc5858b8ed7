package courseville

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const loadMoreQuery = "courseville/ajax/loadmoreassignmentrows"

func isLoadMoreRequest(r *http.Request) bool {
	return r.Method == http.MethodPost && r.URL.Query().Get("q") == loadMoreQuery
}

func loadMoreBody(status int, all bool, rows string) string {
	return fmt.Sprintf(
		`{"status":%d,"all":%t,"data":{"html":%s}}`,
		status, all, strconv.Quote(rows),
	)
}

func feedRows(firstId, count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		id := firstId + i
		fmt.Fprintf(
			&sb,
			`<tr><td>%d</td><td><a href="/?q=courseville/worksheet/101/%d">Assignment %d</a></td></tr>`,
			id, id, id,
		)
	}
	return sb.String()
}

func TestRecentAssignmentsStopsOnAllFlag(t *testing.T) {
	var offsets []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, isLoadMoreRequest(r))
		require.NoError(t, r.ParseForm())
		offsets = append(offsets, r.FormValue("next"))

		switch r.FormValue("next") {
		case "0":
			w.Write([]byte(loadMoreBody(1, false, feedRows(9001, 2))))
		case "10":
			w.Write([]byte(loadMoreBody(1, false, feedRows(9003, 2))))
		case "20":
			w.Write([]byte(loadMoreBody(1, true, feedRows(9005, 2))))
		default:
			t.Fatalf("unexpected offset %q", r.FormValue("next"))
		}
	}))

	assignments, err := client.RecentAssignments(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, []string{"0", "10", "20"}, offsets)
	require.Len(t, assignments, 6)
	require.Equal(t, Assignment{
		McvCourseId:    101,
		AssignmentId:   9001,
		AssignmentName: "Assignment 9001",
	}, assignments[0])
}

func TestRecentAssignmentsHonorsLimit(t *testing.T) {
	requests := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(loadMoreBody(1, false, feedRows(9001+10*(requests-1), 10))))
	}))

	assignments, err := client.RecentAssignments(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, assignments, 5)
	require.Equal(t, 1, requests)
}

func TestRecentAssignmentsStopsOnStatusZero(t *testing.T) {
	requests := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"status":0}`))
	}))

	assignments, err := client.RecentAssignments(context.Background(), 50)
	require.NoError(t, err)
	require.Empty(t, assignments)
	require.Equal(t, 1, requests)
}

func TestRecentAssignmentsStopsOnEmptyHtml(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loadMoreBody(1, false, "")))
	}))

	assignments, err := client.RecentAssignments(context.Background(), 50)
	require.NoError(t, err)
	require.Empty(t, assignments)
}

func TestRecentAssignmentsKeepsPartialOnBadEnvelope(t *testing.T) {
	requests := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Write([]byte(loadMoreBody(1, false, feedRows(9001, 3))))
			return
		}
		w.Write([]byte("<html>session expired</html>"))
	}))

	assignments, err := client.RecentAssignments(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, assignments, 3)
	require.Equal(t, 2, requests)
}

func TestCourseAssignments(t *testing.T) {
	var offsets, courseIds []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isLoadMoreRequest(r) {
			require.NoError(t, r.ParseForm())
			offsets = append(offsets, r.FormValue("next"))
			courseIds = append(courseIds, r.FormValue("cv_cid"))

			switch r.FormValue("next") {
			case "2":
				w.Write([]byte(loadMoreBody(1, false, feedRows(9003, 2))))
			case "7":
				w.Write([]byte(loadMoreBody(1, true, feedRows(9005, 1))))
			default:
				t.Fatalf("unexpected offset %q", r.FormValue("next"))
			}
			return
		}
		require.Equal(t, "/courseville/course/101/assignment", r.URL.Path)
		w.Write(fixture(t, "assignment_page.html"))
	}))

	assignments, err := client.CourseAssignments(context.Background(), 101)
	require.NoError(t, err)
	require.Equal(t, []string{"2", "7"}, offsets)
	require.Equal(t, []string{"101", "101"}, courseIds)

	// 2 from the rendered table (the linkless row is skipped) + 3 more
	require.Len(t, assignments, 5)
	require.Equal(t, "Homework 1", assignments[0].AssignmentName)
	// inner whitespace collapsed
	require.Equal(t, "Homework 2", assignments[1].AssignmentName)
	require.Equal(t, 9005, assignments[4].AssignmentId)
}

func TestCourseAssignmentsWithoutPanel(t *testing.T) {
	posts := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isLoadMoreRequest(r) {
			posts++
			return
		}
		w.Write(fixture(t, "assignment_page_no_panel.html"))
	}))

	assignments, err := client.CourseAssignments(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, 0, posts)
}

func TestCourseAssignmentsPanelAlreadyComplete(t *testing.T) {
	posts := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isLoadMoreRequest(r) {
			posts++
			return
		}
		w.Write(fixture(t, "assignment_page_complete_panel.html"))
	}))

	assignments, err := client.CourseAssignments(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, 0, posts)
}

func TestCourseAssignmentsKeepsPartialOnFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isLoadMoreRequest(r) {
			w.Write([]byte(`{"status":0}`))
			return
		}
		w.Write(fixture(t, "assignment_page.html"))
	}))

	assignments, err := client.CourseAssignments(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
}

func TestCourseAssignmentsRawTruncates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>" + strings.Repeat("y", 10_000)))
	}))

	raw, err := client.CourseAssignmentsRaw(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, raw, 5000)
}
