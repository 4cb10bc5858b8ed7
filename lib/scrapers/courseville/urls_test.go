package courseville

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAssignmentHref(t *testing.T) {
	cases := []struct {
		href         string
		courseId     int
		assignmentId int
		ok           bool
	}{
		{"/?q=courseville/worksheet/101/9001", 101, 9001, true},
		{"https://www.mycourseville.com/something/55/7", 55, 7, true},
		{"/?q=courseville/worksheet/101/9001/edit", 0, 0, false},
		{"/courseville/course/101", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, test := range cases {
		courseId, assignmentId, ok := parseAssignmentHref(test.href)
		require.Equal(t, test.ok, ok, test.href)
		require.Equal(t, test.courseId, courseId, test.href)
		require.Equal(t, test.assignmentId, assignmentId, test.href)
	}
}

func TestParseWorksheetHref(t *testing.T) {
	cases := []struct {
		href         string
		courseId     int
		assignmentId int
		ok           bool
	}{
		{"/?q=courseville/worksheet/101/9001", 101, 9001, true},
		// the worksheet pattern does not need to anchor at the end
		{"/?q=courseville/worksheet/101/9001?tab=1", 101, 9001, true},
		{"/courseville/course/101/assignment", 0, 0, false},
	}
	for _, test := range cases {
		courseId, assignmentId, ok := parseWorksheetHref(test.href)
		require.Equal(t, test.ok, ok, test.href)
		require.Equal(t, test.courseId, courseId, test.href)
		require.Equal(t, test.assignmentId, assignmentId, test.href)
	}
}

func TestParseContentNodeId(t *testing.T) {
	id, ok := parseContentNodeId("/?q=courseville/course/101/view_content_node_42_material")
	require.True(t, ok)
	require.Equal(t, 42, id)

	_, ok = parseContentNodeId("/?q=courseville/course/101/material")
	require.False(t, ok)
}

func TestParseYearSem(t *testing.T) {
	year, semester, ok := parseYearSem("Semester 2567/1 (current)")
	require.True(t, ok)
	require.Equal(t, 2567, year)
	require.Equal(t, 1, semester)

	_, _, ok = parseYearSem("no semester here")
	require.False(t, ok)
}

func TestParseDueDate(t *testing.T) {
	require.Equal(t, "2024-05-01 23:59", parseDueDate("Due on 2024-05-01 23:59"))
	require.Equal(t, "", parseDueDate("No deadline set"))
}
