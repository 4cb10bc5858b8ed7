package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"mcvassist-backend/lib/scrapers/courseville"
)

func (s *Server) callTool(ctx context.Context, id any, params ToolCallParams) *Response {
	switch params.Name {
	case "mcv_validate_session":
		return s.handleValidateSession(ctx, id)
	case "mcv_get_courses_raw":
		return s.handleCoursesRaw(ctx, id, params.Arguments)
	case "mcv_get_courses":
		return s.handleCourses(ctx, id, params.Arguments)
	case "mcv_get_assignments":
		return s.handleAssignments(ctx, id, params.Arguments)
	case "mcv_get_course_assignments_raw":
		return s.handleCourseAssignmentsRaw(ctx, id, params.Arguments)
	case "mcv_get_course_assignments":
		return s.handleCourseAssignments(ctx, id, params.Arguments)
	case "mcv_get_course_materials":
		return s.handleCourseMaterials(ctx, id, params.Arguments)
	case "mcv_get_course_materials_raw":
		return s.handleCourseMaterialsRaw(ctx, id, params.Arguments)
	case "mcv_get_material_content":
		return s.handleMaterialContent(ctx, id, params.Arguments)
	case "mcv_get_announcements":
		return s.handleAnnouncements(ctx, id, params.Arguments)
	case "mcv_get_assignment_detail":
		return s.handleAssignmentDetail(ctx, id, params.Arguments)
	case "mcv_find_course":
		return s.handleFindCourse(ctx, id, params.Arguments)
	default:
		return errorResponse(id, CodeInvalidParams, "Unknown tool: "+params.Name)
	}
}

// toolText wraps already-rendered text in the tool result envelope.
func toolText(id any, text string, isError bool) *Response {
	return jsonResponse(id, map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"isError": isError,
	})
}

func toolResult(id any, payload any) *Response {
	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errorResponse(id, CodeInternalError, fmt.Sprintf("Failed to marshal result: %v", err))
	}
	return toolText(id, string(text), false)
}

// toolError reports a scrape failure inside the result so the caller
// sees it as tool output rather than a dead server.
func toolError(id any, err error) *Response {
	text, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return errorResponse(id, CodeInternalError, fmt.Sprintf("Failed to marshal result: %v", marshalErr))
	}
	return toolText(id, string(text), true)
}

type cvCidArgs struct {
	CvCid int `json:"cv_cid"`
}

func decodeCvCid(id any, arguments json.RawMessage) (int, *Response) {
	var args cvCidArgs
	if err := json.Unmarshal(arguments, &args); err != nil || args.CvCid == 0 {
		return 0, errorResponse(id, CodeInvalidParams, "cv_cid is required")
	}
	return args.CvCid, nil
}

func (s *Server) handleValidateSession(ctx context.Context, id any) *Response {
	valid, err := s.client.ValidateSession(ctx)
	if err != nil {
		return toolError(id, err)
	}

	message := "Session is valid"
	if !valid {
		message = "Session expired or invalid"
	}
	return toolResult(id, map[string]any{
		"valid":   valid,
		"message": message,
	})
}

func (s *Server) handleCoursesRaw(ctx context.Context, id any, arguments json.RawMessage) *Response {
	var args struct {
		Year     int `json:"year"`
		Semester int `json:"semester"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil || args.Year == 0 || args.Semester == 0 {
		return errorResponse(id, CodeInvalidParams, "year and semester are required")
	}

	raw, err := s.client.CoursesRaw(ctx, args.Year, args.Semester)
	if err != nil {
		return toolError(id, err)
	}
	return toolText(id, string(raw), false)
}

func (s *Server) handleCourses(ctx context.Context, id any, arguments json.RawMessage) *Response {
	var args struct {
		Year     int `json:"year"`
		Semester int `json:"semester"`
	}
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return errorResponse(id, CodeInvalidParams, "Invalid arguments")
		}
	}

	courses, err := s.client.Courses(ctx, args.Year, args.Semester)
	if err != nil {
		return toolError(id, err)
	}
	return toolResult(id, courses)
}

func (s *Server) handleAssignments(ctx context.Context, id any, arguments json.RawMessage) *Response {
	args := struct {
		Limit int `json:"limit"`
	}{Limit: 50}
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return errorResponse(id, CodeInvalidParams, "Invalid arguments")
		}
	}

	assignments, err := s.client.RecentAssignments(ctx, args.Limit)
	if err != nil {
		return toolError(id, err)
	}
	return toolResult(id, assignments)
}

func (s *Server) handleCourseAssignmentsRaw(ctx context.Context, id any, arguments json.RawMessage) *Response {
	cvCid, errRes := decodeCvCid(id, arguments)
	if errRes != nil {
		return errRes
	}

	html, err := s.client.CourseAssignmentsRaw(ctx, cvCid)
	if err != nil {
		return toolError(id, err)
	}
	return toolResult(id, map[string]string{"html": html})
}

func (s *Server) handleCourseAssignments(ctx context.Context, id any, arguments json.RawMessage) *Response {
	cvCid, errRes := decodeCvCid(id, arguments)
	if errRes != nil {
		return errRes
	}

	assignments, err := s.client.CourseAssignments(ctx, cvCid)
	if err != nil {
		return toolError(id, err)
	}
	return toolResult(id, assignments)
}

func (s *Server) handleCourseMaterials(ctx context.Context, id any, arguments json.RawMessage) *Response {
	cvCid, errRes := decodeCvCid(id, arguments)
	if errRes != nil {
		return errRes
	}

	materials, err := s.client.CourseMaterials(ctx, cvCid)
	if err != nil {
		return toolError(id, err)
	}
	return toolResult(id, materials)
}

const rawMaterialsHtmlCap = 10_000

func (s *Server) handleCourseMaterialsRaw(ctx context.Context, id any, arguments json.RawMessage) *Response {
	cvCid, errRes := decodeCvCid(id, arguments)
	if errRes != nil {
		return errRes
	}

	html, err := s.client.CourseMaterialsRaw(ctx, cvCid)
	if err != nil {
		return toolError(id, err)
	}
	if len(html) > rawMaterialsHtmlCap {
		html = html[:rawMaterialsHtmlCap]
	}
	return toolResult(id, map[string]string{"html": html})
}

func (s *Server) handleMaterialContent(ctx context.Context, id any, arguments json.RawMessage) *Response {
	var args struct {
		CvCid          int `json:"cv_cid"`
		MaterialNodeId int `json:"material_node_id"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil || args.CvCid == 0 || args.MaterialNodeId == 0 {
		return errorResponse(id, CodeInvalidParams, "cv_cid and material_node_id are required")
	}

	content, err := s.client.MaterialContent(ctx, args.CvCid, args.MaterialNodeId)
	if err != nil {
		return toolError(id, err)
	}
	return toolResult(id, content)
}

func (s *Server) handleAnnouncements(ctx context.Context, id any, arguments json.RawMessage) *Response {
	cvCid, errRes := decodeCvCid(id, arguments)
	if errRes != nil {
		return errRes
	}

	announcements, err := s.client.Announcements(ctx, cvCid)
	if err != nil {
		return toolError(id, err)
	}
	return toolResult(id, announcements)
}

func (s *Server) handleAssignmentDetail(ctx context.Context, id any, arguments json.RawMessage) *Response {
	var args struct {
		CvCid        int `json:"cv_cid"`
		AssignmentId int `json:"assignment_id"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil || args.CvCid == 0 || args.AssignmentId == 0 {
		return errorResponse(id, CodeInvalidParams, "cv_cid and assignment_id are required")
	}

	detail, err := s.client.AssignmentDetail(ctx, args.CvCid, args.AssignmentId)
	if err != nil {
		return toolError(id, err)
	}
	return toolResult(id, detail)
}

func (s *Server) handleFindCourse(ctx context.Context, id any, arguments json.RawMessage) *Response {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil || args.Query == "" {
		return errorResponse(id, CodeInvalidParams, "query is required")
	}

	course, found, err := s.client.FindCourse(ctx, args.Query)
	if err != nil {
		return toolError(id, err)
	}
	if !found {
		return toolResult(id, map[string]any{"found": false})
	}
	return toolResult(id, struct {
		Found bool `json:"found"`
		courseville.Course
	}{Found: true, Course: course})
}
