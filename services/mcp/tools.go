package mcp

func cvCidProperty() map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": "MyCourseVille course ID (cv_cid)",
	}
}

func toolList() []Tool {
	return []Tool{
		{
			Name:        "mcv_validate_session",
			Description: "Validate if the MyCourseVille session is still valid",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		},
		{
			Name:        "mcv_get_courses_raw",
			Description: "Debug: Get raw API response for courses",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"year": map[string]any{
						"type":        "integer",
						"description": "Year in Buddhist Era",
					},
					"semester": map[string]any{
						"type":        "integer",
						"description": "Semester (1, 2, or 3)",
					},
				},
				"required": []string{"year", "semester"},
			},
		},
		{
			Name:        "mcv_get_courses",
			Description: "Get list of enrolled courses from MyCourseVille. Optionally filter by year and semester.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"year": map[string]any{
						"type":        "integer",
						"description": "Academic year in Buddhist Era (e.g., 2567). If not provided, uses current semester.",
					},
					"semester": map[string]any{
						"type":        "integer",
						"description": "Semester number (1, 2, or 3 for summer). If not provided, uses current semester.",
					},
				},
				"required": []string{},
			},
		},
		{
			Name:        "mcv_get_assignments",
			Description: "Get list of assignments across all courses",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of assignments to return (default: 50)",
						"default":     50,
					},
				},
				"required": []string{},
			},
		},
		{
			Name:        "mcv_get_course_assignments_raw",
			Description: "Debug: Get raw HTML of assignment page",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cv_cid": cvCidProperty(),
				},
				"required": []string{"cv_cid"},
			},
		},
		{
			Name:        "mcv_get_course_assignments",
			Description: "Get assignments for a specific course by its MCV course ID",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cv_cid": cvCidProperty(),
				},
				"required": []string{"cv_cid"},
			},
		},
		{
			Name:        "mcv_get_course_materials",
			Description: "Get course materials/resources for a specific course with view URLs",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cv_cid": cvCidProperty(),
				},
				"required": []string{"cv_cid"},
			},
		},
		{
			Name:        "mcv_get_course_materials_raw",
			Description: "Debug: Get raw HTML of course home page (where materials are listed)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cv_cid": cvCidProperty(),
				},
				"required": []string{"cv_cid"},
			},
		},
		{
			Name:        "mcv_get_material_content",
			Description: "Get material details including download URL (for PDFs hosted on S3)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cv_cid": cvCidProperty(),
					"material_node_id": map[string]any{
						"type":        "integer",
						"description": "Material node ID (from the view_content_node URL)",
					},
				},
				"required": []string{"cv_cid", "material_node_id"},
			},
		},
		{
			Name:        "mcv_get_announcements",
			Description: "Get announcements for a specific course",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cv_cid": cvCidProperty(),
				},
				"required": []string{"cv_cid"},
			},
		},
		{
			Name:        "mcv_get_assignment_detail",
			Description: "Get assignment details including questions, choices, and due date. Use this to read assignment content before answering.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cv_cid": cvCidProperty(),
					"assignment_id": map[string]any{
						"type":        "integer",
						"description": "Assignment ID",
					},
				},
				"required": []string{"cv_cid", "assignment_id"},
			},
		},
		{
			Name:        "mcv_find_course",
			Description: "Find an enrolled course by fuzzy-matching its course number or title",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Course number or (partial) course title to look up",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}
