package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/termwise/pkg/course"
)

var (
	termEnum   = []string{string(course.Fall), string(course.Winter)}
	dayEnum    = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	bufferEnum = []string{"none", "30m", "1h", "1h+"}
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerGetPreferencesTool(srv, svc)
	registerAddCourseTool(srv, svc)
	registerRemoveCourseTool(srv, svc)
	registerUpdateCourseTool(srv, svc)
	registerSetBufferTimeTool(srv, svc)
	registerSetAvailabilityTool(srv, svc)
	registerSetMaxClassesTool(srv, svc)
	registerResetTools(srv, svc)
	registerSwitchTermTool(srv, svc)
	registerGenerateTool(srv, svc)
	registerAlternativeTools(srv, svc)
	registerGetCalendarTool(srv, svc)
}

func registerGetPreferencesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_preferences",
		mcp.WithDescription("Return the course and availability preferences of a term."),
		mcp.WithString("term",
			mcp.Description("Term to read; defaults to the selected term."),
			mcp.Enum(termEnum...),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.GetPreferences(ctx, request.GetString("term", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

// courseArgs are shared by add_course and update_course.
type courseArgs struct {
	Index        int     `json:"index"`
	Code         *string `json:"code"`
	Instructor   *string `json:"instructor"`
	SectionTypes *string `json:"section_types"`
}

func (a courseArgs) update() CourseUpdate {
	u := CourseUpdate{Code: a.Code, Instructor: a.Instructor}
	if a.SectionTypes != nil {
		u.SetTypes = true
		for _, part := range strings.Split(*a.SectionTypes, ",") {
			part = strings.TrimSpace(part)
			if part == "" || strings.EqualFold(part, "any") {
				continue
			}
			u.SectionTypes = append(u.SectionTypes, part)
		}
	}
	return u
}

func courseFieldOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("code",
			mcp.Description("Course code such as COMP1405; normalized to upper case."),
		),
		mcp.WithString("instructor",
			mcp.Description("Preferred instructor, or empty for none."),
		),
		mcp.WithString("section_types",
			mcp.Description("Comma separated section types (online, in-person, hybrid); empty or any clears the filter."),
		),
	}
}

func registerAddCourseTool(srv *server.MCPServer, svc *Service) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(fmt.Sprintf("Add a course to the selected term (at most %d).", course.MaxCourses)),
	}, courseFieldOptions()...)
	tool := mcp.NewTool("add_course", opts...)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args courseArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.AddCourse(ctx, args.update())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUpdateCourseTool(srv *server.MCPServer, svc *Service) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Change fields of a course in the selected term. Omitted fields are left alone."),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("1-based position of the course."),
		),
	}, courseFieldOptions()...)
	tool := mcp.NewTool("update_course", opts...)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args courseArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.UpdateCourse(ctx, args.Index, args.update())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerRemoveCourseTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"remove_course",
		mcp.WithDescription("Remove a course from the selected term. The last course cannot be removed."),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("1-based position of the course."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		index := request.GetInt("index", 0)
		dto, err := svc.RemoveCourse(ctx, index)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetBufferTimeTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_buffer_time",
		mcp.WithDescription("Set the minimum gap wanted between classes."),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Buffer between classes."),
			mcp.Enum(bufferEnum...),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		value, err := request.RequireString("value")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.SetBufferTime(ctx, value)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetAvailabilityTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_availability",
		mcp.WithDescription("Replace the times of day a weekday is available."),
		mcp.WithString("day",
			mcp.Required(),
			mcp.Enum(dayEnum...),
		),
		mcp.WithString("times",
			mcp.Description("Comma separated morning, afternoon, evening; empty for none."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := request.RequireString("day")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var times []string
		for _, part := range strings.Split(request.GetString("times", ""), ",") {
			part = strings.TrimSpace(part)
			if part == "" || strings.EqualFold(part, "none") {
				continue
			}
			times = append(times, part)
		}
		dto, err := svc.SetAvailability(ctx, day, times)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetMaxClassesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_max_classes",
		mcp.WithDescription(fmt.Sprintf("Set the most classes wanted on a weekday (0 to %d).", course.MaxClassesPerDayLimit)),
		mcp.WithString("day",
			mcp.Required(),
			mcp.Enum(dayEnum...),
		),
		mcp.WithNumber("max",
			mcp.Required(),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := request.RequireString("day")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		n, err := request.RequireInt("max")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.SetMaxClasses(ctx, day, n)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerResetTools(srv *server.MCPServer, svc *Service) {
	srv.AddTool(mcp.NewTool(
		"reset_preferences",
		mcp.WithDescription("Restore the selected term to a single blank course and clear its schedule."),
	), func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toJSONResult(svc.ResetPreferences(ctx))
	})

	srv.AddTool(mcp.NewTool(
		"reset_availability",
		mcp.WithDescription("Restore buffer time and availability of the selected term, keeping its courses."),
	), func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toJSONResult(svc.ResetAvailability(ctx))
	})
}

func registerSwitchTermTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"switch_term",
		mcp.WithDescription("Select the term that edits and generation apply to."),
		mcp.WithString("term",
			mcp.Required(),
			mcp.Enum(termEnum...),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		term, err := request.RequireString("term")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.SwitchTerm(ctx, term)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerGenerateTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"generate_schedule",
		mcp.WithDescription("Validate the selected term's courses and ask the optimizer for a schedule."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.Generate(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerAlternativeTools(srv *server.MCPServer, svc *Service) {
	srv.AddTool(mcp.NewTool(
		"next_alternative",
		mcp.WithDescription("Show the next alternative schedule, wrapping to the primary."),
	), func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toJSONResult(svc.NextAlternative(ctx))
	})

	srv.AddTool(mcp.NewTool(
		"previous_alternative",
		mcp.WithDescription("Show the previous alternative schedule, wrapping to the last."),
	), func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toJSONResult(svc.PreviousAlternative(ctx))
	})
}

func registerGetCalendarTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_calendar",
		mcp.WithDescription("Lay out the displayed schedule as positioned calendar blocks."),
		mcp.WithString("term",
			mcp.Description("Term to lay out; defaults to the selected term."),
			mcp.Enum(termEnum...),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.GetCalendar(ctx, request.GetString("term", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
