package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerPreferencesTemplate(srv, svc)
	registerScheduleTemplate(srv, svc)
}

func registerPreferencesTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"termwise://preferences/{term}",
		"Term Preferences",
		mcp.WithTemplateDescription("Courses, buffer time and availability for a term."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		term, _ := request.Params.Arguments["term"].(string)
		dto, err := svc.GetPreferences(ctx, term)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

func registerScheduleTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"termwise://schedule/{term}",
		"Term Schedule",
		mcp.WithTemplateDescription("The generated schedule currently displayed for a term."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		term, _ := request.Params.Arguments["term"].(string)
		dto, err := svc.GetSchedule(ctx, term)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
