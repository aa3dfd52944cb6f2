package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/record"
	"github.com/lvillar/docsmith/templates"
)

// RegisterDefaultResources adds the docsmith resources to the server.
// Resources use the docsmith:// scheme.
func RegisterDefaultResources(s *Server) {
	s.AddResource(Resource{
		URI:         "docsmith://templates",
		Name:        "Template Catalog",
		Description: "Document types with their templates, default template and export formats.",
		MIMEType:    "application/json",
		Handler:     handleTemplatesResource,
	})

	s.AddResource(Resource{
		URI:         "docsmith://sample",
		Name:        "Sample Document Data",
		Description: "Sample record for a document type. Pass the type as a query parameter: docsmith://sample?kind=invoice",
		MIMEType:    "application/json",
		Handler:     handleSampleResource,
	})
}

type catalogEntry struct {
	templates.Info
	Formats []docsmith.Format `json:"formats"`
}

func handleTemplatesResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	infos := templates.Catalog()
	entries := make([]catalogEntry, len(infos))
	for i, info := range infos {
		entries[i] = catalogEntry{Info: info, Formats: info.Kind.Formats()}
	}
	return jsonContent(uri, entries)
}

func handleSampleResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parsing uri: %w", err)
	}
	kindName := u.Query().Get("kind")
	if kindName == "" {
		return nil, fmt.Errorf("missing kind parameter in URI: %s", uri)
	}
	kind, err := docsmith.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	rec, err := record.Sample(kind, time.Now())
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, rec)
}

func jsonContent(uri string, v any) ([]ResourceContent, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(jsonBytes),
	}}, nil
}
