// Package notion pushes finished records into a Notion database.
//
// Every entry lands in one configured database, distinguished by a
// Kind select and deduplicated on a Key rich-text property: syncing
// the same corpus twice updates pages instead of growing the
// database. The integration token comes from the environment, never
// from the config file.
package notion

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/chartsift/chartsift/internal/core/ports/driven"
)

// Ensure Sync implements the interface.
var _ driven.WorkspaceSync = (*Sync)(nil)

// Property names reserved by the adapter in the target database.
const (
	titleProperty = "Name"
	kindProperty  = "Kind"
	keyProperty   = "Key"
)

// titleCaser renders property names: "reference_range" → "Reference Range".
var titleCaser = cases.Title(language.English)

// Config holds configuration for the Notion sync target.
type Config struct {
	// Token is the integration token (required).
	Token string

	// DatabaseID is the target database (required).
	DatabaseID string
}

// Sync upserts entries into a Notion database.
type Sync struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
}

// New creates a new Notion sync target.
func New(cfg Config) (*Sync, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion: integration token is required")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion: database id is required")
	}

	return &Sync{
		client:     notionapi.NewClient(notionapi.Token(cfg.Token)),
		databaseID: notionapi.DatabaseID(cfg.DatabaseID),
	}, nil
}

// UpsertEntry creates or updates one entry. Identity is the "key"
// property; entries without one are always created fresh.
func (s *Sync) UpsertEntry(ctx context.Context, kind string, properties map[string]string) error {
	key := properties["key"]
	pageProps := s.buildProperties(kind, properties)

	if key != "" {
		existing, err := s.findByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != "" {
			if _, err := s.client.Page.Update(ctx, existing, &notionapi.PageUpdateRequest{
				Properties: pageProps,
			}); err != nil {
				return fmt.Errorf("notion: updating %s %q: %w", kind, key, err)
			}
			return nil
		}
	}

	if _, err := s.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: s.databaseID,
		},
		Properties: pageProps,
	}); err != nil {
		return fmt.Errorf("notion: creating %s %q: %w", kind, key, err)
	}
	return nil
}

// findByKey returns the page id holding key, or empty when absent.
func (s *Sync) findByKey(ctx context.Context, key string) (notionapi.PageID, error) {
	resp, err := s.client.Database.Query(ctx, s.databaseID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: keyProperty,
			RichText: &notionapi.TextFilterCondition{Equals: key},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", fmt.Errorf("notion: querying database: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return notionapi.PageID(resp.Results[0].ID), nil
}

// buildProperties maps the flat property map onto typed Notion
// properties. Empty values are skipped rather than written as blank.
func (s *Sync) buildProperties(kind string, properties map[string]string) notionapi.Properties {
	pageProps := notionapi.Properties{
		titleProperty: notionapi.TitleProperty{
			Title: richText(entryTitle(kind, properties)),
		},
		kindProperty: notionapi.SelectProperty{
			Select: notionapi.Option{Name: kind},
		},
	}

	for name, value := range properties {
		if value == "" || name == "name" {
			continue
		}

		switch name {
		case "key":
			pageProps[keyProperty] = notionapi.RichTextProperty{RichText: richText(value)}

		case "date":
			if parsed, err := time.Parse("2006-01-02", value); err == nil {
				date := notionapi.Date(parsed)
				pageProps[propertyName(name)] = notionapi.DateProperty{
					Date: &notionapi.DateObject{Start: &date},
				}
				continue
			}
			pageProps[propertyName(name)] = notionapi.RichTextProperty{RichText: richText(value)}

		case "abnormal":
			pageProps[propertyName(name)] = notionapi.CheckboxProperty{
				Checkbox: value == "true",
			}

		case "value":
			if number, err := strconv.ParseFloat(value, 64); err == nil {
				pageProps[propertyName(name)] = notionapi.NumberProperty{Number: number}
				continue
			}
			pageProps[propertyName(name)] = notionapi.RichTextProperty{RichText: richText(value)}

		default:
			pageProps[propertyName(name)] = notionapi.RichTextProperty{RichText: richText(value)}
		}
	}

	return pageProps
}

// entryTitle picks the page title: the entry's name, falling back to
// its key, falling back to its kind.
func entryTitle(kind string, properties map[string]string) string {
	if name := properties["name"]; name != "" {
		return name
	}
	if key := properties["key"]; key != "" {
		return key
	}
	return kind
}

// propertyName renders a canonical field name as a Notion column
// name: "reference_range" → "Reference Range".
func propertyName(field string) string {
	return titleCaser.String(strings.ReplaceAll(field, "_", " "))
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: content}},
	}
}

// Ping validates the target database exists and the token can see it.
func (s *Sync) Ping(ctx context.Context) error {
	if _, err := s.client.Database.Get(ctx, s.databaseID); err != nil {
		return fmt.Errorf("notion: database %s unreachable: %w", s.databaseID, err)
	}
	return nil
}
