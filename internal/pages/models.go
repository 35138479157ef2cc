package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is a stored page record: identity and navigation metadata plus the
// serialized block document and its cached HTML rendition.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:pg"`

	ID              uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Title           string         `bun:"title,notnull" json:"title"`
	Slug            string         `bun:"slug,notnull,unique" json:"slug"`
	MetaTitle       string         `bun:"meta_title" json:"meta_title,omitempty"`
	MetaDescription string         `bun:"meta_description" json:"meta_description,omitempty"`
	FeaturedImage   string         `bun:"featured_image" json:"featured_image,omitempty"`
	Content         map[string]any `bun:"content,type:jsonb" json:"content"`
	RenderedHTML    string         `bun:"rendered_html" json:"rendered_html,omitempty"`
	IsPublished     bool           `bun:"is_published,notnull,default:false" json:"is_published"`
	ShowInNav       bool           `bun:"show_in_nav,notnull,default:true" json:"show_in_nav"`
	NavOrder        int            `bun:"nav_order,notnull,default:0" json:"nav_order"`
	CreatedAt       time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func clonePage(record *Page) *Page {
	if record == nil {
		return nil
	}
	copied := *record
	if record.Content != nil {
		copied.Content = cloneJSONMap(record.Content)
	}
	return &copied
}

// cloneJSONMap deep-copies a decoded JSON document.
func cloneJSONMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneJSONValue(value)
	}
	return out
}

func cloneJSONValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneJSONMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneJSONValue(item)
		}
		return out
	default:
		return value
	}
}
