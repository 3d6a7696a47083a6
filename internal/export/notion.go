package export

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/notion"
)

// notionTitleProp is the title property of the target leads database.
const notionTitleProp = "Name"

// NotionSink upserts each lead into a Notion database, keyed by business
// name: an existing page is updated in place, otherwise one is created.
type NotionSink struct {
	client notion.Client
	dbID   string
	retry  resilience.RetryConfig
}

func NewNotionSink(client notion.Client, dbID string) *NotionSink {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("notion", "upsert lead")
	return &NotionSink{client: client, dbID: dbID, retry: cfg}
}

func (s *NotionSink) Name() string { return "notion" }

func (s *NotionSink) Emit(ctx context.Context, lead *model.Lead) error {
	err := resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		return s.upsert(ctx, lead)
	})
	return eris.Wrapf(err, "export: notion upsert %s", lead.BusinessName)
}

func (s *NotionSink) Flush(_ context.Context) error { return nil }

func (s *NotionSink) upsert(ctx context.Context, lead *model.Lead) error {
	existing, err := notion.FindPageByTitle(ctx, s.client, s.dbID, notionTitleProp, lead.BusinessName)
	if err != nil {
		return err
	}

	props := leadProperties(lead)
	if existing != nil {
		_, err = s.client.UpdatePage(ctx, string(existing.ID), &notionapi.PageUpdateRequest{
			Properties: props,
		})
		return err
	}

	_, err = s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(s.dbID),
		},
		Properties: props,
	})
	return err
}

// leadProperties maps a lead onto the Notion page schema. Properties with
// no value are omitted so Notion keeps whatever is already on the page.
func leadProperties(lead *model.Lead) notionapi.Properties {
	props := notionapi.Properties{
		notionTitleProp: notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: lead.BusinessName}},
			},
		},
	}

	if lead.Email != nil {
		props["Email"] = notionapi.EmailProperty{
			Type:  notionapi.PropertyTypeEmail,
			Email: *lead.Email,
		}
	}
	if lead.Phone != nil {
		props["Phone"] = notionapi.PhoneNumberProperty{
			Type:        notionapi.PropertyTypePhoneNumber,
			PhoneNumber: *lead.Phone,
		}
	}
	if lead.Website != nil {
		props["URL"] = notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  *lead.Website,
		}
	}
	if lead.Address != nil {
		props["Location"] = notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: *lead.Address}},
			},
		}
	}
	if lead.Category != nil {
		props["Category"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: *lead.Category},
		}
	}
	if lead.LeadScore != nil {
		props["Score"] = notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(*lead.LeadScore),
		}
	}
	if lead.LeadGrade != nil {
		props["Grade"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(*lead.LeadGrade)},
		}
	}

	return props
}
