package export

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/salesforce"
)

// SalesforceSink upserts each lead into the SF Lead object, keyed by
// company name. On first use it describes the Lead object to learn whether
// the org defines the custom score fields; if not, scores are skipped and
// the lead data still goes through.
type SalesforceSink struct {
	client salesforce.Client
	retry  resilience.RetryConfig

	described   bool
	scoreFields bool
}

func NewSalesforceSink(client salesforce.Client) *SalesforceSink {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("salesforce", "upsert lead")
	return &SalesforceSink{client: client, retry: cfg}
}

func (s *SalesforceSink) Name() string { return "salesforce" }

func (s *SalesforceSink) Emit(ctx context.Context, lead *model.Lead) error {
	if err := s.describeOnce(ctx); err != nil {
		return err
	}
	err := resilience.Do(ctx, s.retry, func(ctx context.Context) error {
		return s.upsert(ctx, lead)
	})
	return eris.Wrapf(err, "export: salesforce upsert %s", lead.BusinessName)
}

func (s *SalesforceSink) Flush(_ context.Context) error { return nil }

func (s *SalesforceSink) describeOnce(ctx context.Context) error {
	if s.described {
		return nil
	}
	desc, err := s.client.DescribeSObject(ctx, "Lead")
	if err != nil {
		return eris.Wrap(err, "export: salesforce describe lead object")
	}
	s.scoreFields = desc.HasField(salesforce.FieldLeadScore) && desc.HasField(salesforce.FieldLeadGrade)
	if !s.scoreFields {
		zap.L().Warn("salesforce org missing lead score custom fields, exporting without scores",
			zap.String("score_field", salesforce.FieldLeadScore),
			zap.String("grade_field", salesforce.FieldLeadGrade),
		)
	}
	s.described = true
	return nil
}

func (s *SalesforceSink) upsert(ctx context.Context, lead *model.Lead) error {
	existing, err := salesforce.FindLeadByCompany(ctx, s.client, lead.BusinessName)
	if err != nil {
		return err
	}

	fields := s.leadFields(lead)
	if existing != nil {
		return salesforce.UpdateLead(ctx, s.client, existing.ID, fields)
	}
	_, err = salesforce.CreateLead(ctx, s.client, fields)
	return err
}

func (s *SalesforceSink) leadFields(lead *model.Lead) map[string]any {
	fields := map[string]any{
		"Company":    lead.BusinessName,
		"LeadSource": "Lead Pipeline",
	}
	if lead.Email != nil {
		fields["Email"] = *lead.Email
	}
	if lead.Phone != nil {
		fields["Phone"] = *lead.Phone
	}
	if lead.Website != nil {
		fields["Website"] = *lead.Website
	}
	if lead.Address != nil {
		fields["Street"] = *lead.Address
	}
	if lead.Category != nil {
		fields["Industry"] = *lead.Category
	}

	if s.scoreFields {
		if lead.LeadScore != nil {
			fields[salesforce.FieldLeadScore] = float64(*lead.LeadScore)
		}
		if lead.LeadGrade != nil {
			fields[salesforce.FieldLeadGrade] = string(*lead.LeadGrade)
		}
	}
	return fields
}
