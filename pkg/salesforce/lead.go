package salesforce

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// maxBatchSize is the Salesforce Collections API limit per request.
const maxBatchSize = 200

// Lead score custom fields expected on the SF Lead object. Orgs without
// these fields still receive leads; the score columns are just skipped.
const (
	FieldLeadScore = "Lead_Score__c"
	FieldLeadGrade = "Lead_Grade__c"
)

// SFLead represents a Salesforce Lead record.
type SFLead struct {
	ID        string  `json:"Id" salesforce:"Id"`
	Company   string  `json:"Company" salesforce:"Company"`
	Email     string  `json:"Email" salesforce:"Email"`
	Phone     string  `json:"Phone" salesforce:"Phone"`
	Website   string  `json:"Website" salesforce:"Website"`
	Street    string  `json:"Street" salesforce:"Street"`
	Industry  string  `json:"Industry" salesforce:"Industry"`
	Rating    string  `json:"Rating" salesforce:"Rating"`
	LeadScore float64 `json:"Lead_Score__c" salesforce:"Lead_Score__c"`
	LeadGrade string  `json:"Lead_Grade__c" salesforce:"Lead_Grade__c"`
}

// sfLeadFields are the SOQL fields selected for Lead queries. The custom
// score fields are queried separately since not every org defines them.
var sfLeadFields = []string{
	"Id", "Company", "Email", "Phone", "Website", "Street", "Industry", "Rating",
}

// FindLeadByCompany queries Salesforce for a Lead matching the given company
// name. Returns nil if no lead is found.
func FindLeadByCompany(ctx context.Context, c Client, company string) (*SFLead, error) {
	soql := "SELECT " + strings.Join(sfLeadFields, ", ") +
		" FROM Lead WHERE Company = '" + escapeSoql(company) + "' LIMIT 1"

	var leads []SFLead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrapf(err, "sf: find lead by company %s", company)
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// CreateLead creates a new Lead record and returns the new Salesforce ID.
// Company and LastName are required by the Lead object.
func CreateLead(ctx context.Context, c Client, fields map[string]any) (string, error) {
	if fields["Company"] == nil || fields["Company"] == "" {
		return "", eris.New("sf: lead Company is required")
	}
	if fields["LastName"] == nil || fields["LastName"] == "" {
		fields["LastName"] = "Unknown"
	}
	id, err := c.InsertOne(ctx, "Lead", fields)
	if err != nil {
		return "", eris.Wrap(err, "sf: create lead")
	}
	return id, nil
}

// UpdateLead updates a Lead record with the given fields.
func UpdateLead(ctx context.Context, c Client, leadID string, fields map[string]any) error {
	if leadID == "" {
		return eris.New("sf: lead id is required")
	}
	if len(fields) == 0 {
		return eris.New("sf: no fields to update")
	}
	if err := c.UpdateOne(ctx, "Lead", leadID, fields); err != nil {
		return eris.Wrapf(err, "sf: update lead %s", leadID)
	}
	return nil
}

// BulkInsertLeads splits records into batches of 200 (SF Collections API
// limit) and sends them via InsertCollection. Partial results are returned
// alongside the error of the failing batch.
func BulkInsertLeads(ctx context.Context, c Client, records []map[string]any) ([]CollectionResult, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var allResults []CollectionResult

	for start := 0; start < len(records); start += maxBatchSize {
		end := min(start+maxBatchSize, len(records))
		batch := records[start:end]

		results, err := c.InsertCollection(ctx, "Lead", batch)
		if err != nil {
			return allResults, eris.Wrapf(err, "sf: bulk insert leads batch %d-%d", start, end)
		}
		allResults = append(allResults, results...)
	}

	return allResults, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
