package document

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

// ParseError reports why raw model output could not become an
// AgileDocument. Diagnostics name the failing fields and what was expected;
// they are meant for logs, not for clients.
type ParseError struct {
	Diagnostics []string
}

func (e *ParseError) Error() string {
	return "malformed model response: " + strings.Join(e.Diagnostics, "; ")
}

// Parse validates raw model output into an AgileDocument.
//
// The raw text is treated as untrusted: the first top-level JSON object is
// extracted from any surrounding prose or code fences, checked against the
// document schema (required fields, primitive types, exact case-sensitive
// enum literals), decoded, and normalized. Returned warnings flag
// impacted_items references that match no backlog id; dangling references
// never fail the parse since the model may hallucinate ids.
func Parse(raw string) (*AgileDocument, []string, error) {
	span, ok := extractObject(raw)
	if !ok {
		return nil, nil, &ParseError{Diagnostics: []string{"no JSON object found in model response"}}
	}

	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewStringLoader(span)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		// Validate errors out before producing a result when the extracted
		// span is not syntactically valid JSON.
		return nil, nil, &ParseError{Diagnostics: []string{fmt.Sprintf("response is not valid JSON: %v", err)}}
	}
	if !result.Valid() {
		diags := make([]string, 0, len(result.Errors()))
		for _, violation := range result.Errors() {
			diags = append(diags, violation.String())
		}
		sort.Strings(diags)
		return nil, nil, &ParseError{Diagnostics: diags}
	}

	var doc AgileDocument
	if err := json.Unmarshal([]byte(span), &doc); err != nil {
		return nil, nil, &ParseError{Diagnostics: []string{fmt.Sprintf("decode document: %v", err)}}
	}
	doc.normalize()

	if diags := duplicateItemIDs(doc.BacklogItems); len(diags) > 0 {
		return nil, nil, &ParseError{Diagnostics: diags}
	}

	return &doc, danglingReferences(&doc), nil
}

func duplicateItemIDs(items []BacklogItem) []string {
	seen := make(map[string]bool, len(items))
	var diags []string
	for _, item := range items {
		if seen[item.ID] {
			diags = append(diags, fmt.Sprintf("backlog_items: duplicate id %q", item.ID))
			continue
		}
		seen[item.ID] = true
	}
	return diags
}

func danglingReferences(doc *AgileDocument) []string {
	ids := make(map[string]bool, len(doc.BacklogItems))
	for _, item := range doc.BacklogItems {
		ids[item.ID] = true
	}
	var warnings []string
	for i, alert := range doc.ScopeSentinel.Alerts {
		for _, ref := range alert.ImpactedItems {
			if !ids[ref] {
				warnings = append(warnings, fmt.Sprintf("scope_sentinel.alerts[%d]: impacted item %q matches no backlog id", i, ref))
			}
		}
	}
	return warnings
}
