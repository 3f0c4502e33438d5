// Package prompt renders the instruction payload sent to the model.
package prompt

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/scrumsmith/scrumsmith/internal/document"
)

var (
	// ErrEmptyTranscript rejects requests whose transcript is empty or
	// whitespace-only.
	ErrEmptyTranscript = errors.New("transcript cannot be empty")

	// ErrUnsupportedModel rejects model identifiers outside the configured
	// supported set.
	ErrUnsupportedModel = errors.New("unsupported model")
)

// Payload is a fully rendered model request: which model to call and the
// single instruction text to send it.
type Payload struct {
	Model string
	Text  string
}

// Builder renders instruction payloads for transcripts. It is stateless
// beyond the supported-model set fixed at construction.
type Builder struct {
	supported []string
}

// NewBuilder returns a builder that accepts the given model identifiers.
func NewBuilder(supportedModels []string) *Builder {
	return &Builder{supported: slices.Clone(supportedModels)}
}

// Build validates the inputs and renders the payload. It is pure: identical
// transcript and model choice always produce an identical payload.
func (b *Builder) Build(transcript, modelChoice string) (Payload, error) {
	if strings.TrimSpace(transcript) == "" {
		return Payload{}, ErrEmptyTranscript
	}
	if !slices.Contains(b.supported, modelChoice) {
		return Payload{}, fmt.Errorf("%w: %q is not one of %s", ErrUnsupportedModel, modelChoice, strings.Join(b.supported, ", "))
	}
	return Payload{
		Model: modelChoice,
		Text:  fmt.Sprintf(template, transcript, validValues),
	}, nil
}

const template = `You are a Senior Technical Product Manager with expertise in Agile/Scrum methodology.
Analyze the following meeting transcript and produce a formal Agile documentation package.

CRITICAL INSTRUCTIONS:
1. **Complexity (Not Points):** Do not assign Story Points. Instead, estimate T-Shirt size (XS, S, M, L, XL) based on implied complexity.
2. **Definition of Ready:** If a requirement is vague or lacks detail, mark it as "Needs Refinement" and specify what information is missing.
3. **Decisions:** Extract specific architectural, scope, or process decisions made during the meeting.
4. **Risks & Assumptions:** Identify technical risks, dependencies, and assumptions that could impact delivery.
5. **Release Notes:** Write value-focused, non-technical summaries suitable for stakeholders.
6. **SCOPE SENTINEL:** Analyze for scope creep indicators including:
  - New features mentioned beyond original intent
  - Requirements that grew in complexity during discussion
  - Unclear boundaries that could expand later
  - Timeline pressure combined with feature additions
  - "Just one more thing" patterns
  - Technical debt being added

TRANSCRIPT:
%s

You MUST respond with ONLY valid JSON in this EXACT structure (no markdown, no explanations):

{
  "meeting_summary": "Brief 2-3 sentence summary of what was discussed",
  "backlog_items": [
    {
      "id": "PBI-001",
      "title": "Short descriptive title",
      "user_story": "As a [user type], I want [goal], so that [benefit]",
      "priority": "Must Have",
      "complexity": "M",
      "definition_of_ready_status": "Ready for Sprint",
      "missing_info": "",
      "acceptance_criteria": [
        {
          "condition": "Specific testable condition",
          "test_type": "Functional"
        }
      ]
    }
  ],
  "decision_log": [
    {
      "topic": "Decision topic",
      "decision_made": "What was decided",
      "rationale": "Why this decision was made",
      "owner": "Person responsible"
    }
  ],
  "risk_register": [
    {
      "category": "Risk",
      "description": "What could go wrong",
      "impact": "High",
      "mitigation_strategy": "How to address it"
    }
  ],
  "release_notes_draft": [
    {
      "feature_name": "Feature name",
      "value_statement": "Non-technical benefit to users",
      "audience": "External Customers"
    }
  ],
  "scope_sentinel": {
    "overall_risk": "Medium",
    "summary": "Brief assessment of scope health and creep indicators",
    "alerts": [
      {
        "severity": "Medium",
        "category": "Feature Creep",
        "description": "What scope creep was detected",
        "quote": "Exact quote from transcript showing the issue",
        "recommendation": "How to address this",
        "impacted_items": ["PBI-001", "PBI-002"]
      }
    ],
    "metrics": {
      "features_discussed": 5,
      "new_items_added": 2,
      "complexity_increases": 1,
      "unclear_requirements": 3
    }
  }
}

Valid values:
%s

RESPOND WITH ONLY THE JSON OBJECT, NO OTHER TEXT.`

// validValues enumerates every accepted enum literal, rendered from the same
// constants the validator enforces.
var validValues = func() string {
	quote := func(values []string) string {
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = strconv.Quote(v)
		}
		return strings.Join(quoted, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- priority: %s\n", quote(document.PriorityValues))
	fmt.Fprintf(&b, "- complexity: %s\n", quote(document.ComplexityValues))
	fmt.Fprintf(&b, "- definition_of_ready_status: %s\n", quote(document.ReadinessValues))
	fmt.Fprintf(&b, "- test_type: %s\n", quote(document.TestTypeValues))
	fmt.Fprintf(&b, "- category (risk): %s\n", quote(document.RiskCategoryValues))
	fmt.Fprintf(&b, "- impact: %s\n", quote(document.ImpactValues))
	fmt.Fprintf(&b, "- audience: %s\n", quote(document.AudienceValues))
	fmt.Fprintf(&b, "- severity (scope): %s\n", quote(document.SeverityValues))
	fmt.Fprintf(&b, "- category (scope): %s\n", quote(document.AlertCategoryValues))
	fmt.Fprintf(&b, "- overall_risk: %s", quote(document.SeverityValues))
	return b.String()
}()
