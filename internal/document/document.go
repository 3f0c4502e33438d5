// Package document defines the Agile documentation package generated from a
// meeting transcript and the pipeline that validates raw model output into
// one.
package document

// Priority ranks a backlog item into MoSCoW buckets.
type Priority string

// Complexity is a T-shirt size estimate, not story points.
type Complexity string

// Readiness is the Definition of Ready gate for a backlog item.
type Readiness string

// TestType classifies an acceptance criterion.
type TestType string

// RiskCategory distinguishes risks from assumptions and dependencies.
type RiskCategory string

// Impact grades how badly a risk would hurt delivery.
type Impact string

// Audience names who a release note is written for.
type Audience string

// Severity grades scope-creep findings and the overall assessment.
type Severity string

// AlertCategory names the kind of scope creep an alert reports.
type AlertCategory string

// Wire literals. Values are spelled exactly as they appear in model output
// and API responses; validation is case-sensitive.
const (
	PriorityMustHave   Priority = "Must Have"
	PriorityShouldHave Priority = "Should Have"
	PriorityCouldHave  Priority = "Could Have"
	PriorityWontHave   Priority = "Won't Have"

	ComplexityXS              Complexity = "XS"
	ComplexityS               Complexity = "S"
	ComplexityM               Complexity = "M"
	ComplexityL               Complexity = "L"
	ComplexityXL              Complexity = "XL"
	ComplexityNeedsDiscussion Complexity = "Needs Discussion"

	ReadyForSprint  Readiness = "Ready for Sprint"
	NeedsRefinement Readiness = "Needs Refinement"

	TestTypeFunctional  TestType = "Functional"
	TestTypeUIUX        TestType = "UI/UX"
	TestTypeSecurity    TestType = "Security"
	TestTypePerformance TestType = "Performance"
	TestTypeRegression  TestType = "Regression"

	CategoryRisk       RiskCategory = "Risk"
	CategoryAssumption RiskCategory = "Assumption"
	CategoryDependency RiskCategory = "Dependency"

	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"

	AudienceInternalUsers     Audience = "Internal Users"
	AudienceExternalCustomers Audience = "External Customers"
	AudienceAdmins            Audience = "Admins"
	AudienceDevelopers        Audience = "Developers"

	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"

	AlertFeatureCreep        AlertCategory = "Feature Creep"
	AlertScopeExpansion      AlertCategory = "Scope Expansion"
	AlertTimelinePressure    AlertCategory = "Timeline Pressure"
	AlertUnclearRequirements AlertCategory = "Unclear Requirements"
	AlertTechnicalDebt       AlertCategory = "Technical Debt"
	AlertResourceConstraint  AlertCategory = "Resource Constraint"
)

// Literal sets in prompt order, shared by the prompt contract and the
// schema drift test.
var (
	PriorityValues      = enumStrings(PriorityMustHave, PriorityShouldHave, PriorityCouldHave, PriorityWontHave)
	ComplexityValues    = enumStrings(ComplexityXS, ComplexityS, ComplexityM, ComplexityL, ComplexityXL, ComplexityNeedsDiscussion)
	ReadinessValues     = enumStrings(ReadyForSprint, NeedsRefinement)
	TestTypeValues      = enumStrings(TestTypeFunctional, TestTypeUIUX, TestTypeSecurity, TestTypePerformance, TestTypeRegression)
	RiskCategoryValues  = enumStrings(CategoryRisk, CategoryAssumption, CategoryDependency)
	ImpactValues        = enumStrings(ImpactHigh, ImpactMedium, ImpactLow)
	AudienceValues      = enumStrings(AudienceInternalUsers, AudienceExternalCustomers, AudienceAdmins, AudienceDevelopers)
	SeverityValues      = enumStrings(SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical)
	AlertCategoryValues = enumStrings(AlertFeatureCreep, AlertScopeExpansion, AlertTimelinePressure, AlertUnclearRequirements, AlertTechnicalDebt, AlertResourceConstraint)
)

func enumStrings[T ~string](values ...T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// AcceptanceCriterion is one testable condition attached to a backlog item.
type AcceptanceCriterion struct {
	Condition string   `json:"condition"`
	TestType  TestType `json:"test_type"`
}

// BacklogItem is one candidate unit of work extracted from the transcript,
// expressed as a user story with acceptance criteria.
type BacklogItem struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	UserStory          string                `json:"user_story"`
	Priority           Priority              `json:"priority"`
	Complexity         Complexity            `json:"complexity"`
	ReadinessStatus    Readiness             `json:"definition_of_ready_status"`
	MissingInfo        string                `json:"missing_info"`
	AcceptanceCriteria []AcceptanceCriterion `json:"acceptance_criteria"`
}

// Decision records one call made during the meeting.
type Decision struct {
	Topic        string `json:"topic"`
	DecisionMade string `json:"decision_made"`
	Rationale    string `json:"rationale"`
	Owner        string `json:"owner"`
}

// Risk captures a risk, assumption or dependency raised in the meeting.
type Risk struct {
	Category           RiskCategory `json:"category"`
	Description        string       `json:"description"`
	Impact             Impact       `json:"impact"`
	MitigationStrategy string       `json:"mitigation_strategy"`
}

// ReleaseNote drafts a stakeholder-facing announcement for one feature.
type ReleaseNote struct {
	FeatureName    string   `json:"feature_name"`
	ValueStatement string   `json:"value_statement"`
	Audience       Audience `json:"audience"`
}

// ScopeAlert flags one scope-creep signal found in the transcript.
type ScopeAlert struct {
	Severity       Severity      `json:"severity"`
	Category       AlertCategory `json:"category"`
	Description    string        `json:"description"`
	Quote          string        `json:"quote"`
	Recommendation string        `json:"recommendation"`
	ImpactedItems  []string      `json:"impacted_items"`
}

// ScopeMetrics quantifies creep signals across the whole meeting.
type ScopeMetrics struct {
	FeaturesDiscussed   int `json:"features_discussed"`
	NewItemsAdded       int `json:"new_items_added"`
	ComplexityIncreases int `json:"complexity_increases"`
	UnclearRequirements int `json:"unclear_requirements"`
}

// ScopeSentinel is the scope-creep assessment for the meeting. Empty alerts
// with an overall risk of Low is the canonical "no creep" result.
type ScopeSentinel struct {
	OverallRisk Severity     `json:"overall_risk"`
	Summary     string       `json:"summary"`
	Alerts      []ScopeAlert `json:"alerts"`
	Metrics     ScopeMetrics `json:"metrics"`
}

// AgileDocument is the complete documentation package for one transcript.
// It is constructed from one validated model response, returned, and
// discarded; nothing persists it.
type AgileDocument struct {
	MeetingSummary    string        `json:"meeting_summary"`
	BacklogItems      []BacklogItem `json:"backlog_items"`
	DecisionLog       []Decision    `json:"decision_log"`
	RiskRegister      []Risk        `json:"risk_register"`
	ReleaseNotesDraft []ReleaseNote `json:"release_notes_draft"`
	ScopeSentinel     ScopeSentinel `json:"scope_sentinel"`
}

// normalize replaces nil collections with empty ones so the document always
// serializes arrays as [] rather than null.
func (d *AgileDocument) normalize() {
	if d.BacklogItems == nil {
		d.BacklogItems = []BacklogItem{}
	}
	if d.DecisionLog == nil {
		d.DecisionLog = []Decision{}
	}
	if d.RiskRegister == nil {
		d.RiskRegister = []Risk{}
	}
	if d.ReleaseNotesDraft == nil {
		d.ReleaseNotesDraft = []ReleaseNote{}
	}
	if d.ScopeSentinel.Alerts == nil {
		d.ScopeSentinel.Alerts = []ScopeAlert{}
	}
	for i := range d.BacklogItems {
		if d.BacklogItems[i].AcceptanceCriteria == nil {
			d.BacklogItems[i].AcceptanceCriteria = []AcceptanceCriterion{}
		}
	}
	for i := range d.ScopeSentinel.Alerts {
		if d.ScopeSentinel.Alerts[i].ImpactedItems == nil {
			d.ScopeSentinel.Alerts[i].ImpactedItems = []string{}
		}
	}
}
