package types

import "time"

// OnboardingIdentity is carried over from the onboarding record and is never
// modified by a form session.
type OnboardingIdentity struct {
	OnboardingID  string `json:"onboarding_id"`
	FirstName     string `json:"first_name"`
	MiddleInitial string `json:"middle_initial,omitempty"`
	LastName      string `json:"last_name"`
	SSN           string `json:"ssn"`
	AddressLine1  string `json:"address_line1"`
	AddressLine2  string `json:"address_line2,omitempty"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
	WorkState     string `json:"work_state"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

// FormDraft is the mutable state of one form-filling session.
type FormDraft struct {
	Identity         OnboardingIdentity
	StateCode        StateCode
	FormID           string
	Values           RawValues
	SignatureImage   []byte
	ConfirmationDate string
}

type SubmissionPayload struct {
	Identity         OnboardingIdentity `json:"identity"`
	StateCode        StateCode          `json:"state"`
	FormID           string             `json:"form_id"`
	Exempt           bool               `json:"exempt"`
	Values           RawValues          `json:"values"`
	Totals           DerivedTotals      `json:"derived_totals"`
	SignatureImage   []byte             `json:"signature_image"`
	ConfirmationDate string             `json:"confirmation_date"`
}

type SubmissionResult struct {
	RecordID    string    `json:"record_id"`
	DryRun      bool      `json:"dry_run,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
