package dto

// HandoffResponse carries what the invite step needs: the neutral topic
// summary and the session code to share.
type HandoffResponse struct {
	Summary string `json:"summary"`
	Code    string `json:"code"`
}

// Report status values surfaced to clients. "generated" marks the call
// that produced the document; every later read returns "ready".
const (
	ReportStatusReady     = "ready"
	ReportStatusGenerated = "generated"
	ReportStatusWaiting   = "waiting_for_partner"
	ReportStatusFailed    = "failed"
)

// ReportResponse is the role-specific view of the joint report: shared
// analysis, the caller's own advice, and the advice addressed to their
// partner (shown to build empathy, mirroring the report prompt).
type ReportResponse struct {
	Status        string `json:"status"`
	Analysis      string `json:"analysis,omitempty"`
	MyAdvice      string `json:"my_advice,omitempty"`
	PartnerAdvice string `json:"partner_advice,omitempty"`
}
