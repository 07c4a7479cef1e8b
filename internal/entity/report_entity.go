package entity

// MediationReport is the final joint artifact: one shared analysis and
// one advice text per partner. Produced at most once per session; both
// partners read the identical persisted record.
type MediationReport struct {
	Analysis   string `json:"analysis"`
	AdviceForA string `json:"advice_for_a"`
	AdviceForB string `json:"advice_for_b"`
}

// AdviceFor returns the advice text addressed to the given human role.
func (r *MediationReport) AdviceFor(role Role) string {
	if role == RolePartnerB {
		return r.AdviceForB
	}
	return r.AdviceForA
}

// AdviceForOther returns the advice addressed to the other partner.
func (r *MediationReport) AdviceForOther(role Role) string {
	if role == RolePartnerB {
		return r.AdviceForA
	}
	return r.AdviceForB
}
