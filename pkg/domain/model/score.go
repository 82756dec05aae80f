package model

// Score attribute names as returned by the toxicity scoring service
const (
	AttrThreat             = "THREAT"
	AttrThreatExperimental = "THREAT_EXPERIMENTAL"
	AttrToxicity           = "TOXICITY"
	AttrSevereToxicity     = "SEVERE_TOXICITY"
	AttrProfanity          = "PROFANITY"
	AttrIdentityAttack     = "IDENTITY_ATTACK"
	AttrFlirtation         = "FLIRTATION"
)

// Scores maps attribute names to values in [0,1]
type Scores map[string]float64

// Composite returns the weighted urgency score in [0,1].
// Missing attributes contribute zero.
func (s Scores) Composite() float64 {
	return 0.8*s[AttrThreat] + 0.1*s[AttrToxicity] + 0.1*s[AttrThreatExperimental]
}
