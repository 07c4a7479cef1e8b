package entity

// Role tags every message row. Humans write as PartnerA/PartnerB; the
// mediator's replies carry the matching bot tag. Reading "my tag + my bot
// tag" is what keeps the two threads isolated without separate tables.
type Role string

const (
	RolePartnerA Role = "partner_a"
	RolePartnerB Role = "partner_b"
	RoleBotToA   Role = "bot_to_a"
	RoleBotToB   Role = "bot_to_b"
)

// rolePair maps a human role to the pair of tags forming its thread.
var rolePair = map[Role][2]Role{
	RolePartnerA: {RolePartnerA, RoleBotToA},
	RolePartnerB: {RolePartnerB, RoleBotToB},
}

// IsHuman reports whether r is one of the two partner tags.
func (r Role) IsHuman() bool {
	return r == RolePartnerA || r == RolePartnerB
}

// Valid reports whether r is a human role that can own a thread.
func (r Role) Valid() bool {
	_, ok := rolePair[r]
	return ok
}

// BotRole returns the bot tag answering this human role.
func (r Role) BotRole() Role {
	return rolePair[r][1]
}

// ThreadRoles returns the two tags whose rows form this role's thread.
func (r Role) ThreadRoles() []Role {
	pair, ok := rolePair[r]
	if !ok {
		return nil
	}
	return []Role{pair[0], pair[1]}
}

// ParseRole validates an incoming role string.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
