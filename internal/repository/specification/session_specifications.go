package specification

import (
	"strings"

	"gorm.io/gorm"
)

// ByCode looks a session up by its human-facing code, case-insensitive
// and trimmed, matching how users type codes back in.
type ByCode struct {
	Code string
}

func (s ByCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("code = ?", strings.ToUpper(strings.TrimSpace(s.Code)))
}
