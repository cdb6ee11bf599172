package service

import (
	"fmt"

	"github.com/segyhp/gym-membership/internal/domain"
)

// Messages holds the alert text templates of one locale. Each payment template
// receives the member's full name, document and a day count.
type Messages struct {
	DueSoon  string
	Overdue  string
	Inactive string
}

var catalog = map[string]Messages{
	"es": {
		DueSoon:  "%s (%s) - Pago vence en %d día(s)",
		Overdue:  "%s (%s) - Pago vencido hace %d día(s)",
		Inactive: "El miembro %s (%s) está inactivo",
	},
	"en": {
		DueSoon:  "%s (%s) - Payment due in %d day(s)",
		Overdue:  "%s (%s) - Payment overdue by %d day(s)",
		Inactive: "Member %s (%s) is inactive",
	},
}

// MessagesFor returns the templates for locale, falling back to Spanish
func MessagesFor(locale string) Messages {
	if m, ok := catalog[locale]; ok {
		return m
	}
	return catalog["es"]
}

func (m Messages) dueSoon(member *domain.Member, days int) string {
	return fmt.Sprintf(m.DueSoon, member.FullName(), member.Document, days)
}

func (m Messages) overdue(member *domain.Member, days int) string {
	return fmt.Sprintf(m.Overdue, member.FullName(), member.Document, days)
}

func (m Messages) inactive(member *domain.Member) string {
	return fmt.Sprintf(m.Inactive, member.FullName(), member.Document)
}
