package admin

// Catalog lists every grantable permission, grouped by back-office area.
var Catalog = []string{
	"view_patients",
	"view_clinicians",
	"view_cases",
	"assign_clinicians",
	"view_ai_recommendations",

	"review_clinician_applications",
	"approve_clinician",
	"view_clinician_documents",

	"view_payments",
	"view_failed_payments",
	"view_payout_reports",

	"view_appointments",
	"reschedule_appointments",
	"cancel_appointments",

	"view_support_tickets",
	"reply_support_tickets",
	"close_tickets",

	"view_analytics",
	"export_reports",

	"manage_content",
	"create_notifications",
}

// FullGrants returns view+edit on every catalog entry, the grant set a full
// admin carries.
func FullGrants() []Permission {
	grants := make([]Permission, 0, len(Catalog))
	for _, name := range Catalog {
		grants = append(grants, Permission{Name: name, View: true, Edit: true})
	}
	return grants
}

// Grant modes for Can.
const (
	GrantView = "view"
	GrantEdit = "edit"
)

// Can reports whether the admin holds the named grant. The admin role
// bypasses the check; a sub-admin needs the permission with the requested
// bit set.
func (a Admin) Can(name, mode string) bool {
	if a.Role == RoleAdmin {
		return true
	}
	for _, p := range a.Permissions {
		if p.Name != name {
			continue
		}
		if mode == GrantEdit {
			return p.Edit
		}
		return p.View
	}
	return false
}
