package nav

// DefaultTable returns the route table of the installer portal: public
// marketing and wizard pages, customer pages for any signed-in session, and
// the subcontractor and administrator areas.
func DefaultTable() *Table {
	return NewTable("/auth", "/unauthorized").
		Public(
			"/",
			"/home",
			"/auth",
			"/unauthorized",
			"/contact",
			"/advisor",
			"/forgot-password",
			"/reset-password/:token",
			"/onboarding",
			"/admin-login",
			"/map-test",
			"/maps-debug",
		).
		Protected(
			"/dashboard",
			"/installations",
			"/installations/new",
			"/installations/:id",
			"/settings",
			"/account-settings",
			"/referrals",
		).
		For(Subcontractor,
			"/subcontractor",
			"/subcontractor/dashboard",
			"/subcontractor/onboarding",
			"/subcontractor/job/:id",
			"/subcontractor/calendar",
			"/subcontractor/history",
			"/subcontractor/settings",
		).
		For(Administrator,
			"/admin",
			"/admin/dashboard",
			"/admin/installations",
			"/admin/installations/:id",
			"/admin/installations/:id/ai-matching",
			"/admin/contact",
			"/admin/contacts",
			"/admin/chat",
			"/admin/subcontractors",
			"/admin/subcontractors/new",
			"/admin/subcontractor-schedule/:id",
			"/admin/schedule",
			"/admin/workflow",
			"/admin/applications/customer",
			"/admin/applications/customer/:id",
			"/admin/applications/subcontractor",
			"/admin/archived-records",
			"/admin/crm",
			"/admin/kpi",
			"/admin/marketing",
		)
}
