package rbac

const (
	RoleTeacher = "teacher"
	RoleGuest   = "guest"
	RoleAdmin   = "admin"
)

const (
	PermCorrectionRun    = "correction:run"
	PermSessionViewOwn   = "session:view-own"
	PermSessionViewAll   = "session:view-all"
	PermRubricManage     = "rubric:manage"
	PermRecordsView      = "records:view"
	PermStatsView        = "stats:view"
	PermRemedialGenerate = "remedial:generate"
)

// Default policy. Guests get the teacher set; their data is scoped by owner id.
var RolePermissions = map[string][]string{
	RoleTeacher: {
		PermCorrectionRun,
		PermSessionViewOwn,
		PermRubricManage,
		PermRecordsView,
		PermStatsView,
		PermRemedialGenerate,
	},
	RoleGuest: {
		PermCorrectionRun,
		PermSessionViewOwn,
		PermRubricManage,
		PermRecordsView,
		PermStatsView,
		PermRemedialGenerate,
	},
	RoleAdmin: {
		"*",
	},
}
