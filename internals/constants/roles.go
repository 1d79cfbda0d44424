package constants

// Role names as stored in roles.name
const (
	RoleStudent          = "Student"
	RoleTeacher          = "Teacher"
	RoleCompetitionAdmin = "CompetitionAdministrator"
	RoleAdministrator    = "Administrator"
)

const ErrNotAllowed = "you are not allowed to %s"

// ==========================
// Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleStudent,
		RoleTeacher,
		RoleCompetitionAdmin,
		RoleAdministrator,
	}

	StudentOnly = []string{
		RoleStudent,
	}

	CompetitionStaff = []string{
		RoleCompetitionAdmin,
		RoleAdministrator,
	}

	CommonManagers = []string{
		RoleTeacher,
		RoleCompetitionAdmin,
		RoleAdministrator,
	}

	AdministratorOnly = []string{
		RoleAdministrator,
	}
)
