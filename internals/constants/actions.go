package constants

import "fmt"

type Action string

const (
	ActionCatalogManage Action = "catalog.manage"
	ActionEventManage   Action = "event.manage"
	ActionEventStage    Action = "event.stage"
	ActionEventViewAll  Action = "event.view_all"

	ActionTeamCreate  Action = "team.create"
	ActionTeamReview  Action = "team.review"
	ActionTeamReset   Action = "team.reset"
	ActionTeamExport  Action = "team.export_works"
	ActionTeamViewAll Action = "team.view_all"

	ActionAwardManage       Action = "award.manage"
	ActionCertificateDelete Action = "certificate.delete"

	ActionApplicationReview  Action = "application.review"
	ActionApplicationViewAll Action = "application.view_all"

	ActionReport     Action = "report.view"
	ActionStatistics Action = "statistics.view"

	ActionUserManage    Action = "user.manage"
	ActionProfileSearch Action = "profile.search"
)

// ActionRoles is the single authorization table. An action missing here is denied.
var ActionRoles = map[Action][]string{
	ActionCatalogManage: CompetitionStaff,
	ActionEventManage:   CompetitionStaff,
	ActionEventStage:    CompetitionStaff,
	ActionEventViewAll:  CommonManagers,

	ActionTeamCreate:  StudentOnly,
	ActionTeamReview:  CompetitionStaff,
	ActionTeamReset:   CompetitionStaff,
	ActionTeamExport:  CompetitionStaff,
	ActionTeamViewAll: CompetitionStaff,

	ActionAwardManage:       CompetitionStaff,
	ActionCertificateDelete: CompetitionStaff,

	ActionApplicationReview:  CompetitionStaff,
	ActionApplicationViewAll: CompetitionStaff,

	ActionReport:     CompetitionStaff,
	ActionStatistics: CommonManagers,

	ActionUserManage:    AdministratorOnly,
	ActionProfileSearch: CommonManagers,
}

var actionLabels = map[Action]string{
	ActionCatalogManage:      "manage the competition catalog",
	ActionEventManage:        "manage competition events",
	ActionEventStage:         "change event stages",
	ActionEventViewAll:       "view archived events",
	ActionTeamCreate:         "create a team",
	ActionTeamReview:         "review teams",
	ActionTeamReset:          "reset teams to draft",
	ActionTeamExport:         "export team works",
	ActionTeamViewAll:        "view every team",
	ActionAwardManage:        "manage awards",
	ActionCertificateDelete:  "delete certificates",
	ActionApplicationReview:  "review award applications",
	ActionApplicationViewAll: "view every award application",
	ActionReport:             "view award reports",
	ActionStatistics:         "view award statistics",
	ActionUserManage:         "manage users",
	ActionProfileSearch:      "search profiles",
}

// ActionError returns the forbidden message for an action.
func ActionError(a Action) string {
	label, ok := actionLabels[a]
	if !ok {
		label = string(a)
	}
	return fmt.Sprintf(ErrNotAllowed, label)
}
