package rbac

// Role permissions for the exam portal. Admins author content and grade;
// students sit exams and read their own records.
var RolePermissions = map[string][]string{
	"student": {
		"schedule:view-own",
		"exam:take",
		"result:view-own",
		"attendance:view-own",
		"attendance:export-own",
		"project:view-own",
		"project:submit",
		"report:view-own",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
