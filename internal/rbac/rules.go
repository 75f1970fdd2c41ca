package rbac

// Default role policy. Students take quizzes and see their own results;
// admins author and see everything.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"attempt:create",
		"attempt:drive",
		"result:view-own",
	},
	"admin": {
		"*", // everything
	},
}
