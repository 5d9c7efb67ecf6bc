package rbac

// Default policy: regular users operate on their own sessions, intake and
// analyses; admins additionally manage the catalog and read across users.
var RolePermissions = map[string][]string{
	"user": {
		"assessment:start",
		"assessment:resume",
		"assessment:answer",
		"assessment:save",
		"assessment:submit",
		"assessment:view-own",
		"intake:write",
		"intake:view-own",
		"intake:validate",
		"analysis:generate",
		"analysis:regenerate",
		"analysis:view-own",
		"analysis:delete-own",
	},
	"admin": {
		"*",
	},
}
