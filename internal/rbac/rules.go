package rbac

// RolePermissions maps each role to the permissions it holds. A trailing
// "*" entry grants everything under that prefix; a bare "*" grants all.
var RolePermissions = map[string][]string{
	"admin": {"*"},
	"teacher": {
		"course:create",
		"course:view",
		"course:update",
		"enrollment:manage",
		"enrollment:view",
		"student:view",
		"grade:set",
		"grade:view",
		"material:upload",
		"material:view",
		"material:delete",
		"exam:*",
		"attempt:view",
		"attempt:grade",
	},
	"student": {
		"course:view",
		"material:view",
		"exam:view",
		"grade:view:self",
		"attempt:create",
		"attempt:submit",
		"attempt:view:self",
	},
}
