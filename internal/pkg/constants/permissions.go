package constants

const (
	ReviewTransfers  = "review_transfers"
	RespondContact   = "respond_contact"
	ManageProperties = "manage_properties"
	ViewAdminData    = "view_admin_data"
)

// PermissionRoles maps each permission to the roles allowed to use it.
// A permission missing here is a configuration error, not an implicit deny.
var PermissionRoles = map[string][]string{
	ReviewTransfers:  {Admin},
	RespondContact:   {Admin},
	ManageProperties: {Admin},
	ViewAdminData:    {Admin},
}

// AllowedRole reports whether role may use permission.
func AllowedRole(permission, role string) bool {
	for _, r := range PermissionRoles[permission] {
		if r == role {
			return true
		}
	}
	return false
}
