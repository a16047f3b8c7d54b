package models

// FormField is one input of the user form and whether it must be filled.
type FormField struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

var baseUserFields = []FormField{
	{Name: "email", Required: true},
	{Name: "firstName", Required: true},
	{Name: "lastName", Required: true},
	{Name: "roleType", Required: true},
}

var roleUserFields = map[RoleType][]FormField{
	RoleStudent: {
		{Name: "studentNumber", Required: true},
		{Name: "programId", Required: true},
	},
	RoleInstructor: {
		{Name: "employeeNumber", Required: true},
		{Name: "departmentId", Required: true},
	},
	RoleStaff: {
		{Name: "employeeNumber", Required: true},
		{Name: "departmentId", Required: false},
	},
}

// UserFormFields returns the visible fields of the user form for role, in display order.
// Fields not returned are hidden. An unknown role only gets the base fields.
func UserFormFields(role RoleType) []FormField {
	fields := make([]FormField, 0, len(baseUserFields)+2)
	fields = append(fields, baseUserFields...)
	return append(fields, roleUserFields[role]...)
}

// MissingUserFields lists the required fields for role that are empty in values.
func MissingUserFields(role RoleType, values map[string]string) []string {
	var missing []string
	for _, f := range UserFormFields(role) {
		if f.Required && values[f.Name] == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
