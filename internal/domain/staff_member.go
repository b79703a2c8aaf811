package domain

// StaffStatus is the active flag shown on staff lists.
type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusInactive StaffStatus = "inactive"
)

// StaffProfilePicField is the multipart field carrying the staff photo.
const StaffProfilePicField = "profile_pic"

// StaffFields lists the form fields accepted by register and update, in submission order.
var StaffFields = []string{
	"name", "email", "role", "position", "phone", "address", "dob",
	"company_id", "department_id", "branch_id", "reports_to_id",
	"stats_score", "leave_balance", "is_active", "staff_id", "password",
}

// StaffInput carries a staff create or update submission.
// Values holds the non-empty text fields; Photo is set when an image was attached.
type StaffInput struct {
	Values map[string]string
	Photo  *Upload
}

// Upload is a file picked by the operator before it reaches the remote API.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// DepartmentOf returns the department reference of a staff record:
// department_id, else the department object's `_id`/`id`, else a department string.
func DepartmentOf(staff map[string]any) string {
	if v := StringField(staff, "department_id"); v != "" {
		return v
	}
	switch d := staff["department"].(type) {
	case map[string]any:
		if v := StringField(d, "_id"); v != "" {
			return v
		}
		return StringField(d, "id")
	case string:
		return d
	}
	return ""
}

// DepartmentLabel returns the human label used for department breakdowns.
func DepartmentLabel(staff map[string]any) string {
	switch d := staff["department"].(type) {
	case map[string]any:
		if v := StringField(d, "name"); v != "" {
			return v
		}
	case string:
		if d != "" {
			return d
		}
	}
	return "General"
}
