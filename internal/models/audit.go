package models

import "time"

// Audit actions recorded by the admin panel.
const (
	AuditActionLogin             = "auth.login"
	AuditActionLogout            = "auth.logout"
	AuditActionPasswordChange    = "auth.password_change"
	AuditActionBootstrap         = "auth.bootstrap"
	AuditActionApplicationStatus = "application.status_update"
	AuditActionApplicationUpdate = "application.update"
	AuditActionApplicationDelete = "application.delete"
	AuditActionResultUpload      = "result.upload"
	AuditActionResultDelete      = "result.delete"
	AuditActionAdminAdd          = "admin.add"
	AuditActionAdminRemove       = "admin.remove"
	AuditActionSystemReset       = "system.reset"
)

// AuditLog records a mutating admin action.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
