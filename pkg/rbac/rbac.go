package rbac

// 权限常量
const (
	// 政府侧操作权限
	PermissionCreateProgram   = "program:create"
	PermissionApproveProject  = "project:approve"
	PermissionSuspendProject  = "project:suspend"
	PermissionRevokeProject   = "project:revoke"
	PermissionDefineMilestone = "milestone:define"
	PermissionTriggerRelease  = "release:trigger"
	PermissionClawback        = "release:clawback"
	PermissionListProjects    = "project:list"

	// 生产方操作权限
	PermissionApplyProject = "project:apply"

	// 审计方操作权限
	PermissionSubmitAttestation = "attestation:submit"
	PermissionListAssigned      = "project:list_assigned"

	// 银行侧操作权限
	PermissionListQueued  = "disbursement:list_queued"
	PermissionBankApprove = "disbursement:bank_approve"
)

// 角色常量
const (
	RoleGov      = "gov"
	RoleProducer = "producer"
	RoleAuditor  = "auditor"
	RoleBank     = "bank"
	RoleUser     = "user" // OTP 登录未指定角色时的默认角色
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleGov: {
		PermissionCreateProgram,
		PermissionApproveProject,
		PermissionSuspendProject,
		PermissionRevokeProject,
		PermissionDefineMilestone,
		PermissionTriggerRelease,
		PermissionClawback,
		PermissionListProjects,
	},
	RoleProducer: {
		PermissionApplyProject,
	},
	RoleAuditor: {
		PermissionSubmitAttestation,
		PermissionListAssigned,
	},
	RoleBank: {
		PermissionListQueued,
		PermissionBankApprove,
	},
	RoleUser: {},
}

// KnownRole 检查角色是否是系统已知角色
func KnownRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission 检查角色是否有指定权限（返回错误而不是布尔值，便于处理）
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
