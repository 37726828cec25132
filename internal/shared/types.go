package shared

// Asynq task types.
const (
	TypePruneImportArtifacts = "import:prune_artifacts"
)

// Asynq queues.
const (
	QueueDefault     = "default"
	QueueMaintenance = "maintenance"
)

// Gin context keys set by middleware.
const (
	CtxTenantID  = "tenant_id"
	CtxUserID    = "user_id"
	CtxRequestID = "request_id"
)
