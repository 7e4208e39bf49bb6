package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldPeriod     = "period"
	FieldKind       = "kind"
	FieldCategory   = "category"
	FieldAmountCent = "amount_cents"
	FieldEntryID    = "entry_id"
	FieldBackend    = "backend"
	FieldChatID     = "chat_id"
	FieldAttempt    = "attempt"
	FieldNextFire   = "next_fire"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentCommand   = "command"
	ComponentScheduler = "scheduler"
	ComponentNotify    = "notify"
	ComponentTelegram  = "telegram"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
)
