package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldUpdateID  = "update_id"
	FieldUserID    = "user_id"
	FieldChatID    = "chat_id"
	FieldCommand   = "command"
	FieldExpenseID = "expense_id"
	FieldAmount    = "amount"
	FieldCategory  = "category"
	FieldDuration  = "duration_ms"
	FieldSuccess   = "success"
	FieldError     = "error"
	FieldOperation = "operation"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentBot        = "bot"
	ComponentExpense    = "expense"
	ComponentStatistics = "statistics"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSheets     = "sheets"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpList     = "list"
	OpReport   = "report"
	OpSync     = "sync"
	OpParse    = "parse"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithUpdate adds the identifiers of an inbound chat update
func (f LogFields) WithUpdate(updateID int, userID, chatID int64) LogFields {
	f[FieldUpdateID] = updateID
	f[FieldUserID] = userID
	f[FieldChatID] = chatID
	return f
}

func (f LogFields) WithCommand(command string) LogFields {
	f[FieldCommand] = command
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(amount int64, category string) LogFields {
	f[FieldAmount] = amount
	f[FieldCategory] = category
	return f
}

func (f LogFields) WithResult(durationMs int64, success bool) LogFields {
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
