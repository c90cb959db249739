package agent

// OutcomeKind classifies what a tool execution produced.
type OutcomeKind int

const (
	// KindMutation is a successful domain write.
	KindMutation OutcomeKind = iota
	// KindClarification asks the caller for missing details.
	KindClarification
	// KindAnswer requests an escalated free-form answer.
	KindAnswer
	// KindError is a failed operation or a dispatch failure.
	KindError
)

// ToolOutcome is the result of one tool execution. Which fields are
// meaningful depends on Kind; use the constructors so the kind and the
// success flag stay consistent.
type ToolOutcome struct {
	Kind      OutcomeKind
	Succeeded bool

	// Action names the operation, e.g. "create_special_status".
	Action string
	// Message is the confirmation text for a successful mutation.
	Message string
	// Note is an optional reminder appended to the confirmation.
	Note string
	// Warning flags a partial result worth surfacing.
	Warning string
	// Data carries the written record for the caller.
	Data map[string]any

	// Question and MissingInfo describe a clarification request.
	Question    string
	MissingInfo string

	// QuestionType and UseAdvancedModel describe an answer request.
	QuestionType     string
	UseAdvancedModel bool

	// Err is the failure description for error outcomes.
	Err string
}

// SuccessOutcome builds a successful mutation outcome.
func SuccessOutcome(action, message string) *ToolOutcome {
	return &ToolOutcome{
		Kind:      KindMutation,
		Succeeded: true,
		Action:    action,
		Message:   message,
	}
}

// ErrorOutcome builds a failed outcome with an operator-facing message.
func ErrorOutcome(message string) *ToolOutcome {
	return &ToolOutcome{
		Kind: KindError,
		Err:  message,
	}
}

// ClarificationOutcome builds a clarification request. Classifying the
// intent succeeded, so the outcome always reports success.
func ClarificationOutcome(action, question, missingInfo string) *ToolOutcome {
	return &ToolOutcome{
		Kind:        KindClarification,
		Succeeded:   true,
		Action:      action,
		Question:    question,
		MissingInfo: missingInfo,
	}
}

// AnswerOutcome builds an answer request. Classifying the intent
// succeeded, so the outcome always reports success.
func AnswerOutcome(action, questionType string, useAdvancedModel bool) *ToolOutcome {
	return &ToolOutcome{
		Kind:             KindAnswer,
		Succeeded:        true,
		Action:           action,
		QuestionType:     questionType,
		UseAdvancedModel: useAdvancedModel,
	}
}

// Payload renders the JSON-serializable map carried by the caller-facing
// tool_result notification.
func (o *ToolOutcome) Payload() map[string]any {
	switch o.Kind {
	case KindMutation:
		payload := map[string]any{
			"action":  o.Action,
			"message": o.Message,
		}
		if o.Data != nil {
			payload["data"] = o.Data
		}
		if o.Note != "" {
			payload["note"] = o.Note
		}
		if o.Warning != "" {
			payload["warning"] = o.Warning
		}
		return payload
	case KindClarification:
		return map[string]any{
			"action":       o.Action,
			"type":         "clarification",
			"question":     o.Question,
			"missing_info": o.MissingInfo,
		}
	case KindAnswer:
		return map[string]any{
			"action":             o.Action,
			"type":               "answer",
			"question_type":      o.QuestionType,
			"use_advanced_model": o.UseAdvancedModel,
		}
	case KindError:
		return map[string]any{
			"error": o.Err,
		}
	}
	return map[string]any{}
}
