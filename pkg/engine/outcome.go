package engine

import "fmt"

// OutcomeKind tags the result of one applied operation.
type OutcomeKind int

// Outcome kinds.
const (
	OutcomeInserted OutcomeKind = iota
	OutcomeDuplicateRejected
	OutcomeFound
	OutcomeNotFound
	OutcomeDeleted
	OutcomeCleared
	OutcomeValidationError
)

// Severity classes for feedback ports.
type Severity int

// Severity constants. Logical rejections (duplicate insert, search or
// delete miss) are warnings, not hard errors: the tree stays consistent.
const (
	SeverityOk Severity = iota
	SeverityWarn
	SeverityErr
)

// Outcome is the tagged result of one operation. It is produced once per
// operation and consumed exactly once by the interaction controller
// before the next input is accepted.
type Outcome struct {
	Kind   OutcomeKind
	Value  int64
	Reason error
}

// Severity returns the feedback class for the outcome.
func (o Outcome) Severity() Severity {
	switch o.Kind {
	case OutcomeInserted, OutcomeFound, OutcomeDeleted, OutcomeCleared:
		return SeverityOk
	case OutcomeDuplicateRejected, OutcomeNotFound:
		return SeverityWarn
	case OutcomeValidationError:
		return SeverityErr
	default:
		return SeverityErr
	}
}

// Message returns the one user-facing string for the outcome. The
// mapping is fixed; feedback ports must not invent their own wording.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeInserted:
		return fmt.Sprintf("Inserted %d.", o.Value)
	case OutcomeDuplicateRejected:
		return fmt.Sprintf("Duplicate value %q not inserted.", fmt.Sprint(o.Value))
	case OutcomeFound:
		return fmt.Sprintf("Value %d found.", o.Value)
	case OutcomeNotFound:
		return fmt.Sprintf("Value %d not found.", o.Value)
	case OutcomeDeleted:
		return fmt.Sprintf("Deleted %d.", o.Value)
	case OutcomeCleared:
		return "Tree cleared."
	case OutcomeValidationError:
		if o.Reason != nil {
			return o.Reason.Error()
		}

		return "Invalid input."
	default:
		return "Invalid input."
	}
}

// String returns the kind's canonical name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeInserted:
		return "inserted"
	case OutcomeDuplicateRejected:
		return "duplicate_rejected"
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeCleared:
		return "cleared"
	case OutcomeValidationError:
		return "validation_error"
	default:
		return "unknown"
	}
}
