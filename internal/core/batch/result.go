package batch

// Outcome は 1 行の処理結果です。
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "failed"
	}
}

// LineError は失敗した行の番号とメッセージです。
type LineError struct {
	Line    int
	Message string
}

// Result は取り込みの集計結果です。Errors は入力順に並びます。
type Result struct {
	Total     int
	Created   int
	Updated   int
	Succeeded int
	Failed    int
	Errors    []LineError
}

func (r *Result) record(line int, outcome Outcome, err error) {
	switch outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	default:
		r.Errors = append(r.Errors, LineError{Line: line, Message: rowMessage(err)})
	}
	r.Succeeded = r.Created + r.Updated
	r.Failed = len(r.Errors)
}
