package domain

// Task is structured data extracted by the task action handler.
type Task struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Note is structured data extracted by the note action handler.
type Note struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

// Result is the envelope every handled turn returns to the front-end.
// Task and Note are mutually exclusive and nil unless Intent is exactly
// IntentTask or IntentNote.
type Result struct {
	Reply  string `json:"reply"`
	Intent Intent `json:"intent"`
	Task   *Task  `json:"task"`
	Note   *Note  `json:"note"`
}

// Normalize enforces the task/note invariant on a result, whatever the
// model produced.
func (r Result) Normalize() Result {
	if r.Intent != IntentTask {
		r.Task = nil
	}
	if r.Intent != IntentNote {
		r.Note = nil
	}
	if _, ok := ParseIntent(string(r.Intent)); !ok {
		r.Intent = IntentOther
	}
	return r
}
