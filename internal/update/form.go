package update

import (
	"strings"

	"github.com/sandeepkv93/lazytask/internal/bulk"
	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/views"
)

type FieldKey string

const (
	FieldDescription FieldKey = "description"
	FieldDetails     FieldKey = "details"
	FieldPriority    FieldKey = "priority"
	FieldStatus      FieldKey = "status"
	FieldDueDate     FieldKey = "due date"
	FieldTags        FieldKey = "tags"
)

// unchanged labels the empty choice of bulk update fields.
const unchanged = "(unchanged)"

type FormField struct {
	Key   FieldKey
	Value string
	// Choices, when set, restricts Value to one of them.
	Choices []string
}

// Form is the edit buffer of the add, update and bulk update modes.
type Form struct {
	Fields []FormField
	Active int
	Error  string
}

func statusChoices(withUnchanged bool) []string {
	out := []string{}
	if withUnchanged {
		out = append(out, "")
	}
	for _, s := range model.Statuses {
		out = append(out, string(s))
	}
	return out
}

func priorityChoices(withUnchanged bool) []string {
	out := []string{}
	if withUnchanged {
		out = append(out, "")
	}
	for _, p := range model.Priorities {
		out = append(out, string(p))
	}
	return out
}

func newAddForm() Form {
	return Form{Fields: []FormField{
		{Key: FieldDescription},
		{Key: FieldDetails},
		{Key: FieldPriority, Value: string(model.PriorityMedium), Choices: priorityChoices(false)},
		{Key: FieldStatus, Value: string(model.StatusTodo), Choices: statusChoices(false)},
		{Key: FieldDueDate},
		{Key: FieldTags},
	}}
}

func newUpdateForm(t model.Task) Form {
	return Form{Fields: []FormField{
		{Key: FieldDescription, Value: t.Description},
		{Key: FieldDetails, Value: t.Details},
		{Key: FieldPriority, Value: string(t.Priority), Choices: priorityChoices(false)},
		{Key: FieldStatus, Value: string(t.Status), Choices: statusChoices(false)},
		{Key: FieldDueDate, Value: t.DueDate},
		{Key: FieldTags, Value: strings.Join(t.Tags, ", ")},
	}}
}

func newBulkUpdateForm() Form {
	return Form{Fields: []FormField{
		{Key: FieldPriority, Choices: priorityChoices(true)},
		{Key: FieldStatus, Choices: statusChoices(true)},
		{Key: FieldDueDate},
		{Key: FieldTags},
	}}
}

func (f Form) ActiveChoice() bool {
	if f.Active < 0 || f.Active >= len(f.Fields) {
		return false
	}
	return len(f.Fields[f.Active].Choices) > 0
}

func (f Form) Value(key FieldKey) string {
	for _, field := range f.Fields {
		if field.Key == key {
			return field.Value
		}
	}
	return ""
}

func (f *Form) Move(delta int) {
	n := len(f.Fields)
	if n == 0 {
		return
	}
	f.Active = ((f.Active+delta)%n + n) % n
}

func (f *Form) Cycle(delta int) {
	if !f.ActiveChoice() {
		return
	}
	field := &f.Fields[f.Active]
	idx := 0
	for i, c := range field.Choices {
		if c == field.Value {
			idx = i
			break
		}
	}
	n := len(field.Choices)
	field.Value = field.Choices[((idx+delta)%n+n)%n]
}

func (f *Form) Type(text string) {
	if f.ActiveChoice() || f.Active >= len(f.Fields) {
		return
	}
	f.Fields[f.Active].Value += text
	f.Error = ""
}

func (f *Form) Backspace() {
	if f.ActiveChoice() || f.Active >= len(f.Fields) {
		return
	}
	f.Fields[f.Active].Value = dropLastRune(f.Fields[f.Active].Value)
}

// Draft validates the add form.
func (f Form) Draft() (bulk.Draft, string) {
	desc := strings.TrimSpace(f.Value(FieldDescription))
	if desc == "" {
		return bulk.Draft{}, "description cannot be empty"
	}
	due, err := model.ParseDueDate(f.Value(FieldDueDate))
	if err != nil {
		return bulk.Draft{}, "invalid due date: " + strings.TrimSpace(f.Value(FieldDueDate))
	}
	return bulk.Draft{
		Description: desc,
		Details:     f.Value(FieldDetails),
		Priority:    model.Priority(f.Value(FieldPriority)),
		Status:      model.Status(f.Value(FieldStatus)),
		DueDate:     due,
		Tags:        model.ParseTags(f.Value(FieldTags)),
	}, ""
}

// Changes builds the full change-set of the single task update form.
func (f Form) Changes() (model.Changes, string) {
	desc := strings.TrimSpace(f.Value(FieldDescription))
	if desc == "" {
		return model.Changes{}, "description cannot be empty"
	}
	c := model.Changes{
		Description: model.Ptr(desc),
		Details:     model.Ptr(strings.TrimSpace(f.Value(FieldDetails))),
		Priority:    model.Ptr(f.Value(FieldPriority)),
		Status:      model.Ptr(f.Value(FieldStatus)),
		DueDate:     model.Ptr(strings.TrimSpace(f.Value(FieldDueDate))),
	}
	return c.WithTags(model.ParseTags(f.Value(FieldTags))), ""
}

// BulkChanges keeps only the fields the user filled in.
func (f Form) BulkChanges() (model.Changes, string) {
	var c model.Changes
	if v := f.Value(FieldPriority); v != "" {
		c.Priority = model.Ptr(v)
	}
	if v := f.Value(FieldStatus); v != "" {
		c.Status = model.Ptr(v)
	}
	if v := strings.TrimSpace(f.Value(FieldDueDate)); v != "" {
		c.DueDate = model.Ptr(v)
	}
	if v := strings.TrimSpace(f.Value(FieldTags)); v != "" {
		c = c.WithTags(model.ParseTags(v))
	}
	if c.Empty() {
		return c, "no changes entered"
	}
	return c, ""
}

func (f Form) viewData() views.FormData {
	fields := make([]views.FormField, 0, len(f.Fields))
	for i, field := range f.Fields {
		value := field.Value
		if len(field.Choices) > 0 && value == "" {
			value = unchanged
		}
		fields = append(fields, views.FormField{
			Label:  string(field.Key),
			Value:  value,
			Active: i == f.Active,
			Choice: len(field.Choices) > 0,
		})
	}
	return views.FormData{Fields: fields, Error: f.Error}
}
