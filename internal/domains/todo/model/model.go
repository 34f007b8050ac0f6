package model

import (
	"fmt"
	"html"
	"strings"
	"time"
	"todolist/shared/failure"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	TableName  = "todo"
	EntityName = "todo"

	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTaskDate    = "taskDate"

	MaxTitleLength       = 32
	MaxDescriptionLength = 8192
)

// State tells whether a record has been written to the store.
type State int

const (
	StateNew State = iota
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StatePersisted:
		return "persisted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var sanitizer = bluemonday.StrictPolicy()

const maxSanitizePasses = 8

// Row is the table mapping of a todo. id and taskDate are assigned by the store.
type Row struct {
	ID          int64     `db:"id"          generated:"true"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	TaskDate    time.Time `db:"task_date"   column:"taskDate" generated:"true"`
}

// Todo is one todo item. Title and description are validated on every assignment, so a
// Todo obtained from New or FromRow is always valid.
type Todo struct {
	id          int64
	title       string
	description string
	taskDate    time.Time
}

// New builds a record that has not been persisted yet.
func New(title, description string) (Todo, error) {
	var todo Todo

	if err := todo.SetTitle(title); err != nil {
		return Todo{}, err
	}

	if err := todo.SetDescription(description); err != nil {
		return Todo{}, err
	}

	return todo, nil
}

// FromRow rebuilds a persisted record from its table row.
func FromRow(row Row) (Todo, error) {
	todo, err := New(row.Title, row.Description)
	if err != nil {
		return Todo{}, fmt.Errorf("invalid stored %s %d: %w", EntityName, row.ID, err)
	}

	if err = todo.SetID(row.ID); err != nil {
		return Todo{}, fmt.Errorf("invalid stored %s: %w", EntityName, err)
	}

	todo.taskDate = row.TaskDate

	return todo, nil
}

// ToRow returns the values written to the store.
func (t *Todo) ToRow() Row {
	return Row{
		ID:          t.id,
		Title:       t.title,
		Description: t.description,
		TaskDate:    t.taskDate,
	}
}

func (t *Todo) ID() int64 {
	return t.id
}

func (t *Todo) Title() string {
	return t.title
}

func (t *Todo) Description() string {
	return t.description
}

func (t *Todo) TaskDate() time.Time {
	return t.taskDate
}

func (t *Todo) State() State {
	if t.id > 0 {
		return StatePersisted
	}

	return StateNew
}

func (t *Todo) IsPersisted() bool {
	return t.State() == StatePersisted
}

// SetID assigns the store identifier. Only positive values are accepted.
func (t *Todo) SetID(id int64) error {
	if id <= 0 {
		return failure.OutOfRange(fmt.Sprintf("%s id must be positive", EntityName))
	}

	t.id = id

	return nil
}

// ClearID marks the record as not persisted.
func (t *Todo) ClearID() {
	t.id = 0
}

func (t *Todo) SetTitle(title string) error {
	title, err := cleanText(FieldTitle, title, MaxTitleLength)
	if err != nil {
		return err
	}

	t.title = title

	return nil
}

func (t *Todo) SetDescription(description string) error {
	description, err := cleanText(FieldDescription, description, MaxDescriptionLength)
	if err != nil {
		return err
	}

	t.description = description

	return nil
}

// SetTaskDate records the timestamp assigned by the store.
func (t *Todo) SetTaskDate(taskDate time.Time) {
	t.taskDate = taskDate
}

// Serialize returns the record as field name to value. taskDate is expressed in
// milliseconds since the Unix epoch, rounded to the nearest millisecond. Unset id and
// taskDate are nil.
func (t *Todo) Serialize() map[string]any {
	var (
		id       any
		taskDate any
	)

	if t.IsPersisted() {
		id = t.id
	}

	if !t.taskDate.IsZero() {
		taskDate = EpochMillis(t.taskDate)
	}

	return map[string]any{
		FieldID:          id,
		FieldTitle:       t.title,
		FieldDescription: t.description,
		FieldTaskDate:    taskDate,
	}
}

// EpochMillis converts ts to milliseconds since the Unix epoch. The sub-second part is
// reduced to microseconds first and then rounded half up to milliseconds.
func EpochMillis(ts time.Time) int64 {
	micros := int64(ts.Nanosecond() / int(time.Microsecond))

	return ts.Unix()*1000 + (micros+500)/1000
}

// Sanitize strips markup and surrounding whitespace from user supplied text. Entities are
// decoded and the result is stripped again until it no longer changes, so encoded markup
// cannot survive as live tags. Text that keeps changing after maxSanitizePasses is dropped.
func Sanitize(value string) string {
	value = strings.TrimSpace(value)

	for range maxSanitizePasses {
		cleaned := strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(value)))
		if cleaned == value {
			return value
		}

		value = cleaned
	}

	return ""
}

func cleanText(field, value string, maxLength int) (string, error) {
	value = Sanitize(value)

	if value == "" {
		return "", failure.BadRequestFromString(fmt.Sprintf("%s is empty or insecure", field))
	}

	if utf8.RuneCountInString(value) > maxLength {
		return "", failure.OutOfRange(fmt.Sprintf("%s must be at most %d characters", field, maxLength))
	}

	return value, nil
}
