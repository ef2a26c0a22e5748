// Package commands parses the dashboard's ":" command line into typed
// commands and dispatches them to handler functions.
package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/selection"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeMark     Type = "mark"
	TypeDelete   Type = "delete"
	TypePriority Type = "priority"
	TypeTag      Type = "tag"
	TypeSearch   Type = "search"
	TypeFuzzy    Type = "fuzzy"
	TypeSort     Type = "sort"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Description string
}

// IDs fields hold the raw ID expression; handlers resolve it against the
// current task list.
type MarkArgs struct {
	Status model.Status
	IDs    string
}

type DeleteArgs struct {
	IDs string
}

type PriorityArgs struct {
	Priority model.Priority
	IDs      string
}

type TagArgs struct {
	Tags []string
	IDs  string
}

type SearchArgs struct {
	Term  string
	Fuzzy bool
}

type SortArgs struct {
	Field      string
	Descending bool
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Mark     *MarkArgs
	Delete   *DeleteArgs
	Priority *PriorityArgs
	Tag      *TagArgs
	Search   *SearchArgs
	Sort     *SortArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, ":"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeMark:
		return parseMark(input, args)
	case TypeDelete:
		return parseDelete(input, args)
	case TypePriority:
		return parsePriority(input, args)
	case TypeTag:
		return parseTag(input, args)
	case TypeSearch, TypeFuzzy:
		return parseSearch(input, Type(head), args)
	case TypeSort:
		return parseSort(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a description"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Description: description}}, nil
}

func parseMark(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "mark requires a status and task IDs"}
	}
	status, err := model.ParseStatus(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid status: %s", args[0])}
	}
	ids, err := idExpression(args[1:])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeMark, Raw: raw, Mark: &MarkArgs{Status: status, IDs: ids}}, nil
}

func parseDelete(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "delete requires task IDs"}
	}
	ids, err := idExpression(args)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeDelete, Raw: raw, Delete: &DeleteArgs{IDs: ids}}, nil
}

func parsePriority(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "priority requires a level and task IDs"}
	}
	level, err := model.ParsePriority(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid priority: %s", args[0])}
	}
	ids, err := idExpression(args[1:])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypePriority, Raw: raw, Priority: &PriorityArgs{Priority: level, IDs: ids}}, nil
}

func parseTag(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "tag requires tags and task IDs"}
	}
	tags := model.ParseTags(args[0])
	if len(tags) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "tag requires at least one tag"}
	}
	ids, err := idExpression(args[1:])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeTag, Raw: raw, Tag: &TagArgs{Tags: tags, IDs: ids}}, nil
}

func parseSearch(raw string, typ Type, args []string) (Command, error) {
	term := strings.TrimSpace(strings.Join(args, " "))
	if term == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a term", typ)}
	}
	return Command{Type: typ, Raw: raw, Search: &SearchArgs{Term: term, Fuzzy: typ == TypeFuzzy}}, nil
}

func parseSort(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "sort requires a field and an optional asc|desc"}
	}
	desc := false
	if len(args) == 2 {
		switch strings.ToLower(args[1]) {
		case "asc":
		case "desc":
			desc = true
		default:
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid sort order: %s", args[1])}
		}
	}
	return Command{Type: TypeSort, Raw: raw, Sort: &SortArgs{Field: strings.ToLower(args[0]), Descending: desc}}, nil
}

// idExpression rejoins the ID arguments so "1, 3-4" and "1,3-4" read the same,
// and checks the grammar before any handler runs.
func idExpression(args []string) (string, error) {
	expr := strings.Join(args, "")
	ids, err := selection.ParseIDExpression(expr)
	if err != nil {
		return "", &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	if len(ids) == 0 {
		return "", &CommandError{Code: ErrCodeInvalidArgument, Message: "no task IDs given"}
	}
	return expr, nil
}
