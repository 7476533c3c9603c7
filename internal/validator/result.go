package validator

import (
	"fmt"
	"strings"
)

type IssueKind int

const (
	SyntaxIssue IssueKind = iota
	ReferenceIssue
	ConsistencyIssue
	DependencyIssue
)

func (k IssueKind) String() string {
	switch k {
	case ReferenceIssue:
		return "reference"
	case ConsistencyIssue:
		return "consistency"
	case DependencyIssue:
		return "dependency"
	default:
		return "syntax"
	}
}

type Severity int

const (
	LevelError Severity = iota
	LevelWarning
)

func (s Severity) String() string {
	if s == LevelWarning {
		return "warning"
	}
	return "error"
}

// Issue codes. Messages may change; codes are stable.
const (
	CodeNotAnObject           = "not_an_object"
	CodeUnknownDocument       = "unknown_document"
	CodeMissingField          = "missing_field"
	CodeWrongType             = "wrong_type"
	CodeVersionMismatch       = "version_mismatch"
	CodeEmptyID               = "empty_id"
	CodeDuplicateID           = "duplicate_id"
	CodeIncompleteMetaPointer = "incomplete_meta_pointer"
	CodeInvalidPropertyValue  = "invalid_property_value"
	CodeInvalidChildID        = "invalid_child_id"
	CodeMultipleOwners        = "multiple_owners"
	CodeEmptyTarget           = "empty_target"
	CodeDuplicateFeature      = "duplicate_feature"
	CodeUnknownField          = "unknown_field"

	CodeUnknownConcept      = "unknown_concept"
	CodeMultiplicity        = "multiplicity"
	CodeUndeclaredFeature   = "undeclared_feature"
	CodeFeatureKindMismatch = "feature_kind_mismatch"
	CodeTypeMismatch        = "type_mismatch"
	CodePropertyValueType   = "property_value_type"
	CodeParentMismatch      = "parent_mismatch"
	CodeOrphanParent        = "orphan_parent"
	CodeUnresolvedReference = "unresolved_reference"
	CodeUndeclaredLanguage  = "undeclared_language"
	CodeContainmentCycle    = "containment_cycle"
)

type Issue struct {
	Kind     IssueKind
	Severity Severity
	Code     string
	Path     Path
	Message  string
}

func (i Issue) String() string {
	if i.Path.IsRoot() {
		return fmt.Sprintf("[%s] %s", i.Kind, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Kind, i.Path, i.Message)
}

type Result struct {
	Issues []Issue
}

func (r Result) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == LevelError {
			return true
		}
	}
	return false
}

func (r Result) Count(code string) int {
	n := 0
	for _, i := range r.Issues {
		if i.Code == code {
			n++
		}
	}
	return n
}

func (r Result) ByKind(kind IssueKind) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

// Err returns nil when the result holds no error-severity issue.
func (r Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return r
}

func (r Result) Error() string {
	errs, warns := 0, 0
	for _, i := range r.Issues {
		if i.Severity == LevelError {
			errs++
		} else {
			warns++
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors, %d warnings", errs, warns)
	for _, i := range r.Issues {
		if i.Severity == LevelError {
			fmt.Fprintf(&b, "; first: %s", i)
			break
		}
	}
	return b.String()
}

func (r *Result) add(kind IssueKind, code string, path Path, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Kind:     kind,
		Severity: LevelError,
		Code:     code,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Result) warn(kind IssueKind, code string, path Path, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Kind:     kind,
		Severity: LevelWarning,
		Code:     code,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Result) merge(other Result) {
	r.Issues = append(r.Issues, other.Issues...)
}

// Path locates an issue inside a chunk, e.g. nodes[n1].children[Library-books].
// Appending never mutates the receiver.
type Path struct {
	segments []string
}

func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

func (p Path) Field(name string) Path {
	return p.with(name)
}

// Key appends an indexed segment, e.g. nodes[n1].
func (p Path) Key(name, key string) Path {
	return p.with(fmt.Sprintf("%s[%s]", name, key))
}

func (p Path) Index(name string, i int) Path {
	return p.with(fmt.Sprintf("%s[%d]", name, i))
}

func (p Path) with(seg string) Path {
	segs := make([]string, len(p.segments), len(p.segments)+1)
	copy(segs, p.segments)
	return Path{segments: append(segs, seg)}
}

func (p Path) String() string {
	return strings.Join(p.segments, ".")
}

// NodePath is the path of the node with the given id.
func NodePath(id string) Path {
	return Path{}.Key("nodes", id)
}

// NodeID returns the id of the node the path starts at, or "" when the path
// does not start at a node.
func (p Path) NodeID() string {
	if len(p.segments) == 0 {
		return ""
	}
	seg := p.segments[0]
	if !strings.HasPrefix(seg, "nodes[") || !strings.HasSuffix(seg, "]") {
		return ""
	}
	return seg[len("nodes[") : len(seg)-1]
}
