package validate

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a diagnostic by the invariant family it violates.
type Kind uint8

const (
	KindControlFlow Kind = iota
	KindType
	KindDominance
	KindMemory
)

func (k Kind) String() string {
	switch k {
	case KindControlFlow:
		return "control-flow"
	case KindType:
		return "type"
	case KindDominance:
		return "dominance"
	case KindMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// Severity separates soundness violations from advisory findings.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one validator finding with enough location information to
// be actionable: function, block, and instruction index. Block and Instr
// are -1 when the finding is not tied to that granularity; Instr equal to
// the block's instruction count points at the terminator.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Function string
	Block    int
	Instr    int
	Message  string
}

func (d Diagnostic) String() string {
	var loc strings.Builder
	if d.Function != "" {
		fmt.Fprintf(&loc, "%%%s", d.Function)
		if d.Block >= 0 {
			fmt.Fprintf(&loc, "/block%d", d.Block)
			if d.Instr >= 0 {
				fmt.Fprintf(&loc, "/inst%d", d.Instr)
			}
		}
		loc.WriteString(": ")
	}
	return fmt.Sprintf("%s[%s]: %s%s", d.Severity, d.Kind, loc.String(), d.Message)
}

// HasErrors reports whether any diagnostic is a hard error. A module with
// only warnings is still accepted for emission, obfuscation, and analysis.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// sortDiagnostics orders findings by structural position so that merged
// results are stable regardless of the order functions were validated in.
func sortDiagnostics(diags []Diagnostic, funcOrder map[string]int) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if fa, fb := funcOrder[a.Function], funcOrder[b.Function]; fa != fb {
			return fa < fb
		}
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		if a.Instr != b.Instr {
			return a.Instr < b.Instr
		}
		return a.Message < b.Message
	})
}
