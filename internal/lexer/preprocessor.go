package lexer

import (
	"strings"

	"github.com/csc-go/compiler/internal/diag"
)

// conditionalFrame tracks one level of #if/#elif/#else nesting.
type conditionalFrame struct {
	active      bool // this branch's condition is currently true
	everActive  bool // some branch in this chain has already been taken
	parentAlive bool // the enclosing frame (if any) is active
	sawElse     bool
}

// preprocessor tracks conditional-compilation state for one Lexer. Its
// directive set is #if/#elif/#else/#endif/#define/#undef/#region/#endregion.
// Conditional expressions are restricted to a single symbol, possibly
// negated, or true/false.
type preprocessor struct {
	symbols    map[string]bool
	conds      []conditionalFrame
	regionDeep int
}

func newPreprocessor() *preprocessor {
	p := &preprocessor{symbols: make(map[string]bool)}
	p.symbols["__BLUE__"] = true
	return p
}

// active reports whether code at the current nesting level should be
// emitted: true when every enclosing conditional frame is active.
func (p *preprocessor) active() bool {
	for _, f := range p.conds {
		if !f.active {
			return false
		}
	}
	return true
}

// handleDirectiveLine consumes one '#'-introduced line starting at
// l.ch == '#' and returns its trimmed text, with the '#' itself removed.
func (l *Lexer) handleDirectiveLine() string {
	l.readChar() // consume '#'
	start := l.pos
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return strings.TrimSpace(l.input[start:l.pos])
}

// handleDirective processes one directive line, updating conditional and
// region state, then skips past any now-inactive region before advancing
// past the directive's own trailing newline.
func (p *preprocessor) handleDirective(l *Lexer) {
	pos := l.currentPos()
	line := l.handleDirectiveLine()
	directive, rest := splitDirective(line)

	switch directive {
	case "if":
		val := p.evalExpr(strings.TrimSpace(rest))
		parentAlive := p.active()
		p.conds = append(p.conds, conditionalFrame{
			active:      parentAlive && val,
			everActive:  parentAlive && val,
			parentAlive: parentAlive,
		})
	case "elif":
		if len(p.conds) == 0 {
			l.errorf(pos, diag.LexInvalidDirective, "#elif without matching #if")
			break
		}
		f := &p.conds[len(p.conds)-1]
		if f.sawElse {
			l.errorf(pos, diag.LexInvalidDirective, "#elif after #else")
			break
		}
		val := p.evalExpr(strings.TrimSpace(rest))
		f.active = f.parentAlive && !f.everActive && val
		if f.active {
			f.everActive = true
		}
	case "else":
		if len(p.conds) == 0 {
			l.errorf(pos, diag.LexInvalidDirective, "#else without matching #if")
			break
		}
		f := &p.conds[len(p.conds)-1]
		if f.sawElse {
			l.errorf(pos, diag.LexInvalidDirective, "multiple #else clauses for one #if")
			break
		}
		f.sawElse = true
		f.active = f.parentAlive && !f.everActive
		if f.active {
			f.everActive = true
		}
	case "endif":
		if len(p.conds) == 0 {
			l.errorf(pos, diag.LexInvalidDirective, "#endif without matching #if")
			break
		}
		p.conds = p.conds[:len(p.conds)-1]
	case "define":
		name := strings.TrimSpace(rest)
		if name != "" {
			p.symbols[name] = true
		}
	case "undef":
		name := strings.TrimSpace(rest)
		delete(p.symbols, name)
	case "region":
		p.regionDeep++
	case "endregion":
		if p.regionDeep == 0 {
			l.errorf(pos, diag.LexUnmatchedEndRegion, "#endregion has no matching #region")
			break
		}
		p.regionDeep--
	default:
		l.errorf(pos, diag.LexInvalidDirective, "unrecognized preprocessor directive '#%s'", directive)
	}

	if !p.active() {
		l.skipDeadRegion()
	}

	if l.ch == '\n' {
		l.readChar()
		l.advanceLine()
	}
}

func splitDirective(line string) (directive, rest string) {
	line = strings.TrimSpace(line)
	i := 0
	for i < len(line) && !isSpaceByte(line[i]) {
		i++
	}
	return line[:i], line[i:]
}

func isSpaceByte(b byte) bool { return b == ' ' || b == '\t' }

// evalExpr evaluates a conditional-compilation expression: a bare symbol,
// "true"/"false", or either negated with a leading '!'. Richer boolean
// expressions are out of scope; an unrecognized symbol is simply undefined.
func (p *preprocessor) evalExpr(expr string) bool {
	neg := false
	for strings.HasPrefix(expr, "!") {
		neg = !neg
		expr = strings.TrimSpace(expr[1:])
	}
	var val bool
	switch expr {
	case "true":
		val = true
	case "false":
		val = false
	default:
		val = p.symbols[expr]
	}
	if neg {
		val = !val
	}
	return val
}

// skipDeadRegion advances the lexer, line by line, over source that belongs
// to an inactive conditional branch. Per spec, dead text need not be valid
// syntax, so this does not tokenize the skipped lines at all: it only looks
// for a leading '#' to recognize nested directives that affect activation
// state (#if/#elif/#else/#endif), so nesting is still tracked correctly.
func (l *Lexer) skipDeadRegion() {
	for !l.pp.active() && l.ch != 0 {
		sawDirective := false
		for l.ch != '\n' && l.ch != 0 {
			if l.ch == '#' && l.atLineStart {
				l.pp.handleDirective(l)
				sawDirective = true
				break
			}
			if l.ch != ' ' && l.ch != '\t' && l.ch != '\r' {
				l.atLineStart = false
			}
			l.readChar()
		}
		if sawDirective {
			continue
		}
		if l.ch == '\n' {
			l.readChar()
			l.advanceLine()
		}
	}
}
