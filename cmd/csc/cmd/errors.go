package cmd

// The driver's four non-zero exit classes, per spec §6: 1 = usage/input
// error, 2 = resolution (lex/parse/resolve/emit diagnostic) errors,
// 8 = internal compiler error, 19 = assembly-loading error. Each is a
// distinct error type so exitCodeFor can dispatch on it without relying on
// string matching.

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

type compileError struct{ msg string }

func (e *compileError) Error() string { return e.msg }

type internalError struct{ msg string }

func (e *internalError) Error() string { return e.msg }

type assemblyError struct{ msg string }

func (e *assemblyError) Error() string { return e.msg }

func exitCodeFor(err error) int {
	switch err.(type) {
	case *usageError:
		return 1
	case *compileError:
		return 2
	case *internalError:
		return 8
	case *assemblyError:
		return 19
	default:
		// cobra's own flag-parsing errors land here: usage errors.
		return 1
	}
}
