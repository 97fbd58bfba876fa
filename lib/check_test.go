package lib

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func errorLines(t *testing.T, errs []error) []int {
	lines := []int{}
	for _, err := range errs {
		var e *Error
		require.True(t, errors.As(err, &e), "%v", err)
		lines = append(lines, e.Line)
	}
	return lines
}

func TestCheckProgramClean(t *testing.T) {
	errs := CheckProgram(DefaultConfig(), `int a = 1;
char c = 'c';
int* p = &a;
int** pp = &p;
**pp = a * 2;
char* q = NULL;
q = &c;
`)
	require.Empty(t, errs)
}

func TestCheckProgramReportsEveryFailingLine(t *testing.T) {
	errs := CheckProgram(DefaultConfig(), `int a = 1;
char c = 'c';
a = c;
int* p = &c;
int b = *a;
x = 1;
int a;
int* q = NULL;
q = &a;
**q = 1;
int d = 5
`)
	require.Equal(t, []int{3, 4, 5, 6, 7, 10, 11}, errorLines(t, errs))

	requireKind(t, errs[0], CategoryRuntime, ErrTypeMismatch)
	requireKind(t, errs[1], CategoryRuntime, ErrTypeMismatch)
	requireKind(t, errs[2], CategoryRuntime, ErrNotAPointer)
	requireKind(t, errs[3], CategoryRuntime, ErrUnknownVariable)
	requireKind(t, errs[4], CategoryCompile, ErrDuplicateDeclaration)
	requireKind(t, errs[5], CategoryRuntime, ErrNotAPointer)
	requireKind(t, errs[6], CategoryCompile, ErrUnexpectedEOL)
}

func TestCheckProgramOutOfMemory(t *testing.T) {
	errs := CheckProgram(Config{Rows: 1, BytesPerRow: 4}, "int a;\nint b;\nchar c;\n")
	require.Len(t, errs, 1)
	requireKind(t, errs[0], CategoryRuntime, ErrOutOfMemory)
	require.Equal(t, []int{3}, errorLines(t, errs))
}

func TestCheckProgramOperators(t *testing.T) {
	errs := CheckProgram(DefaultConfig(), `char c = 'c';
char d = c + c;
int a = 1 + NULL;
`)
	require.Len(t, errs, 2)
	requireKind(t, errs[0], CategoryRuntime, ErrOperatorNotImplemented)
	requireKind(t, errs[1], CategoryRuntime, ErrTypeMismatch)
}

func TestTypeEnvBuilder(t *testing.T) {
	b := NewTypeEnvBuilder(DefaultConfig())
	for _, line := range []string{"int a;", "char* p = NULL;", "p = NULL;"} {
		stmt, err := Parse(line)
		require.NoError(t, err)
		require.NoError(t, b.handleStmt(stmt), line)
	}

	env := b.Env()
	require.Equal(t, map[string]Type{
		"a": TypeInt,
		"p": "char*",
	}, env.Types)
	require.Equal(t, 4, env.bump)
}
