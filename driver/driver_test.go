package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runToTempFile(t *testing.T, input string, opts Options) string {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "out.c")
	opts.InputName = input
	opts.OutputName = out
	opts.DefsPaths = []string{filepath.Join("..", "testdata", "bas2c.def")}
	opts.CommentTabs = -1

	d, err := New(opts.Debug)
	require.NoError(t, err)

	status, err := d.Run(opts)
	require.NoError(t, err)
	require.Equal(t, 0, status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	return string(data)
}

func TestDriverTranslatesArithmetic(t *testing.T) {
	c := runToTempFile(t, filepath.Join("..", "testdata", "hello.bas"), Options{})

	require.Contains(t, c, "#include <basic0.h>")
	require.Contains(t, c, "void main(int b_argc, char *b_argv[])")
	require.Contains(t, c, "b_init();")
	require.Contains(t, c, "C = (A + B);")
	require.Contains(t, c, "b_sprint(")
	require.Contains(t, c, "exit(0);")
}

func TestDriverTranslatesStringConcatAndComparison(t *testing.T) {
	c := runToTempFile(t, filepath.Join("..", "testdata", "strings.bas"), Options{})

	require.Contains(t, c, "b_stradd(strtmp0,")
	require.Contains(t, c, "b_strncpy(sizeof(")
	require.Contains(t, c, "b_strcmp(")
	require.Contains(t, c, "0x3d20")
	require.Contains(t, c, ")?-1:0")
	require.Contains(t, c, "if (")
}

func TestDriverNoBInitOmitsInit(t *testing.T) {
	c := runToTempFile(t, filepath.Join("..", "testdata", "hello.bas"), Options{NoBInit: true})

	require.NotContains(t, c, "b_init();")
	require.Contains(t, c, "#include <stdlib.h>")
}

func TestDriverGotoAndGosubTargetsOnly(t *testing.T) {
	c := runToTempFile(t, filepath.Join("..", "testdata", "jumps.bas"), Options{})

	require.Contains(t, c, "void S000100(void);")
	require.Contains(t, c, "S000100();")
	require.Contains(t, c, "goto L000040;")
	require.Contains(t, c, "L000040:")
	require.Contains(t, c, "void S000100(void)\n{\n")

	// Line 10 and line 30 are ordinary numbered lines that nothing jumps
	// to; they must not grow their own L%06d label.
	require.NotContains(t, c, "L000010:")
	require.NotContains(t, c, "L000030:")
}

func TestDefaultOutputName(t *testing.T) {
	require.Equal(t, "foo.c", DefaultOutputName("foo.bas"))
	require.Equal(t, "foo.c", DefaultOutputName("foo.BAS"))
	require.Equal(t, "bare.c", DefaultOutputName("bare"))
}
