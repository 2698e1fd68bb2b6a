package shelljob

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBourneShellRunsAndCapturesOutput(t *testing.T) {
	j := BourneShell("root.sh", "echo hi", nil, "", nil, nil)
	res, err := j.GetResult(false)
	require.NoError(t, err)
	require.Equal(t, 0, res.Value())
	require.Equal(t, "hi\n", j.Stdout())
}

func TestBourneShellFailingCommand(t *testing.T) {
	j := BourneShell("root.sh", "exit 3", nil, "", nil, nil)
	_, err := j.GetResult(true)
	require.NoError(t, err)
	require.False(t, j.WasSuccessful())
	code, exited := j.ExitCode()
	require.True(t, exited)
	require.Equal(t, 3, code)
}

func TestSSHQuotesCommandSafely(t *testing.T) {
	j := SSH("root.ssh", "deploy", "example.invalid", `echo "hi"; rm -rf /`, nil, nil, nil, nil)
	argv := j.Argv()
	require.Equal(t, "deploy@example.invalid", argv[len(argv)-2])
	// The remote command must arrive as a single shell-escaped token, not
	// split across several argv entries where a stray ';' could be
	// interpreted by ssh's own argument parsing.
	require.Len(t, argv, len(defaultSSHOptions)*2+3)
}
