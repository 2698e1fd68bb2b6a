// Package shelljob provides Job implementations that run a shell command
// locally or over SSH, building safely-quoted command lines with
// alessio/shellescape the way a hand-rolled quoting routine never quite
// gets right.
package shelljob

import (
	"fmt"

	"github.com/alessio/shellescape"
	"github.com/trivago/boerewors/common/logger"
	"github.com/trivago/boerewors/job"
)

// defaultSSHOptions mirrors the safe defaults boerewors' SSHJob always
// applied: don't prompt for unknown host keys, never wait for a
// passphrase, and don't hang forever on a dead host.
var defaultSSHOptions = []string{
	"StrictHostKeyChecking=no",
	"BatchMode=yes",
	"ConnectTimeout=10",
}

// BourneShell builds a ProcessJob that runs command through `bash -c`.
func BourneShell(name, command string, env []string, dir string, adapter job.ProcessAdapter, logFactory logger.LogFactory) *job.ProcessJob {
	argv := []string{"bash", "-c", command}
	return job.NewProcessJob(name, argv, env, dir, adapter, logFactory)
}

// SSHOptions overrides the -o options passed to ssh; nil uses
// defaultSSHOptions.
type SSHOptions []string

// SSH builds a ProcessJob that runs command on host as user over ssh,
// with the command itself shell-quoted so it survives being forwarded
// through the remote shell untouched.
func SSH(name, user, host, command string, opts SSHOptions, env []string, adapter job.ProcessAdapter, logFactory logger.LogFactory) *job.ProcessJob {
	if opts == nil {
		opts = defaultSSHOptions
	}
	argv := []string{"/usr/bin/ssh"}
	for _, o := range opts {
		argv = append(argv, "-o", o)
	}
	argv = append(argv, fmt.Sprintf("%s@%s", user, host), shellescape.Quote(command))
	return job.NewProcessJob(name, argv, env, "", adapter, logFactory)
}
