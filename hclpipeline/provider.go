// Package hclpipeline implements runner.StageProvider by parsing a
// declarative ".boerewors.hcl" pipeline file: stages and their shell jobs
// are described in HCL instead of Go, for pipelines simple enough not to
// need a custom runner.
package hclpipeline

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/trivago/boerewors/common/logger"
	"github.com/trivago/boerewors/job"
	"github.com/trivago/boerewors/runner"
	"github.com/trivago/boerewors/shelljob"
	"github.com/trivago/boerewors/stage"
)

type jobSpec struct {
	Name    string            `hcl:"name,label"`
	Command string            `hcl:"command"`
	Env     map[string]string `hcl:"env,optional"`
}

type stageSpec struct {
	Name     string    `hcl:"name,label"`
	Canary   *bool     `hcl:"canary,optional"`
	Parallel *bool     `hcl:"parallel,optional"`
	CanFail  *bool     `hcl:"can_fail,optional"`
	PoolSize *int      `hcl:"pool_size,optional"`
	Jobs     []jobSpec `hcl:"job,block"`
}

type runnerSpec struct {
	Name   string      `hcl:"name,label"`
	Stages []stageSpec `hcl:"stage,block"`
}

type fileSpec struct {
	Runner runnerSpec `hcl:"runner,block"`
}

// upperFunc lets a pipeline file normalise a string attribute, e.g.
// `command = upper("echo hi")`, without reaching for a templating layer.
var upperFunc = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "s", Type: cty.String}},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(strings.ToUpper(args[0].AsString())), nil
	},
})

var evalContext = &hcl.EvalContext{
	Functions: map[string]function.Function{"upper": upperFunc},
}

// Provider is a runner.StageProvider backed by a parsed pipeline file.
type Provider struct {
	name       string
	stages     []*stage.Stage
	logFactory logger.LogFactory
	adapter    job.ProcessAdapter
	workDir    string
}

// Load parses the pipeline file at path into a Provider. adapter may be
// nil, defaulting to a local OS process for every job.
func Load(path, workDir string, adapter job.ProcessAdapter, logFactory logger.LogFactory) (*Provider, error) {
	var f fileSpec
	if err := hclsimple.DecodeFile(path, evalContext, &f); err != nil {
		return nil, err
	}
	if logFactory == nil {
		logFactory = logger.NoOpLogFactory
	}

	p := &Provider{name: f.Runner.Name, logFactory: logFactory, adapter: adapter, workDir: workDir}
	for _, ss := range f.Runner.Stages {
		jobs := make([]job.Job, 0, len(ss.Jobs))
		for _, js := range ss.Jobs {
			env := make([]string, 0, len(js.Env))
			for k, v := range js.Env {
				env = append(env, k+"="+v)
			}
			jobs = append(jobs, shelljob.BourneShell(js.Name, js.Command, env, p.workDir, p.adapter, logFactory))
		}

		opts := []stage.Option{stage.WithLogFactory(logFactory)}
		if ss.Canary != nil {
			opts = append(opts, stage.WithCanary(*ss.Canary))
		}
		if ss.Parallel != nil {
			opts = append(opts, stage.WithParallel(*ss.Parallel))
		}
		if ss.CanFail != nil {
			opts = append(opts, stage.WithCanFail(*ss.CanFail))
		}
		if ss.PoolSize != nil {
			opts = append(opts, stage.WithPoolSize(*ss.PoolSize))
		}
		p.stages = append(p.stages, stage.New(ss.Name, stage.FromSlice(jobs), opts...))
	}
	return p, nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Setup(args runner.RunArgs) error { return nil }

func (p *Provider) Stages() []*stage.Stage { return p.stages }

func (p *Provider) Cleanup() {}
