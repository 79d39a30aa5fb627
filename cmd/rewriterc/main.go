// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// 🚦 Exit codes
const (
	exitOK           = 0
	exitFailure      = 1
	exitInvalidRules = 2
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o := &opts.RootOpts{Stdout: stdout, Stderr: stderr}
	defer o.Close()

	cmd := newRootCmd(o)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	if o.Logger != nil {
		o.Logger.Errorf("%v", err)
	} else {
		fmt.Fprintf(stderr, "❌ %v\n", err)
	}

	return exitCode(err)
}

// exitCode maps a command error to a process exit code
func exitCode(err error) int {
	var cerr *rewrite.RuleCompilationError
	if errors.As(err, &cerr) {
		return exitInvalidRules
	}
	return exitFailure
}
