/*
Clri starts an interactive canonical LR(1) shell.

It reads grammar rules, builds their canonical LR(1) ACTION and GOTO tables,
and prints the augmented productions and the tables. Every line entered after
that is split into tokens on whitespace and parsed against the tables, and the
full step-by-step trace of the parse is printed.

Usage:

	clri [flags]

The flags are:

	-v, --version
		Give the current version of clrviz and then exit.

	-g, --grammar FILE
		Load the grammar rules from FILE, one rule per line, instead of asking
		for them at startup.

	-d, --direct
		Force reading directly from the console as opposed to using GNU readline
		based routines for reading input even if launched in a tty with stdin
		and stdout.

	--policy POLICY
		Set what happens when the tables have conflicts. POLICY must be one of
		resolve (the default; keep conflicts and resolve them while parsing),
		reject-rr (refuse grammars with reduce/reduce conflicts), or reject-all
		(refuse grammars with any conflict).

Once a session has started, lines beginning with ":" are shell commands. For an
explanation of the commands, type ":help" once in a session. To exit the
shell, type ":quit".
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/clrviz"
	"github.com/dekarrin/clrviz/internal/parse"
	"github.com/dekarrin/clrviz/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitShellError indicates an unsuccessful program execution due to a
	// problem while the shell was running.
	ExitShellError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// initializing the engine.
	ExitInitError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	flagGrammar = pflag.StringP("grammar", "g", "", "Load grammar rules from the given file, one rule per line")
	flagDirect  = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
	flagPolicy  = pflag.String("policy", "resolve", "Conflict policy: resolve, reject-rr, or reject-all")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	policy, err := parse.ParseConflictPolicy(*flagPolicy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\nDo -h for help.\n", err.Error())
		returnCode = ExitInitError
		return
	}

	eng, initErr := clrviz.New(os.Stdin, os.Stdout, *flagGrammar, policy, *flagDirect)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer eng.Close()

	err = eng.RunUntilQuit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitShellError
		return
	}
}
