package clrviz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/clrviz/internal/input"
	"github.com/dekarrin/clrviz/internal/parse"
	"github.com/dekarrin/rosed"
	"github.com/pterm/pterm"
)

const (
	consoleOutputWidth = 80

	rulePrompt  = "rule> "
	inputPrompt = "input> "
)

const shellHelp = `Enter one grammar rule per line ("A -> x y", or "A ->" for an empty body),
then a blank line to build the tables. After that, every line is parsed as
whitespace-separated tokens and its trace is shown.

Commands:
  :grammar        enter a new grammar
  :productions    show the augmented productions
  :first          show FIRST sets of the non-terminals
  :states         show the canonical LR(1) item sets
  :table          show the ACTION and GOTO tables
  :conflicts      show every conflicting table cell
  :dot            show the automaton in Graphviz DOT format
  :policy [NAME]  show or set the conflict policy (resolve, reject-rr, reject-all)
  :help           show this help
  :quit           exit the shell`

// Engine contains the things needed to run an interactive clrviz shell
// attached to an input stream and an output stream.
type Engine struct {
	in          input.LineReader
	out         *bufio.Writer
	forceDirect bool
	useReadline bool
	running     bool

	policy parse.ConflictPolicy
	rules  []string
	tables *parse.Tables
}

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream and a
// buffered writer on the output stream.
//
// If nil is given for the input stream, stdin is used. If nil is given for the
// output stream, stdout is used. If grammarFilePath is not empty, the rules in
// that file are loaded and built before the engine is returned.
func New(inputStream io.Reader, outputStream io.Writer, grammarFilePath string, policy parse.ConflictPolicy, forceDirectInput bool) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	eng := &Engine{
		out:         bufio.NewWriter(outputStream),
		forceDirect: forceDirectInput,
		policy:      policy,
	}

	eng.useReadline = !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	if grammarFilePath != "" {
		data, err := os.ReadFile(grammarFilePath)
		if err != nil {
			return nil, fmt.Errorf("read grammar file: %w", err)
		}
		rules := SplitRules(string(data))
		tables, err := Build(rules, WithPolicy(policy))
		if err != nil {
			return nil, fmt.Errorf("build grammar from %s: %w", grammarFilePath, err)
		}
		eng.rules = rules
		eng.tables = tables
	}

	if eng.useReadline {
		var err error
		eng.in, err = input.NewInteractiveReader(rulePrompt)
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running engine")
	}

	if err := eng.in.Close(); err != nil {
		return fmt.Errorf("close line reader: %w", err)
	}

	return nil
}

// Tables returns the tables of the current grammar, or nil if no grammar has
// been built yet.
func (eng *Engine) Tables() *parse.Tables {
	return eng.tables
}

// RunUntilQuit reads grammar rules, token input and commands from the input
// stream until :quit is entered or the input ends.
func (eng *Engine) RunUntilQuit() error {
	introMsg := "Welcome to the clrviz canonical LR(1) shell\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "Type :help for a list of commands\n"

	if err := eng.write(introMsg); err != nil {
		return err
	}

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	if eng.tables != nil {
		if err := eng.showBuild(); err != nil {
			return err
		}
	} else {
		if err := eng.readGrammar(); err != nil {
			if errors.Is(err, io.EOF) {
				return eng.write("Goodbye\n")
			}
			return err
		}
	}

	for eng.running {
		eng.setPrompt(inputPrompt)
		line, err := eng.in.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("get input: %w", err)
		}

		if strings.HasPrefix(line, ":") {
			if err := eng.runCommand(line); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return err
			}
			continue
		}

		if err := eng.parseLine(line); err != nil {
			return err
		}
	}

	return eng.write("Goodbye\n")
}

func (eng *Engine) runCommand(line string) error {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	// commands that do not need a grammar
	switch cmd {
	case ":quit", ":q", ":exit":
		eng.running = false
		return nil
	case ":help", ":h", ":?":
		return eng.write(shellHelp + "\n")
	case ":grammar", ":g":
		return eng.readGrammar()
	case ":policy":
		return eng.setPolicy(args)
	}

	if eng.tables == nil {
		return eng.write(pterm.Warning.Sprintln("No grammar is loaded; enter one with :grammar"))
	}

	switch cmd {
	case ":productions", ":p":
		return eng.write(eng.tables.ProductionsString() + "\n")
	case ":first":
		return eng.write(eng.tables.Analysis().Describe(eng.tables.Grammar()) + "\n")
	case ":states", ":s":
		return eng.write(eng.tables.StatesString() + "\n")
	case ":table", ":t":
		return eng.write(eng.tables.String() + "\n")
	case ":conflicts", ":c":
		return eng.write(eng.tables.ConflictsString() + "\n")
	case ":dot":
		return eng.write(eng.tables.Automaton().DOT())
	default:
		return eng.write(pterm.Error.Sprintln(fmt.Sprintf("Unknown command %q; type :help for a list of commands", fields[0])))
	}
}

func (eng *Engine) setPolicy(args []string) error {
	if len(args) == 0 {
		return eng.write(pterm.Info.Sprintln("Conflict policy is " + eng.policy.String()))
	}

	p, err := parse.ParseConflictPolicy(args[0])
	if err != nil {
		return eng.write(pterm.Error.Sprintln(err.Error()))
	}
	eng.policy = p

	if err := eng.write(pterm.Info.Sprintln("Conflict policy is now " + eng.policy.String())); err != nil {
		return err
	}
	if len(eng.rules) == 0 {
		return nil
	}

	if err := eng.build(eng.rules); err != nil {
		if !isBuildFailure(err) {
			return err
		}
		eng.tables = nil
		return eng.write(pterm.Warning.Sprintln("Grammar is unloaded; change the policy or enter a new one with :grammar"))
	}
	return nil
}

// readGrammar reads rules until a blank line and builds them. It keeps asking
// until a grammar builds or input ends.
func (eng *Engine) readGrammar() error {
	eng.setPrompt(rulePrompt)
	if err := eng.write("Enter grammar rules, then a blank line:\n"); err != nil {
		return err
	}

	for {
		var rules []string

		eng.in.AllowBlank(true)
		for {
			line, err := eng.in.ReadLine()
			if err != nil {
				eng.in.AllowBlank(false)
				if errors.Is(err, io.EOF) && len(rules) > 0 {
					break
				}
				return err
			}
			if line == "" {
				if len(rules) > 0 {
					break
				}
				continue
			}
			rules = append(rules, line)
		}
		eng.in.AllowBlank(false)

		if err := eng.build(rules); err == nil {
			return nil
		} else if !isBuildFailure(err) {
			return err
		}

		if err := eng.write("Enter the grammar again:\n"); err != nil {
			return err
		}
	}
}

// buildFailure marks a build error that was already reported to the user.
type buildFailure struct {
	cause error
}

func (bf buildFailure) Error() string {
	return bf.cause.Error()
}

func (bf buildFailure) Unwrap() error {
	return bf.cause
}

func isBuildFailure(err error) bool {
	var bf buildFailure
	return errors.As(err, &bf)
}

func (eng *Engine) build(rules []string) error {
	tables, err := Build(rules, WithPolicy(eng.policy))
	if err != nil {
		msg := rosed.Edit(err.Error()).Wrap(consoleOutputWidth).String()
		if writeErr := eng.write(pterm.Error.Sprintln(msg)); writeErr != nil {
			return writeErr
		}
		return buildFailure{cause: err}
	}

	eng.rules = rules
	eng.tables = tables
	return eng.showBuild()
}

func (eng *Engine) showBuild() error {
	t := eng.tables

	var sb strings.Builder
	sb.WriteString(t.ProductionsString())
	sb.WriteString("\n\n")
	sb.WriteString(t.String())
	sb.WriteString("\n")

	if err := eng.write(sb.String()); err != nil {
		return err
	}

	summary := fmt.Sprintf("Built %d states", t.NumStates())
	conflicts := t.Conflicts()
	if len(conflicts) == 0 {
		return eng.write(pterm.Success.Sprintln(summary + " with no conflicts"))
	}

	summary += fmt.Sprintf(" with %d conflict(s); resolving shift over reduce, then lowest production", len(conflicts))
	return eng.write(pterm.Warning.Sprintln(summary) + t.ConflictsString() + "\n")
}

func (eng *Engine) parseLine(line string) error {
	if eng.tables == nil {
		return eng.write(pterm.Warning.Sprintln("No grammar is loaded; enter one with :grammar"))
	}

	trace, err := Parse(eng.tables, Tokenize(line))
	if err != nil {
		return fmt.Errorf("parse %q: %w", line, err)
	}

	if err := eng.write(trace.String() + "\n"); err != nil {
		return err
	}

	if trace.Accepted {
		return eng.write(pterm.Success.Sprintln("Accepted"))
	}

	last := trace.Steps[len(trace.Steps)-1]
	msg := rosed.Edit("Rejected: " + last.Action.String()).Wrap(consoleOutputWidth).String()
	return eng.write(pterm.Error.Sprintln(msg))
}

func (eng *Engine) setPrompt(p string) {
	if icr, ok := eng.in.(*input.InteractiveLineReader); ok {
		icr.SetPrompt(p)
	}
}

func (eng *Engine) write(s string) error {
	if _, err := eng.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}
