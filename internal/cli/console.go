package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aretw0/fieldform/internal/logging"
	"github.com/aretw0/fieldform/internal/presentation/tui"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/form"
	"github.com/aretw0/fieldform/pkg/session"
)

// ErrUnknownCommand is returned by Exec for unrecognized input.
var ErrUnknownCommand = errors.New("unknown command")

const consoleHelp = `Commands:
  show                      redraw the current screen
  set <field> <value>...    edit the shown instance ("-" leaves a component empty)
  clear <field>             empty the shown instance
  next <field>              next instance of a multiple field
  prev <field>              previous instance of a multiple field
  open <entity> <index>     open an instance of a child entity
  add <entity>              open a new instance of a child entity
  again                     open a new sibling, carrying multiple fields forward
  back                      return to the enclosing screen
  dump                      print the record as JSON
  save                      checkpoint the session
  quit                      save and leave
`

// Console fills one form session from line-oriented commands.
type Console struct {
	manager   *session.Manager
	sessionID string
	in        io.Reader
	out       io.Writer
	render    tui.Renderer
	logger    *slog.Logger

	screen *form.Screen
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithIO sets the command input and the screen output.
func WithIO(in io.Reader, out io.Writer) ConsoleOption {
	return func(c *Console) {
		c.in = in
		c.out = out
	}
}

// WithRenderer renders screens through r instead of printing raw markdown.
func WithRenderer(r tui.Renderer) ConsoleOption {
	return func(c *Console) {
		c.render = r
	}
}

// WithConsoleLogger sets the logger.
func WithConsoleLogger(logger *slog.Logger) ConsoleOption {
	return func(c *Console) {
		c.logger = logger
	}
}

// NewConsole binds a console to a session that the manager already knows.
func NewConsole(manager *session.Manager, sessionID string, opts ...ConsoleOption) *Console {
	c := &Console{
		manager:   manager,
		sessionID: sessionID,
		in:        strings.NewReader(""),
		out:       io.Discard,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Screen is the screen currently shown.
func (c *Console) Screen() *form.Screen { return c.screen }

// Run opens the form root and executes commands until quit, end of input or
// cancellation. The session is checkpointed on the way out.
func (c *Console) Run(ctx context.Context) error {
	if err := c.openRoot(ctx); err != nil {
		return err
	}
	if err := c.show(); err != nil {
		return err
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(c.out, "> ")
		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), c.leave(context.WithoutCancel(ctx)))
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				var err error
				select {
				case err = <-scanErr:
				default:
				}
				return errors.Join(err, c.leave(ctx))
			}
			line, err := SanitizeInput(line)
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
				continue
			}
			quit, err := c.Exec(ctx, line)
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
			if quit {
				return c.leave(ctx)
			}
		}
	}
}

// Exec runs a single command line. quit is true once the user asked to leave.
func (c *Console) Exec(ctx context.Context, line string) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	if c.screen == nil {
		if err := c.openRoot(ctx); err != nil {
			return false, err
		}
	}

	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "help", "?":
		fmt.Fprint(c.out, consoleHelp)
	case "show":
		return false, c.show()
	case "set":
		if len(args) < 1 {
			return false, errors.New("usage: set <field> <value>...")
		}
		return false, c.edit(ctx, args[0], args[1:])
	case "clear":
		if len(args) != 1 {
			return false, errors.New("usage: clear <field>")
		}
		return false, c.edit(ctx, args[0], nil)
	case "next", "prev":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: %s <field>", cmd)
		}
		return false, c.navigate(ctx, args[0], cmd == "next")
	case "open":
		if len(args) != 2 {
			return false, errors.New("usage: open <entity> <index>")
		}
		index, err := strconv.Atoi(args[1])
		if err != nil || index < 0 {
			return false, fmt.Errorf("invalid index %q", args[1])
		}
		return false, c.enter(ctx, args[0], index)
	case "add":
		if len(args) != 1 {
			return false, errors.New("usage: add <entity>")
		}
		return false, c.enter(ctx, args[0], -1)
	case "again":
		return false, c.again(ctx)
	case "back":
		return false, c.back(ctx)
	case "dump":
		return false, c.dump(ctx)
	case "save":
		if err := c.manager.Checkpoint(ctx, c.sessionID); err != nil {
			return false, err
		}
		fmt.Fprintln(c.out, "saved")
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("%w %q (try help)", ErrUnknownCommand, cmd)
	}
	return false, nil
}

func (c *Console) openRoot(ctx context.Context) error {
	return c.manager.WithSession(ctx, c.sessionID, func(ctx context.Context, s *form.Session) error {
		sc, err := s.OpenScreen(ctx, form.OpenRequest{DefinitionID: s.Schema().Root().ID})
		if err != nil {
			return err
		}
		c.screen = sc
		return nil
	})
}

func (c *Console) show() error {
	md := tui.ScreenMarkdown(c.screen)
	if c.render == nil {
		_, err := fmt.Fprint(c.out, md)
		return err
	}
	out, err := c.render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(c.out, out)
	return err
}

func (c *Console) binding(name string) (*form.Binding, error) {
	b, ok := c.screen.Field(name)
	if !ok {
		return nil, fmt.Errorf("no field %q on %s", name, c.screen.Definition.Name)
	}
	return b, nil
}

func (c *Console) edit(ctx context.Context, name string, values []string) error {
	b, err := c.binding(name)
	if err != nil {
		return err
	}
	tuple := consoleTuple(b.Adapter().Arity(), values)
	err = c.manager.WithSession(ctx, c.sessionID, func(ctx context.Context, _ *form.Session) error {
		return b.Edit(ctx, tuple)
	})
	c.printField(b)
	return err
}

// consoleTuple spreads args over the components. Single-component kinds take
// the whole remaining line so free text keeps its spaces.
func consoleTuple(arity int, args []string) domain.ValueTuple {
	t := domain.NewTuple(arity)
	if arity == 1 {
		if v := strings.Join(args, " "); v != "" && v != "-" {
			t[0] = domain.Str(v)
		}
		return t
	}
	for i, a := range args {
		if i >= arity {
			break
		}
		if a != "-" {
			t[i] = domain.Str(a)
		}
	}
	return t
}

func (c *Console) navigate(ctx context.Context, name string, forward bool) error {
	b, err := c.binding(name)
	if err != nil {
		return err
	}
	if !b.Multiple() {
		return fmt.Errorf("%s is not multiple", name)
	}
	err = c.manager.WithSession(ctx, c.sessionID, func(ctx context.Context, _ *form.Session) error {
		if forward {
			return b.Next(ctx)
		}
		return b.Previous(ctx)
	})
	if err != nil {
		return err
	}
	c.printField(b)
	return nil
}

func (c *Console) printField(b *form.Binding) {
	suffix := ""
	if b.Multiple() {
		suffix = fmt.Sprintf(" [%d/%d]", b.Index()+1, b.Size())
	}
	fmt.Fprintf(c.out, "%s = %s%s\n", b.Definition.Name, tui.FieldText(b.Render()), suffix)
}

// enter opens instance index of a child entity; a negative index adds one.
func (c *Console) enter(ctx context.Context, name string, index int) error {
	list, ok := c.screen.Entity(name)
	if !ok {
		return fmt.Errorf("no entity %q on %s", name, c.screen.Definition.Name)
	}
	err := c.manager.WithSession(ctx, c.sessionID, func(ctx context.Context, _ *form.Session) error {
		c.screen.Suspend()
		var (
			sc  *form.Screen
			err error
		)
		if index < 0 {
			sc, err = list.Add(ctx)
		} else {
			sc, err = list.Enter(ctx, index, nil)
		}
		if err != nil {
			return err
		}
		c.screen = sc
		return nil
	})
	if err != nil {
		return err
	}
	return c.show()
}

func (c *Console) again(ctx context.Context) error {
	err := c.manager.WithSession(ctx, c.sessionID, func(ctx context.Context, _ *form.Session) error {
		sc, err := c.screen.NewSibling(ctx, true)
		if err != nil {
			return err
		}
		c.screen = sc
		return nil
	})
	if err != nil {
		return err
	}
	return c.show()
}

func (c *Console) back(ctx context.Context) error {
	if c.screen.Path.Parent() == nil {
		return errors.New("already at the form root")
	}
	err := c.manager.WithSession(ctx, c.sessionID, func(ctx context.Context, _ *form.Session) error {
		c.screen.Suspend()
		parent, err := c.screen.Parent(ctx)
		if err != nil {
			return err
		}
		c.screen = parent
		return nil
	})
	if err != nil {
		return err
	}
	return c.show()
}

func (c *Console) dump(ctx context.Context) error {
	var data map[string]any
	err := c.manager.WithSession(ctx, c.sessionID, func(_ context.Context, s *form.Session) error {
		d, ok := DumpRecord(s.Record())
		if !ok {
			return errors.New("record cannot be inspected")
		}
		data = d
		return nil
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// leave writes back what the screen shows and checkpoints the session.
func (c *Console) leave(ctx context.Context) error {
	if c.screen == nil {
		return nil
	}
	err := c.manager.WithSession(ctx, c.sessionID, func(context.Context, *form.Session) error {
		c.screen.Suspend()
		return nil
	})
	c.logger.Debug("console closed", "session_id", c.sessionID, "path", c.screen.Path.String())
	return err
}
