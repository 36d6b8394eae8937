// Package demo ships the built-in calculator router used by the console
// command, the gateway examples and the integration tests.
package demo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/textmux/pkg/command"
	"github.com/vango-dev/textmux/pkg/message"
	"github.com/vango-dev/textmux/pkg/middleware"
	"github.com/vango-dev/textmux/pkg/router"
)

// RouterID is the router the demo commands are loaded under.
const RouterID = "demo"

// numbers is a module-style interceptor: Init fixes the parameter names to
// parse once at build time, Call parses them into float64 assigns per
// invocation and halts on the first token that is not a number.
type numbers struct{}

func (numbers) Init(options any) any {
	return options
}

func (numbers) Call(msg *message.Message, config any) *message.Message {
	for _, name := range config.([]string) {
		raw, ok := msg.Param(name)
		if !ok {
			return msg.Assign("error", fmt.Sprintf("missing operand %q", name)).Halt()
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return msg.Assign("error", fmt.Sprintf("%q is not a number", raw)).Halt()
		}
		msg.Assign(name, f)
	}
	return msg
}

// Commands builds the demo command list. The help handler renders the
// live route table of store, so it reflects routes toggled at runtime.
func Commands(store *router.Store) ([]command.Command, error) {
	return command.NewBuilder().
		Scope("calc", func(b *command.Builder) {
			b.Use(command.Bind("numbers", numbers{}, []string{"x", "y"}))
			b.Handle(":x/add/:y", arithmetic(func(x, y float64) (float64, error) {
				return x + y, nil
			}), command.WithName("calc.add"), command.WithDoc("adds two numbers"))
			b.Handle(":x/sub/:y", arithmetic(func(x, y float64) (float64, error) {
				return x - y, nil
			}), command.WithName("calc.sub"), command.WithDoc("subtracts two numbers"))
			b.Handle(":x/mul/:y", arithmetic(func(x, y float64) (float64, error) {
				return x * y, nil
			}), command.WithName("calc.mul"), command.WithDoc("multiplies two numbers"))
			b.Handle(":x/div/:y", arithmetic(func(x, y float64) (float64, error) {
				if y == 0 {
					return 0, fmt.Errorf("division by zero")
				}
				return x / y, nil
			}), command.WithName("calc.div"), command.WithDoc("divides two numbers"),
				command.WithAssign("precision", 6))
		}).
		Handle("echo", func(msg *message.Message, params map[string]string) (any, error) {
			return strings.Join(msg.Rest(), " "), nil
		}, command.Intercept(middleware.RequireRest()),
			command.WithName("echo"), command.WithDoc("repeats the trailing text")).
		Handle("help", func(msg *message.Message, params map[string]string) (any, error) {
			return store.FormatTable(), nil
		}, command.WithName("help"), command.WithDoc("lists available commands")).
		Build()
}

// Load builds the demo commands and loads them into store.
func Load(store *router.Store) ([]command.Command, error) {
	cmds, err := Commands(store)
	if err != nil {
		return nil, err
	}
	if err := store.LoadRouter(RouterID, cmds); err != nil {
		return nil, err
	}
	return cmds, nil
}

// arithmetic adapts a binary float operation into a handler reading the
// operands parsed by the numbers interceptor. A "precision" assign, when
// present, caps the number of significant digits in the result.
func arithmetic(op func(x, y float64) (float64, error)) command.Handler {
	return func(msg *message.Message, params map[string]string) (any, error) {
		x, _ := msg.Get("x")
		y, _ := msg.Get("y")
		result, err := op(x.(float64), y.(float64))
		if err != nil {
			return nil, err
		}
		prec := -1
		if v, ok := msg.Get("precision"); ok {
			if p, ok := v.(int); ok {
				prec = p
			}
		}
		return strconv.FormatFloat(result, 'g', prec, 64), nil
	}
}
