package demo

import (
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/textmux/pkg/dispatch"
	"github.com/vango-dev/textmux/pkg/router"
)

func newDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	store := router.NewStore()
	if _, err := Load(store); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return dispatch.New(store)
}

func TestCalculator(t *testing.T) {
	d := newDispatcher(t)

	tests := []struct {
		input string
		want  string
	}{
		{"calc 2 add 3", "5"},
		{"calc 10 sub 4", "6"},
		{"calc 6 mul 7", "42"},
		{"calc 9 div 2", "4.5"},
	}
	for _, tt := range tests {
		got, err := d.InvokeText(tt.input, RouterID)
		if err != nil {
			t.Errorf("%q: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCalculatorRejectsNonNumbers(t *testing.T) {
	d := newDispatcher(t)

	_, err := d.InvokeText("calc one add 2", RouterID)
	var halted *dispatch.HaltedError
	if !errors.As(err, &halted) {
		t.Fatalf("err = %v, want HaltedError", err)
	}
	if v, _ := halted.Message.Get("error"); v != `"one" is not a number` {
		t.Errorf("error assign = %v", v)
	}
}

func TestCalculatorDivisionByZero(t *testing.T) {
	d := newDispatcher(t)

	if _, err := d.InvokeText("calc 1 div 0", RouterID); err == nil || err.Error() != "division by zero" {
		t.Errorf("err = %v, want division by zero", err)
	}
}

func TestEchoRestTokens(t *testing.T) {
	d := newDispatcher(t)

	got, err := d.InvokeText(`echo hello "big wide" world`, RouterID)
	if err != nil {
		t.Fatalf("echo: %v", err)
	}
	if got != "hello big wide world" {
		t.Errorf("echo = %q", got)
	}

	if _, err := d.InvokeText("echo", RouterID); err == nil {
		t.Error("bare echo should halt on missing rest")
	}
}

func TestHelpListsRoutes(t *testing.T) {
	d := newDispatcher(t)

	got, err := d.InvokeText("help", RouterID)
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	table := got.(string)
	for _, want := range []string{"calc/:x/add/:y", "echo", "adds two numbers"} {
		if !strings.Contains(table, want) {
			t.Errorf("help output missing %q:\n%s", want, table)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	d := newDispatcher(t)
	if _, err := d.InvokeText("frobnicate", RouterID); !errors.Is(err, dispatch.ErrNoMatch) {
		t.Errorf("err = %v, want ErrNoMatch", err)
	}
}

func TestStaticAssignReachesHandler(t *testing.T) {
	store := router.NewStore()
	cmds, err := Commands(store)
	if err != nil {
		t.Fatalf("Commands: %v", err)
	}
	if err := store.LoadRouter(RouterID, cmds); err != nil {
		t.Fatalf("LoadRouter: %v", err)
	}

	m, err := store.MatchRoute(RouterID, []string{"calc", "1", "div", "2"})
	if err != nil {
		t.Fatalf("MatchRoute: %v", err)
	}
	if m.Command.Assigns()["precision"] != 6 {
		t.Errorf("assigns = %v", m.Command.Assigns())
	}
}
