package router

import (
	"fmt"
	"testing"

	"github.com/vango-dev/textmux/pkg/command"
	"github.com/vango-dev/textmux/pkg/message"
)

func benchHandler(msg *message.Message, params map[string]string) (any, error) {
	return nil, nil
}

// BenchmarkMatchLiteral benchmarks matching a literal route.
func BenchmarkMatchLiteral(b *testing.B) {
	s := NewStore()

	cmds := make([]command.Command, 0, 50)
	for i := 0; i < 50; i++ {
		cmds = append(cmds, command.New(fmt.Sprintf("cmd%d/run", i), benchHandler))
	}
	if err := s.LoadRouter("bench", cmds); err != nil {
		b.Fatal(err)
	}

	tokens := []string{"cmd25", "run"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.MatchRoute("bench", tokens)
	}
}

// BenchmarkMatchParams benchmarks matching a route with parameters.
func BenchmarkMatchParams(b *testing.B) {
	s := NewStore()
	cmds := []command.Command{
		command.New("users/:id/posts/:post", benchHandler),
	}
	if err := s.LoadRouter("bench", cmds); err != nil {
		b.Fatal(err)
	}

	tokens := []string{"users", "42", "posts", "100"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.MatchRoute("bench", tokens)
	}
}

// BenchmarkMatchRest benchmarks a childless value node capturing rest
// tokens.
func BenchmarkMatchRest(b *testing.B) {
	s := NewStore()
	cmds := []command.Command{
		command.New("echo", benchHandler),
	}
	if err := s.LoadRouter("bench", cmds); err != nil {
		b.Fatal(err)
	}

	tokens := []string{"echo", "one", "two", "three", "four"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.MatchRoute("bench", tokens)
	}
}
