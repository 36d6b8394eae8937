package middleware

import (
	"fmt"

	"github.com/vango-dev/textmux/pkg/command"
	"github.com/vango-dev/textmux/pkg/message"
)

// RequireParams returns an interceptor step that halts the message when
// any of the named parameters is missing or empty. The failure reason is
// assigned under "error" so handlers and callers can report it.
func RequireParams(names ...string) command.Step {
	return command.BindFunc("require_params", func(msg *message.Message, config any) *message.Message {
		for _, name := range config.([]string) {
			if v, ok := msg.Param(name); !ok || v == "" {
				return msg.Assign("error", fmt.Sprintf("missing required parameter %q", name)).Halt()
			}
		}
		return msg
	}, names)
}

// RequireRest returns an interceptor step that halts the message when no
// rest tokens were captured, for commands that need trailing free text.
func RequireRest() command.Step {
	return command.BindFunc("require_rest", func(msg *message.Message, _ any) *message.Message {
		if len(msg.Rest()) == 0 {
			return msg.Assign("error", "missing trailing text").Halt()
		}
		return msg
	}, nil)
}
